// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/cerevo/cerevo-tui/internal/util"
)

// MaxTitleLength is the number of characters of the first user message kept
// in a session title.
const MaxTitleLength = 50

// Session is one persisted conversation.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	Messages  []Message `json:"messages"`
}

// SessionTitle derives a session title from the first user message: the
// first MaxTitleLength characters followed by "..." when the message is
// longer, otherwise the message verbatim.
func SessionTitle(firstMessage string) string {
	return util.TruncateRunes(firstMessage, MaxTitleLength)
}

// Clone returns a deep copy of the session.
func (s Session) Clone() Session {
	s.Messages = CloneMessages(s.Messages)
	return s
}

// MessageCount returns the number of messages in the session.
func (s Session) MessageCount() int {
	return len(s.Messages)
}

// Preview returns the first user message truncated for list display.
func (s Session) Preview(maxRunes int) string {
	for _, msg := range s.Messages {
		if msg.Role == RoleUser && msg.Content != "" {
			content := strings.ReplaceAll(msg.Content, "\n", " ")
			return util.TruncateRunes(content, maxRunes)
		}
	}
	return ""
}

// Contains reports whether query appears, case-insensitively, in the title
// or in any message of the session.
func (s Session) Contains(query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(s.Title), q) {
		return true
	}
	for _, msg := range s.Messages {
		if strings.Contains(strings.ToLower(msg.Content), q) {
			return true
		}
	}
	return false
}

// User is the authenticated-user stand-in persisted under the "user" key.
type User struct {
	Email string `json:"email"`
	Token string `json:"token"`
}
