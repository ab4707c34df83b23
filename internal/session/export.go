// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/cerevo/cerevo-tui/internal/model"
)

// Export formats.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// ExportMarkdown renders a session as Markdown with one section per message.
func ExportMarkdown(s model.Session) string {
	var sb strings.Builder
	title := s.Title
	if title == "" {
		title = s.ID
	}
	sb.WriteString("# " + title + "\n\n")
	sb.WriteString("Session: `" + s.ID + "`  \n")
	sb.WriteString("Created: " + s.CreatedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range s.Messages {
		sb.WriteString("**" + msg.Role.DisplayName() + "** (" + msg.Timestamp.Format("15:04") + "):\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}

// ExportJSON renders a session as indented JSON in its persisted shape.
func ExportJSON(s model.Session) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
