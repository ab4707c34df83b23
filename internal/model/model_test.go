// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	before := time.Now()
	msg := NewUserMessage("hello")

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, RoleUser, msg.Role)
	assert.Equal(t, "hello", msg.Content)
	assert.False(t, msg.Timestamp.Before(before))

	other := NewAssistantMessage("hi")
	assert.NotEqual(t, msg.ID, other.ID, "message IDs must be unique")
	assert.Equal(t, RoleAssistant, other.Role)
}

func TestRoleDisplayName(t *testing.T) {
	assert.Equal(t, "You", RoleUser.DisplayName())
	assert.Equal(t, "Assistant", RoleAssistant.DisplayName())
	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("system").Valid())
}

func TestSessionTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"short", "Explain this function", "Explain this function"},
		{"exactly fifty", strings.Repeat("a", 50), strings.Repeat("a", 50)},
		{"fifty one", strings.Repeat("a", 51), strings.Repeat("a", 50) + "..."},
		{"multibyte", strings.Repeat("é", 60), strings.Repeat("é", 50) + "..."},
		{"decomposed kept as typed", "cafe\u0301", "cafe\u0301"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SessionTitle(tt.input))
		})
	}
}

func TestSessionJSONShape(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := Session{
		ID:        "session-1",
		Title:     "hi",
		CreatedAt: created,
		Messages: []Message{
			{ID: "m1", Role: RoleUser, Content: "hi", Timestamp: created},
		},
	}

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "createdAt")
	assert.Contains(t, raw, "messages")

	msgs := raw["messages"].([]any)
	first := msgs[0].(map[string]any)
	assert.Equal(t, "user", first["role"])
	assert.Equal(t, "2025-03-01T12:00:00Z", first["timestamp"])
}

func TestSessionCloneIsIndependent(t *testing.T) {
	s := Session{ID: "s", Messages: []Message{NewUserMessage("a")}}
	c := s.Clone()
	c.Messages[0].Content = "changed"
	assert.Equal(t, "a", s.Messages[0].Content)
}

func TestSessionContainsAndPreview(t *testing.T) {
	s := Session{
		Title: "Debug session",
		Messages: []Message{
			NewUserMessage("Why does\nthis panic?"),
			NewAssistantMessage("Nil map write."),
		},
	}
	assert.True(t, s.Contains("debug"))
	assert.True(t, s.Contains("NIL MAP"))
	assert.False(t, s.Contains("goroutine"))
	assert.Equal(t, "Why does this panic?", s.Preview(40))
	assert.Equal(t, "Why...", s.Preview(3))
}

func TestModesFromStrings(t *testing.T) {
	modes := ModesFromStrings([]string{"General", " Debugger ", "", "General"})
	assert.Equal(t, []Mode{ModeGeneral, ModeDebugger, ModeExplainCodeJSON}, modes)

	modes = ModesFromStrings([]string{"Explain Code JSON"})
	assert.Equal(t, []Mode{ModeExplainCodeJSON}, modes)
}

func TestNextMode(t *testing.T) {
	modes := []Mode{ModeGeneral, ModeDebugger, ModeExplainCode}
	assert.Equal(t, ModeDebugger, NextMode(modes, ModeGeneral, 1))
	assert.Equal(t, ModeGeneral, NextMode(modes, ModeExplainCode, 1))
	assert.Equal(t, ModeExplainCode, NextMode(modes, ModeGeneral, -1))
	assert.Equal(t, ModeGeneral, NextMode(modes, Mode("Unknown"), 1))
	assert.Equal(t, ModeDebugger, NextMode(nil, ModeDebugger, 1))
}

func TestClampTemperature(t *testing.T) {
	assert.Equal(t, 0.0, ClampTemperature(-0.5))
	assert.Equal(t, 1.0, ClampTemperature(1.7))
	assert.Equal(t, 0.7, ClampTemperature(0.7))
	assert.Equal(t, 0.8, ClampTemperature(0.7+TemperatureStep))
}
