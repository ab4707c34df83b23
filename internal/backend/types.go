// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import "encoding/json"

// =============================================================================
// CHAT
// =============================================================================

// ChatMessage is one transcript entry in wire form.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Mode        string        `json:"mode,omitempty"`
	Messages    []ChatMessage `json:"messages"`
	Model       string        `json:"model,omitempty"`
	Temperature float64       `json:"temperature"`

	// Memory asks the service to keep its own copy of the conversation.
	// The client keeps history locally and always sends false.
	Memory bool `json:"memory"`
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Reply string          `json:"reply"`
	Mode  string          `json:"mode"`
	Model string          `json:"model"`
	Raw   json.RawMessage `json:"raw,omitempty"`
}

// chatWire decodes ChatResponse so a missing or non-string reply can be told
// apart from an empty one.
type chatWire struct {
	Reply *string         `json:"reply"`
	Mode  string          `json:"mode"`
	Model string          `json:"model"`
	Raw   json.RawMessage `json:"raw,omitempty"`
}

// =============================================================================
// STRUCTURED ANALYSIS
// =============================================================================

// ExplainResponse is the body returned by POST /explain_code_json. On success
// JSON holds the parsed analysis; when the service could not parse its own
// model output it sets Error and RawOutput instead.
type ExplainResponse struct {
	JSON      json.RawMessage `json:"json,omitempty"`
	Raw       string          `json:"raw,omitempty"`
	RawOutput string          `json:"raw_output,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// =============================================================================
// CONFIGURATION ENDPOINTS
// =============================================================================

// ModesResponse is the body returned by GET /modes.
type ModesResponse struct {
	Modes []string `json:"modes"`
}

// SetModeResponse is the body returned by POST /set_mode.
type SetModeResponse struct {
	Message      string `json:"message"`
	SystemPrompt string `json:"system_prompt"`
}

// SetModelResponse is the body returned by POST /set_model.
type SetModelResponse struct {
	Message     string  `json:"message"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

// ConversationResponse is the body returned by GET /conversation/{id}.
type ConversationResponse struct {
	SessionID    string        `json:"session_id"`
	Conversation []ChatMessage `json:"conversation"`
}

// MessageResponse is the generic {"message": ...} acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// HomeResponse is the body returned by GET /home.
type HomeResponse struct {
	Message        string   `json:"message"`
	AvailableModes []string `json:"available_modes"`
}

// errorResponse is FastAPI's error body. Detail is a string for
// HTTPException and a list of objects for request validation errors.
type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

func (e errorResponse) text() string {
	if len(e.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(e.Detail, &items); err == nil && len(items) > 0 {
		return items[0].Msg
	}
	return ""
}
