// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&ClientConfig{BaseURL: srv.URL + "/", Timeout: 2 * time.Second})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// =============================================================================
// CONFIG
// =============================================================================

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(nil)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)

	c = NewClient(&ClientConfig{BaseURL: "http://api.example/"})
	assert.Equal(t, "http://api.example", c.BaseURL())
}

// =============================================================================
// CHAT
// =============================================================================

func TestChat_SendsTranscriptAndDecodesReply(t *testing.T) {
	var got ChatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, map[string]any{
			"reply": "It returns the sum.",
			"mode":  "Code Analysis",
			"model": "gemini-2.5-pro",
			"raw":   nil,
		})
	})

	resp, err := client.Chat(context.Background(), ChatRequest{
		Mode: "Code Analysis",
		Messages: []ChatMessage{
			{Role: "user", Content: "Explain this function"},
		},
		Temperature: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, "It returns the sum.", resp.Reply)
	assert.Equal(t, "gemini-2.5-pro", resp.Model)

	assert.Equal(t, "Code Analysis", got.Mode)
	assert.Len(t, got.Messages, 1)
	assert.False(t, got.Memory)
}

func TestChat_WireShape(t *testing.T) {
	var raw map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		writeJSON(w, http.StatusOK, map[string]string{"reply": "ok"})
	})

	_, err := client.Chat(context.Background(), ChatRequest{Mode: "General", Temperature: 0})
	require.NoError(t, err)

	// Zero temperature and memory=false must still be sent.
	assert.Equal(t, 0.0, raw["temperature"])
	assert.Equal(t, false, raw["memory"])
	assert.Equal(t, []any{}, raw["messages"])
	assert.NotContains(t, raw, "model")
}

func TestChat_StatusUsesDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Unknown mode 'Poet'"})
	})

	_, err := client.Chat(context.Background(), ChatRequest{Mode: "Poet"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))
	assert.Equal(t, "Unknown mode 'Poet'", err.Error())

	var cerr *ClientError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, http.StatusBadRequest, cerr.Status)
}

func TestChat_StatusValidationDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{"loc": []string{"body", "messages"}, "msg": "field required"}},
		})
	})

	_, err := client.Chat(context.Background(), ChatRequest{})
	assert.EqualError(t, err, "field required")
}

func TestChat_StatusWithoutDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Chat(context.Background(), ChatRequest{})
	assert.EqualError(t, err, "chat failed: 500 Internal Server Error")
}

func TestChat_InvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>"))
	})

	_, err := client.Chat(context.Background(), ChatRequest{})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestChat_MissingReplyIsInvalid(t *testing.T) {
	bodies := map[string]string{
		"empty object": `{}`,
		"null body":    `null`,
		"null reply":   `{"reply":null,"mode":"General"}`,
		"detail only":  `{"detail":"model unavailable"}`,
		"number reply": `{"reply":42}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(body))
			})

			resp, err := client.Chat(context.Background(), ChatRequest{Mode: "General"})
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, ErrInvalidResponse)
		})
	}
}

func TestChat_EmptyReplyIsAccepted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"reply": ""})
	})

	resp, err := client.Chat(context.Background(), ChatRequest{Mode: "General"})
	require.NoError(t, err)
	assert.Equal(t, "", resp.Reply)
}

func TestChat_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(&ClientConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := client.Chat(context.Background(), ChatRequest{Mode: "Debugger"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
	assert.Contains(t, err.Error(), "request timed out")
}

func TestChat_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(&ClientConfig{BaseURL: srv.URL})
	_, err := client.Chat(ctx, ChatRequest{})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestChat_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"reply": "late"})
	})
	_, err := client.Chat(ctx, ChatRequest{})
	assert.ErrorIs(t, err, ErrCanceled)
}

func TestChat_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(&ClientConfig{BaseURL: url, Timeout: time.Second})
	_, err := client.Chat(context.Background(), ChatRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.Contains(t, err.Error(), "could not reach assistant service")
}

// =============================================================================
// STRUCTURED ANALYSIS
// =============================================================================

func TestExplainCode_QueryParameters(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/explain_code_json", r.URL.Path)
		assert.Equal(t, "def f(a, b): return a+b", r.URL.Query().Get("code"))
		assert.Equal(t, "python", r.URL.Query().Get("language"))
		writeJSON(w, http.StatusOK, map[string]any{
			"json": []map[string]any{{"line_no": 1, "code": "def f", "explanation": "adds"}},
		})
	})

	resp, err := client.ExplainCode(context.Background(), "def f(a, b): return a+b", "python")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"line_no":1,"code":"def f","explanation":"adds"}]`, string(resp.JSON))
}

func TestExplainCode_ParseFailureBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"error":      "Failed to parse JSON from model output",
			"raw_output": "not json at all",
		})
	})

	resp, err := client.ExplainCode(context.Background(), "x", "go")
	require.NoError(t, err)
	assert.Empty(t, resp.JSON)
	assert.Equal(t, "not json at all", resp.RawOutput)
	assert.Equal(t, "Failed to parse JSON from model output", resp.Error)
}

// =============================================================================
// CONFIGURATION ENDPOINTS
// =============================================================================

func TestModes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/modes", r.URL.Path)
		writeJSON(w, http.StatusOK, ModesResponse{Modes: []string{"General", "Debugger"}})
	})

	modes, err := client.Modes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"General", "Debugger"}, modes)
}

func TestSetMode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/set_mode", r.URL.Path)
		assert.Equal(t, "Code Reviewer", r.URL.Query().Get("mode"))
		writeJSON(w, http.StatusOK, SetModeResponse{Message: "Mode changed to 'Code Reviewer'"})
	})

	resp, err := client.SetMode(context.Background(), "Code Reviewer")
	require.NoError(t, err)
	assert.Equal(t, "Mode changed to 'Code Reviewer'", resp.Message)
}

func TestSetModel(t *testing.T) {
	var query map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		writeJSON(w, http.StatusOK, SetModelResponse{Model: "m", Temperature: 0.3})
	})

	temp := 0.3
	resp, err := client.SetModel(context.Background(), "", &temp)
	require.NoError(t, err)
	assert.Equal(t, 0.3, resp.Temperature)
	assert.NotContains(t, query, "model")
	assert.Equal(t, []string{"0.3"}, query["temperature"])
}

func TestConversation_EscapesID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/conversation/a%2Fb", r.URL.EscapedPath())
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, ConversationResponse{
				SessionID:    "a/b",
				Conversation: []ChatMessage{{Role: "user", Content: "hi"}},
			})
		case http.MethodDelete:
			writeJSON(w, http.StatusOK, MessageResponse{Message: "Conversation a/b cleared."})
		}
	})

	conv, err := client.Conversation(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "a/b", conv.SessionID)
	assert.Len(t, conv.Conversation, 1)

	ack, err := client.DeleteConversation(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "Conversation a/b cleared.", ack.Message)
}

func TestPing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/home", r.URL.Path)
		writeJSON(w, http.StatusOK, HomeResponse{
			Message:        "Welcome to Cerevo Multi-Mode AI Assistant API",
			AvailableModes: []string{"General"},
		})
	})

	home, err := client.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"General"}, home.AvailableModes)
}

func TestClientError_Is(t *testing.T) {
	err := &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: context.DeadlineExceeded}
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.False(t, errors.Is(err, ErrUnreachable))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, "timeout", ErrTypeTimeout.String())
}
