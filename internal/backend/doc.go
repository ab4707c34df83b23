// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the Cerevo assistant service.
//
// # Key Types
//
//   - Client: typed wrapper around every service endpoint
//   - ChatRequest / ChatResponse: POST /chat
//   - ExplainResponse: POST /explain_code_json
//   - ClientError: categorized failure (connection, timeout, status, decode)
//
// # Usage
//
//	client := backend.NewClient(&backend.ClientConfig{BaseURL: "http://localhost:8000"})
//	resp, err := client.Chat(ctx, backend.ChatRequest{
//	    Mode:        "Debugger",
//	    Messages:    []backend.ChatMessage{{Role: "user", Content: "why nil?"}},
//	    Temperature: 0.7,
//	})
//	if errors.Is(err, backend.ErrTimeout) {
//	    ...
//	}
//
// The client never retries. Callers decide what a failure means.
package backend
