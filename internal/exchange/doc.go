// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package exchange turns one user input into one assistant reply.
//
// An Exchange owns the live conversation: the transcript on screen and the
// ID of the session it belongs to (empty for a conversation that has not
// been saved yet). Each exchange runs in three phases so a single-threaded
// UI loop can drive it without blocking:
//
//	p, err := ex.Begin(input, mode, temperature) // validate, append user message
//	out := p.Run(ctx)                            // one backend call, off the loop
//	reply := ex.Finish(out)                      // append reply, create/update session
//
// Send does all three synchronously for the REPL and one-shot commands.
//
// At most one exchange is in flight per conversation. Begin returns
// ErrInFlight for an overlapping call and ErrEmptyInput for blank input;
// neither changes any state. Failures never escape Finish: they become a
// synthetic assistant message and the session is left untouched.
package exchange
