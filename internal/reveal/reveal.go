// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reveal shows a completed reply one character at a time.
//
// A Reveal is a cancellable timed iterator over display buffers. The owner
// keeps the *Reveal as its single handle and calls Cancel on any action that
// conflicts with the animation, such as sending a new message or starting a
// new conversation. Cancel clears the buffer immediately.
//
// Two drivers are provided:
//
//   - Seq yields successive buffers from a ticker, for line-oriented output.
//   - Tick schedules one step on a Bubble Tea loop. Each reveal carries a
//     generation ID, so ticks from a cancelled or replaced reveal are ignored.
package reveal

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultDelay is the pause between revealed characters.
const DefaultDelay = 20 * time.Millisecond

var nextID atomic.Uint64

// Reveal reveals text one rune per step. It is safe for concurrent use.
type Reveal struct {
	id    uint64
	delay time.Duration
	runes []rune

	mu        sync.Mutex
	pos       int
	cancelled bool
}

// Start creates a reveal of text with the given per-character delay. A
// non-positive delay steps without pausing.
func Start(text string, delay time.Duration) *Reveal {
	return &Reveal{
		id:    nextID.Add(1),
		delay: delay,
		runes: []rune(text),
	}
}

// ID returns the reveal's generation ID.
func (r *Reveal) ID() uint64 {
	if r == nil {
		return 0
	}
	return r.id
}

// Text returns the full text being revealed.
func (r *Reveal) Text() string {
	if r == nil {
		return ""
	}
	return string(r.runes)
}

// Next reveals one more character and returns the new buffer. done is true
// once the whole text is visible or the reveal was cancelled.
func (r *Reveal) Next() (buffer string, done bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancelled {
		return "", true
	}
	if r.pos < len(r.runes) {
		r.pos++
	}
	return string(r.runes[:r.pos]), r.pos >= len(r.runes)
}

// Buffer returns the currently visible text.
func (r *Reveal) Buffer() string {
	if r == nil {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled {
		return ""
	}
	return string(r.runes[:r.pos])
}

// Done reports whether the reveal has finished or was cancelled. A nil
// reveal is done.
func (r *Reveal) Done() bool {
	if r == nil {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled || r.pos >= len(r.runes)
}

// Cancelled reports whether Cancel was called.
func (r *Reveal) Cancelled() bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}

// Cancel stops the reveal and clears its buffer. It is idempotent and safe
// on a nil reveal.
func (r *Reveal) Cancel() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = true
	r.pos = 0
}

// Finish makes the whole text visible at once.
func (r *Reveal) Finish() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled {
		return ""
	}
	r.pos = len(r.runes)
	return string(r.runes)
}

// Seq yields the buffer after each step, pausing the reveal's delay before
// every step. It stops when the text is complete, the reveal is cancelled,
// ctx is done, or the consumer stops ranging.
func (r *Reveal) Seq(ctx context.Context) iter.Seq[string] {
	return func(yield func(string) bool) {
		if r.Done() {
			return
		}

		var tick <-chan time.Time
		if r.delay > 0 {
			ticker := time.NewTicker(r.delay)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			if tick != nil {
				select {
				case <-ctx.Done():
					return
				case <-tick:
				}
			} else if ctx.Err() != nil {
				return
			}

			buf, done := r.Next()
			if r.Cancelled() {
				return
			}
			if !yield(buf) || done {
				return
			}
		}
	}
}

// =============================================================================
// BUBBLE TEA DRIVER
// =============================================================================

// TickMsg asks the owner to advance the reveal with the given ID.
type TickMsg struct {
	ID uint64
}

// Tick schedules the next step after the reveal's delay.
func (r *Reveal) Tick() tea.Cmd {
	id := r.id
	if r.delay <= 0 {
		return func() tea.Msg { return TickMsg{ID: id} }
	}
	return tea.Tick(r.delay, func(time.Time) tea.Msg {
		return TickMsg{ID: id}
	})
}

// Owns reports whether msg belongs to this reveal and the reveal is still
// running. Stale ticks must be dropped without scheduling another.
func (r *Reveal) Owns(msg TickMsg) bool {
	return r != nil && msg.ID == r.id && !r.Done()
}
