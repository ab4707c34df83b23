// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cerevo/cerevo-tui/internal/model"
	"github.com/cerevo/cerevo-tui/internal/storage"
)

// IDPrefix starts every session ID; the rest is Unix milliseconds.
const IDPrefix = "session-"

// ErrSessionNotFound is returned when an ID is not in the collection.
// Use errors.Is(err, ErrSessionNotFound) to check for this error.
var ErrSessionNotFound = errors.New("session not found")

// =============================================================================
// STORE
// =============================================================================

// Store is the Session Collection backed by a storage key.
type Store struct {
	kv     storage.Backend
	key    string
	logger *zap.Logger

	mu         sync.Mutex
	sessions   []model.Session // newest first
	lastMillis int64

	// now is swapped in tests.
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithKey stores the collection under a key other than storage.KeySessions.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithClock replaces time.Now for ID allocation and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a store on kv and loads the persisted collection.
func NewStore(kv storage.Backend, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		kv:     kv,
		key:    storage.KeySessions,
		logger: logger.Named("session"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Load()
	return s
}

// Key returns the storage key the collection lives under.
func (s *Store) Key() string {
	return s.key
}

// Load replaces the in-memory collection with the persisted one. A missing,
// unreadable or corrupt key yields an empty collection.
func (s *Store) Load() {
	sessions := s.read()
	s.mu.Lock()
	s.sessions = sessions
	s.mu.Unlock()
}

// Reload re-reads storage after another writer changed it and reports
// whether the collection differs from what was in memory.
func (s *Store) Reload() bool {
	sessions := s.read()
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := !sameCollection(s.sessions, sessions)
	s.sessions = sessions
	return changed
}

func (s *Store) read() []model.Session {
	data, err := s.kv.Get(s.key)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			s.logger.Warn("failed to read sessions", zap.Error(err))
		}
		return []model.Session{}
	}

	var sessions []model.Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		s.logger.Warn("discarding corrupt sessions data",
			zap.String("key", s.key),
			zap.Int("bytes", len(data)),
			zap.Error(err))
		return []model.Session{}
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	return sessions
}

// persist writes the collection. Must be called with mu held.
func (s *Store) persist() {
	data, err := json.Marshal(s.sessions)
	if err != nil {
		s.logger.Warn("failed to encode sessions", zap.Error(err))
		return
	}
	if err := s.kv.Set(s.key, data); err != nil {
		s.logger.Warn("failed to persist sessions",
			zap.Int("sessions", len(s.sessions)),
			zap.Error(err))
	}
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Create allocates a new session, puts it at the head of the collection and
// persists. The messages are copied.
func (s *Store) Create(title string, messages []model.Message) model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := model.Session{
		ID:        s.allocateID(),
		Title:     title,
		CreatedAt: s.now(),
		Messages:  model.CloneMessages(messages),
	}
	if sess.Messages == nil {
		sess.Messages = []model.Message{}
	}
	s.sessions = append([]model.Session{sess}, s.sessions...)
	s.persist()

	s.logger.Debug("session created",
		zap.String("id", sess.ID),
		zap.Int("messages", len(sess.Messages)))
	return sess.Clone()
}

// allocateID returns session-<millis>, bumping the millisecond value past
// any ID already handed out or present in the collection. Must be called
// with mu held.
func (s *Store) allocateID() string {
	ms := s.now().UnixMilli()
	if ms <= s.lastMillis {
		ms = s.lastMillis + 1
	}
	for s.indexOf(IDPrefix+strconv.FormatInt(ms, 10)) >= 0 {
		ms++
	}
	s.lastMillis = ms
	return IDPrefix + strconv.FormatInt(ms, 10)
}

// Update replaces the message sequence of an existing session and persists.
func (s *Store) Update(id string, messages []model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("update %s: %w", id, ErrSessionNotFound)
	}
	s.sessions[i].Messages = model.CloneMessages(messages)
	s.persist()
	return nil
}

// Delete removes a session and persists.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrSessionNotFound)
	}
	s.sessions = slices.Delete(s.sessions, i, i+1)
	s.persist()

	s.logger.Debug("session deleted", zap.String("id", id))
	return nil
}

// =============================================================================
// QUERIES
// =============================================================================

// Get returns a copy of one session.
func (s *Store) Get(id string) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Session{}, fmt.Errorf("get %s: %w", id, ErrSessionNotFound)
	}
	return s.sessions[i].Clone(), nil
}

// Messages returns a copy of a session's transcript.
func (s *Store) Messages(id string) ([]model.Message, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return sess.Messages, nil
}

// List returns a copy of the collection, newest first.
func (s *Store) List() []model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.Clone()
	}
	return out
}

// Len returns the number of sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Search returns sessions whose title or messages contain query,
// case-insensitively, newest first. An empty query matches everything.
func (s *Store) Search(query string) []model.Session {
	all := s.List()
	if query == "" {
		return all
	}
	var results []model.Session
	for _, sess := range all {
		if sess.Contains(query) {
			results = append(results, sess)
		}
	}
	return results
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.sessions, func(sess model.Session) bool {
		return sess.ID == id
	})
}

func sameCollection(a, b []model.Session) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Title != b[i].Title || len(a[i].Messages) != len(b[i].Messages) {
			return false
		}
		for j := range a[i].Messages {
			if a[i].Messages[j].ID != b[i].Messages[j].ID {
				return false
			}
		}
	}
	return true
}
