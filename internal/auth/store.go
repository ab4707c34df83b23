// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cerevo/cerevo-tui/internal/model"
	"github.com/cerevo/cerevo-tui/internal/storage"
)

// Issuer failures are wrapped in these sentinels.
var (
	ErrLoginFailed  = errors.New("invalid credentials")
	ErrSignupFailed = errors.New("registration failed")
)

// Store is the authenticated-user state persisted under the "user" key.
type Store struct {
	kv     storage.Backend
	issuer Issuer
	logger *zap.Logger

	mu   sync.RWMutex
	user *model.User
}

// NewStore creates a store and loads any persisted user.
func NewStore(kv storage.Backend, issuer Issuer, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		kv:     kv,
		issuer: issuer,
		logger: logger.Named("auth"),
	}
	s.Load()
	return s
}

// Load reads the persisted user. A corrupt value is removed.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil

	data, err := s.kv.Get(storage.KeyUser)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			s.logger.Warn("failed to read user", zap.Error(err))
		}
		return
	}

	var u model.User
	if err := json.Unmarshal(data, &u); err != nil || u.Email == "" {
		s.logger.Warn("removing corrupt user data", zap.Error(err))
		if err := s.kv.Remove(storage.KeyUser); err != nil {
			s.logger.Warn("failed to remove user", zap.Error(err))
		}
		return
	}
	s.user = &u
}

// Current returns the signed-in user.
func (s *Store) Current() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// LoggedIn reports whether a user is signed in.
func (s *Store) LoggedIn() bool {
	_, ok := s.Current()
	return ok
}

// Login validates credentials, obtains a token and persists the user.
func (s *Store) Login(ctx context.Context, email, password string) (model.User, error) {
	email = strings.TrimSpace(email)
	if err := ValidateLogin(email, password); err != nil {
		return model.User{}, err
	}
	token, err := s.issuer.Login(ctx, email, password)
	if err != nil {
		s.logger.Info("login rejected", zap.String("email", email), zap.Error(err))
		return model.User{}, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	return s.signIn(email, token), nil
}

// Signup validates a registration, obtains a token and persists the user.
func (s *Store) Signup(ctx context.Context, email, password, confirm string) (model.User, error) {
	email = strings.TrimSpace(email)
	if err := ValidateSignup(email, password, confirm); err != nil {
		return model.User{}, err
	}
	token, err := s.issuer.Signup(ctx, email, password)
	if err != nil {
		s.logger.Info("signup rejected", zap.String("email", email), zap.Error(err))
		return model.User{}, fmt.Errorf("%w: %w", ErrSignupFailed, err)
	}
	return s.signIn(email, token), nil
}

func (s *Store) signIn(email, token string) model.User {
	u := model.User{Email: email, Token: token}

	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()

	data, err := json.Marshal(u)
	if err == nil {
		err = s.kv.Set(storage.KeyUser, data)
	}
	if err != nil {
		s.logger.Warn("failed to persist user", zap.Error(err))
	}
	s.logger.Info("signed in", zap.String("email", email))
	return u
}

// Logout clears the user in memory and in storage.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err := s.kv.Remove(storage.KeyUser); err != nil {
		s.logger.Warn("failed to remove user", zap.Error(err))
	}
	s.logger.Info("signed out")
}
