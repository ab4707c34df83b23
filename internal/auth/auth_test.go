// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cerevo/cerevo-tui/internal/model"
	"github.com/cerevo/cerevo-tui/internal/storage"
)

// rejectingIssuer refuses every credential.
type rejectingIssuer struct{}

func (rejectingIssuer) Login(context.Context, string, string) (string, error) {
	return "", errors.New("unknown user")
}

func (rejectingIssuer) Signup(context.Context, string, string) (string, error) {
	return "", errors.New("email taken")
}

// countingIssuer records how often it was asked.
type countingIssuer struct{ calls int }

func (c *countingIssuer) Login(context.Context, string, string) (string, error) {
	c.calls++
	return "token", nil
}

func (c *countingIssuer) Signup(context.Context, string, string) (string, error) {
	c.calls++
	return "token", nil
}

func newIssuer(t *testing.T) *StandInIssuer {
	t.Helper()
	iss, err := NewStandInIssuer()
	require.NoError(t, err)
	return iss
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name                     string
		email, password, confirm string
		want                     error
	}{
		{"ok", "dev@example.com", "secret1", "secret1", nil},
		{"missing email", "", "secret1", "secret1", ErrMissingFields},
		{"missing confirm", "dev@example.com", "secret1", "", ErrMissingFields},
		{"bad email", "dev@example", "secret1", "secret1", ErrInvalidEmail},
		{"space before at", "dev @example.com", "secret1", "secret1", ErrInvalidEmail},
		{"short password", "dev@example.com", "12345", "12345", ErrPasswordTooShort},
		{"mismatch", "dev@example.com", "secret1", "secret2", ErrPasswordMismatch},
		{"length checked before match", "dev@example.com", "123", "456", ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignup(tt.email, tt.password, tt.confirm)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateLogin(t *testing.T) {
	assert.ErrorIs(t, ValidateLogin("", "x"), ErrMissingFields)
	assert.ErrorIs(t, ValidateLogin("a@b.co", ""), ErrMissingFields)
	assert.ErrorIs(t, ValidateLogin("not-an-email", "x"), ErrInvalidEmail)
	assert.NoError(t, ValidateLogin("a@b.co", "x"), "login has no length rule")
}

func TestValidationMessages(t *testing.T) {
	assert.Equal(t, "Please fill in all fields", ErrMissingFields.Error())
	assert.Equal(t, "Please enter a valid email", ErrInvalidEmail.Error())
	assert.Equal(t, "Password must be at least 6 characters", ErrPasswordTooShort.Error())
	assert.Equal(t, "Passwords do not match", ErrPasswordMismatch.Error())
}

// =============================================================================
// STAND-IN ISSUER
// =============================================================================

func TestStandInIssuer_TokenRoundTrip(t *testing.T) {
	iss := newIssuer(t)

	token, err := iss.Login(context.Background(), "dev@example.com", "whatever")
	require.NoError(t, err)

	claims, err := iss.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", claims.Email)
	assert.True(t, claims.StandIn)
	assert.Equal(t, StandInIssuerName, claims.Issuer)

	inspected, err := InspectToken(token)
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", inspected.Subject)
}

func TestStandInIssuer_RejectsForeignToken(t *testing.T) {
	token, err := newIssuer(t).Signup(context.Background(), "a@b.co", "secret1")
	require.NoError(t, err)

	_, err = newIssuer(t).Verify(token)
	assert.Error(t, err, "different signing key")
}

func TestStandInIssuer_ExpiredToken(t *testing.T) {
	iss := newIssuer(t)
	iss.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	token, err := iss.Login(context.Background(), "a@b.co", "x")
	require.NoError(t, err)

	iss.now = time.Now
	_, err = iss.Verify(token)
	assert.Error(t, err)
}

func TestStandInIssuer_DelayHonoursContext(t *testing.T) {
	iss := newIssuer(t)
	iss.Delay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := iss.Login(ctx, "a@b.co", "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInspectToken_Garbage(t *testing.T) {
	_, err := InspectToken("mock-jwt-token-123")
	assert.Error(t, err)
}

// =============================================================================
// STORE
// =============================================================================

func TestStore_SignupPersistsUser(t *testing.T) {
	kv := storage.NewMemoryBackend()
	store := NewStore(kv, newIssuer(t), nil)
	assert.False(t, store.LoggedIn())

	u, err := store.Signup(context.Background(), " dev@example.com ", "secret1", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", u.Email)
	assert.NotEmpty(t, u.Token)

	raw, err := kv.Get(storage.KeyUser)
	require.NoError(t, err)
	var stored model.User
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, u, stored)

	// A fresh process sees the same user.
	again := NewStore(kv, newIssuer(t), nil)
	cur, ok := again.Current()
	require.True(t, ok)
	assert.Equal(t, u, cur)
}

func TestStore_LoginAndLogout(t *testing.T) {
	kv := storage.NewMemoryBackend()
	store := NewStore(kv, newIssuer(t), nil)

	_, err := store.Login(context.Background(), "dev@example.com", "pw")
	require.NoError(t, err)
	assert.True(t, store.LoggedIn())

	store.Logout()
	assert.False(t, store.LoggedIn())
	_, err = kv.Get(storage.KeyUser)
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
}

func TestStore_ValidationHappensBeforeIssuer(t *testing.T) {
	issuer := &countingIssuer{}
	store := NewStore(storage.NewMemoryBackend(), issuer, nil)

	_, err := store.Signup(context.Background(), "dev@example.com", "123", "123")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	_, err = store.Login(context.Background(), "nope", "pw")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	assert.Zero(t, issuer.calls)
	assert.False(t, store.LoggedIn())
}

func TestStore_IssuerRejection(t *testing.T) {
	store := NewStore(storage.NewMemoryBackend(), rejectingIssuer{}, nil)

	_, err := store.Login(context.Background(), "dev@example.com", "pw")
	assert.ErrorIs(t, err, ErrLoginFailed)

	_, err = store.Signup(context.Background(), "dev@example.com", "secret1", "secret1")
	assert.ErrorIs(t, err, ErrSignupFailed)
	assert.False(t, store.LoggedIn())

	assert.Equal(t, "invalid credentials", ErrLoginFailed.Error())
	assert.Equal(t, "registration failed", ErrSignupFailed.Error())
}

func TestStore_CorruptUserIsRemoved(t *testing.T) {
	kv := storage.NewMemoryBackend()
	require.NoError(t, kv.Set(storage.KeyUser, []byte(`{broken`)))

	store := NewStore(kv, newIssuer(t), nil)
	assert.False(t, store.LoggedIn())

	_, err := kv.Get(storage.KeyUser)
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
}
