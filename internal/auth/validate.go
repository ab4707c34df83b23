// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import "regexp"

// MinPasswordLength is the shortest password Signup accepts.
const MinPasswordLength = 6

// ValidationError is a user-facing problem with submitted credentials.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface. It returns the message alone so it
// can be shown next to the form unchanged.
func (e *ValidationError) Error() string {
	return e.Message
}

// Is matches on Message.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// Validation sentinels.
var (
	ErrMissingFields    = &ValidationError{Message: "Please fill in all fields"}
	ErrInvalidEmail     = &ValidationError{Field: "email", Message: "Please enter a valid email"}
	ErrPasswordTooShort = &ValidationError{Field: "password", Message: "Password must be at least 6 characters"}
	ErrPasswordMismatch = &ValidationError{Field: "confirm", Message: "Passwords do not match"}
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// ValidEmail reports whether email looks like an address.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateLogin checks login credentials before any I/O.
func ValidateLogin(email, password string) error {
	if email == "" || password == "" {
		return ErrMissingFields
	}
	if !ValidEmail(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateSignup checks signup credentials before any I/O. Checks run in a
// fixed order and the first failure wins.
func ValidateSignup(email, password, confirm string) error {
	if email == "" || password == "" || confirm == "" {
		return ErrMissingFields
	}
	if !ValidEmail(email) {
		return ErrInvalidEmail
	}
	if len([]rune(password)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}
