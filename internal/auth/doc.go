// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth holds the signed-in user and the credential issuer behind it.
//
// Store is the explicit authentication object: it is initialised from the
// "user" storage key at startup, updated on Login and Signup, and cleared on
// Logout. Components that need the user receive the Store; nothing reads
// authentication state from package globals.
//
// Credentials are checked by an Issuer. The only implementation shipped is
// StandInIssuer, which accepts any well-formed credentials and mints a
// locally signed token marked "stand-in". A real identity service can be
// substituted by implementing Issuer.
package auth
