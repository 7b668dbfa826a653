// Package auth provides authentication for Greenhouse Core.
//
// It implements:
//   - Argon2id password hashing (OWASP 2025 recommendation)
//   - Stateless JWT API tokens (HS256, long-lived, subject = user ID)
//   - Registration field validation
//   - SQLite-backed user account persistence
//
// There are no roles: every account is an ordinary grower and resource
// access is decided by ownership (a user can only touch greenhouses they
// own). Logout is client-side token discard; a token stays valid until
// its expiry.
package auth
