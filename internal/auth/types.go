package auth

import (
	"errors"
	"strings"
	"time"
)

// minPasswordLength is the minimum accepted password length on registration.
const minPasswordLength = 8

// maxDisplayNameLength caps display names to keep payloads sane.
const maxDisplayNameLength = 128

// User represents a registered account.
//
// GoogleSub is set for accounts provisioned through Google sign-in and is
// empty for password accounts. PasswordHash is an Argon2id PHC string and
// is never serialised.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	GoogleSub        string     `json:"-"`
	DisplayName      string     `json:"display_name"`
	TimezoneID       int64      `json:"timezone_id"`
	PasswordHash     string     `json:"-"` // never serialised
	PhoneCountryCode string     `json:"phone_country_code,omitempty"`
	PhoneNumber      string     `json:"phone_number,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
}

// Registration carries the fields submitted when creating an account.
type Registration struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	DisplayName      string `json:"display_name"`
	TimezoneID       int64  `json:"timezone_id"`
	PhoneCountryCode string `json:"phone_country_code"`
	PhoneNumber      string `json:"phone_number"`
}

// Validate checks the registration fields and returns a map of field name
// to failure reason. Timezone existence is checked separately against the
// database by the caller. An empty map means the fields are valid.
func (r Registration) Validate() map[string]string {
	problems := make(map[string]string)

	email := strings.TrimSpace(r.Email)
	if email == "" {
		problems["email"] = "email is required"
	} else if !strings.Contains(email, "@") {
		problems["email"] = "email must be a valid address"
	}

	if len(r.Password) < minPasswordLength {
		problems["password"] = "password must be at least 8 characters"
	}

	name := strings.TrimSpace(r.DisplayName)
	if name == "" {
		problems["display_name"] = "display_name is required"
	} else if len(name) > maxDisplayNameLength {
		problems["display_name"] = "display_name is too long"
	}

	if r.TimezoneID <= 0 {
		problems["timezone_id"] = "timezone_id is required"
	}

	return problems
}

// Sentinel errors for auth operations.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already registered")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenInvalid       = errors.New("invalid token")
)
