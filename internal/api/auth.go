package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/verdant-labs/greenhouse-core/internal/auth"
	"github.com/verdant-labs/greenhouse-core/internal/greenhouse"
)

// authResponse is the body returned by registration and login.
type authResponse struct {
	Message     string `json:"message"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Token       string `json:"token"`
}

// loginRequest is the request body for POST /api/auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister creates a new account and returns a session token.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg auth.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if problems := reg.Validate(); len(problems) > 0 {
		writeValidationError(w, problems)
		return
	}

	// The timezone must exist before the account references it.
	if _, err := s.catalog.GetTimezone(r.Context(), reg.TimezoneID); err != nil {
		if errors.Is(err, greenhouse.ErrTimezoneNotFound) {
			writeValidationError(w, map[string]string{"timezone_id": "unknown timezone"})
			return
		}
		s.logger.Error("timezone lookup failed", "error", err)
		writeInternalError(w, "failed to register")
		return
	}

	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		s.logger.Error("hash password failed", "error", err)
		writeInternalError(w, "failed to register")
		return
	}

	user := &auth.User{
		Email:            reg.Email,
		DisplayName:      reg.DisplayName,
		TimezoneID:       reg.TimezoneID,
		PasswordHash:     hash,
		PhoneCountryCode: reg.PhoneCountryCode,
		PhoneNumber:      reg.PhoneNumber,
	}

	if err := s.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, auth.ErrEmailExists) {
			writeConflict(w, "email already registered")
			return
		}
		s.logger.Error("create user failed", "error", err)
		writeInternalError(w, "failed to register")
		return
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenTTL)
	if err != nil {
		s.logger.Error("generate token failed", "error", err, "user_id", user.ID)
		writeInternalError(w, "failed to register")
		return
	}

	s.logger.Info("user registered", "user_id", user.ID)

	writeJSON(w, http.StatusCreated, authResponse{
		Message:     "registration successful",
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Token:       token,
	})
}

// handleLogin authenticates by email and password and returns a session token.
// Unknown email and wrong password produce the same generic 401 so the
// endpoint cannot be used to enumerate accounts.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeBadRequest(w, "email and password are required")
		return
	}

	user, err := s.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, auth.ErrUserNotFound) {
			s.logger.Error("login lookup failed", "error", err)
			writeInternalError(w, "failed to log in")
			return
		}
		writeUnauthorized(w, "invalid email or password")
		return
	}

	ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		writeUnauthorized(w, "invalid email or password")
		return
	}

	if err := s.users.UpdateLastLogin(r.Context(), user.ID); err != nil {
		// Login still succeeds; the timestamp is advisory.
		s.logger.Warn("update last login failed", "error", err, "user_id", user.ID)
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenTTL)
	if err != nil {
		s.logger.Error("generate token failed", "error", err, "user_id", user.ID)
		writeInternalError(w, "failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Message:     "login successful",
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Token:       token,
	})
}
