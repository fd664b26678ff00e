package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerBody struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type forgotPasswordBody struct {
	Email string `json:"email" validate:"required,email"`
}

func decodeBody(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return validate.Struct(dest)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := s.store.Authenticate(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue tokens")
		return
	}

	writeEnvelope(w, http.StatusOK, envelope{
		Message: "Success",
		Data: map[string]any{
			"user":   userPayload(user),
			"tokens": tokens,
		},
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "email and a password of at least 8 characters are required")
		return
	}

	if _, err := s.store.FindByEmail(r.Context(), body.Email); err == nil {
		writeError(w, http.StatusConflict, "Email already in use")
		return
	} else if !errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "could not check email")
		return
	}

	user := &User{
		Email:     strings.ToLower(strings.TrimSpace(body.Email)),
		Username:  body.Username,
		FirstName: body.FirstName,
		LastName:  body.LastName,
	}
	if err := s.store.CreateUser(r.Context(), user, body.Password); err != nil {
		writeError(w, http.StatusInternalServerError, "could not create user")
		return
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue tokens")
		return
	}

	writeEnvelope(w, http.StatusCreated, envelope{
		Message: "Success",
		Data: map[string]any{
			"user":   userPayload(user),
			"tokens": tokens,
		},
	})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body forgotPasswordBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	// The dev backend never sends mail; it only confirms the flow started.
	writeEnvelope(w, http.StatusOK, envelope{
		Message: "Success",
		Data: map[string]any{
			"ok":      true,
			"message": "If the address exists, a reset link has been sent",
		},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.bearerClaims(r); !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized. Please log in again.")
		return
	}
	writeEnvelope(w, http.StatusOK, envelope{Message: "Success"})
}
