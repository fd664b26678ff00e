package auth

import (
	"github.com/voyago/voyago-client/pkg/tokenstore"
)

// User mirrors the backend user shape (camelCase, GraphQL field names).
type User struct {
	ID               string         `json:"id"`
	Username         string         `json:"username,omitempty"`
	Email            string         `json:"email,omitempty"`
	FirstName        string         `json:"firstName,omitempty"`
	LastName         string         `json:"lastName,omitempty"`
	AvatarURL        string         `json:"avatarUrl,omitempty"`
	PrimaryContact   string         `json:"primaryContact,omitempty"`
	SecondaryContact string         `json:"secondaryContact,omitempty"`
	ProfileJSON      map[string]any `json:"profileJson,omitempty"`
}

// LoginRequest captures the credentials sent to the login operation.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest captures the fields sent to the registration operation.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Username  string `json:"username,omitempty" validate:"omitempty,min=3"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// PasswordResetRequest asks the backend to start a reset flow.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UpdateProfileRequest carries the mutable profile fields.
type UpdateProfileRequest struct {
	AvatarURL        string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	PrimaryContact   string `json:"primaryContact,omitempty"`
	SecondaryContact string `json:"secondaryContact,omitempty"`
}

// AuthResult is the unified outcome of login and registration, whichever
// protocol produced it.
type AuthResult struct {
	User   User                   `json:"user"`
	Tokens tokenstore.TokenBundle `json:"tokens"`
}

// PasswordResetResult reports the outcome of a reset request.
type PasswordResetResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}
