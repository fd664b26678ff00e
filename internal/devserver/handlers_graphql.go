package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

type graphQLBody struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLErrorItem struct {
	Message string `json:"message"`
}

func writeGraphQLData(w http.ResponseWriter, op string, result any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]any{op: result},
	})
}

// writeGraphQLError follows the graphene convention: errors ride in an
// "errors" array on a 200 response.
func writeGraphQLError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data":   nil,
		"errors": []graphQLErrorItem{{Message: message}},
	})
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	var body graphQLBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid graphql document")
		return
	}

	switch operationName(body.Query) {
	case "login":
		s.graphQLLogin(w, r, body.Variables)
	case "register":
		s.graphQLRegister(w, r, body.Variables)
	case "forgotPassword":
		s.graphQLForgotPassword(w, body.Variables)
	case "updateProfile":
		s.graphQLUpdateProfile(w, r, body.Variables)
	case "me":
		s.graphQLMe(w, r)
	default:
		writeGraphQLError(w, "Unknown operation")
	}
}

// operationName picks out the first field selected by the document.
func operationName(query string) string {
	for _, op := range []string{"login", "register", "forgotPassword", "updateProfile", "me"} {
		if strings.Contains(query, op+"(") {
			return op
		}
	}
	if strings.Contains(query, "me") {
		return "me"
	}
	return ""
}

func stringVar(vars map[string]any, key string) string {
	if vars == nil {
		return ""
	}
	if value, ok := vars[key].(string); ok {
		return value
	}
	return ""
}

func (s *Server) graphQLLogin(w http.ResponseWriter, r *http.Request, vars map[string]any) {
	email := stringVar(vars, "email")
	password := stringVar(vars, "password")
	if email == "" || password == "" {
		writeGraphQLError(w, "email and password are required")
		return
	}

	user, err := s.store.Authenticate(r.Context(), email, password)
	if err != nil {
		writeGraphQLError(w, "Invalid credentials")
		return
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		writeGraphQLError(w, "could not issue tokens")
		return
	}

	writeGraphQLData(w, "login", map[string]any{
		"user":         userPayload(user),
		"accessToken":  tokens["accessToken"],
		"refreshToken": tokens["refreshToken"],
	})
}

func (s *Server) graphQLRegister(w http.ResponseWriter, r *http.Request, vars map[string]any) {
	email := stringVar(vars, "email")
	password := stringVar(vars, "password")
	if email == "" || password == "" {
		writeGraphQLError(w, "email and password are required")
		return
	}

	if _, err := s.store.FindByEmail(r.Context(), email); err == nil {
		writeGraphQLError(w, "Email already in use")
		return
	} else if !errors.Is(err, ErrNotFound) {
		writeGraphQLError(w, "could not check email")
		return
	}

	user := &User{
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Username:  stringVar(vars, "username"),
		FirstName: stringVar(vars, "firstName"),
		LastName:  stringVar(vars, "lastName"),
	}
	if err := s.store.CreateUser(r.Context(), user, password); err != nil {
		writeGraphQLError(w, "could not create user")
		return
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		writeGraphQLError(w, "could not issue tokens")
		return
	}

	writeGraphQLData(w, "register", map[string]any{
		"user":         userPayload(user),
		"accessToken":  tokens["accessToken"],
		"refreshToken": tokens["refreshToken"],
	})
}

func (s *Server) graphQLForgotPassword(w http.ResponseWriter, vars map[string]any) {
	if stringVar(vars, "email") == "" {
		writeGraphQLError(w, "email is required")
		return
	}
	writeGraphQLData(w, "forgotPassword", map[string]any{
		"ok":      true,
		"message": "If the address exists, a reset link has been sent",
	})
}

func (s *Server) graphQLMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.bearerClaims(r)
	if !ok {
		writeGraphQLError(w, "Authentication required")
		return
	}
	user, err := s.store.FindByID(r.Context(), claims.UserID)
	if err != nil {
		writeGraphQLError(w, "Authentication required")
		return
	}
	writeGraphQLData(w, "me", userPayload(user))
}

func (s *Server) graphQLUpdateProfile(w http.ResponseWriter, r *http.Request, vars map[string]any) {
	claims, ok := s.bearerClaims(r)
	if !ok {
		writeGraphQLError(w, "Authentication required")
		return
	}

	user, err := s.store.UpdateProfile(
		r.Context(),
		claims.UserID,
		stringVar(vars, "avatarUrl"),
		stringVar(vars, "primaryContact"),
		stringVar(vars, "secondaryContact"),
	)
	if err != nil {
		writeGraphQLError(w, "could not update profile")
		return
	}

	writeGraphQLData(w, "updateProfile", map[string]any{
		"user": userPayload(user),
	})
}
