package auth

import (
	"encoding/json"
	"fmt"

	"github.com/voyago/voyago-client/pkg/gateway"
)

// graphQLPath is the primary protocol surface: one POST endpoint accepting a
// query/variables document.
const graphQLPath = "/graphql/"

const userSelection = "user { id username email firstName lastName avatarUrl primaryContact secondaryContact profileJson }"

var (
	loginDocument = fmt.Sprintf(`mutation Login($email: String!, $password: String!) {
  login(email: $email, password: $password) { %s accessToken refreshToken }
}`, userSelection)

	registerDocument = fmt.Sprintf(`mutation Register($email: String!, $password: String!, $username: String, $firstName: String, $lastName: String) {
  register(email: $email, password: $password, username: $username, firstName: $firstName, lastName: $lastName) { %s accessToken refreshToken }
}`, userSelection)

	forgotPasswordDocument = `mutation ForgotPassword($email: String!) {
  forgotPassword(email: $email) { ok message }
}`

	meDocument = fmt.Sprintf(`query Me { me { %s } }`, "id username email firstName lastName avatarUrl primaryContact secondaryContact profileJson")

	updateProfileDocument = fmt.Sprintf(`mutation UpdateProfile($avatarUrl: String, $primaryContact: String, $secondaryContact: String) {
  updateProfile(avatarUrl: $avatarUrl, primaryContact: $primaryContact, secondaryContact: $secondaryContact) { %s }
}`, userSelection)
)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

func (e graphQLError) Error() string {
	if e.Message == "" {
		return "graphql operation failed"
	}
	return e.Message
}

// payloadShape tags how the primary response nested its result, so extraction
// is explicit rather than ad hoc shape-sniffing.
type payloadShape int

const (
	// shapeNested is the wrapped form: the operation name keys the result,
	// either under a "data" object or at the top of the payload.
	shapeNested payloadShape = iota
	// shapeFlat is the flatter form: the operation result is the payload.
	shapeFlat
)

// extractOperation unwraps a primary-protocol envelope for the named
// operation. A payload carrying GraphQL errors counts as a failed attempt.
func extractOperation(env *gateway.Envelope, op string) (json.RawMessage, payloadShape, error) {
	if env == nil || len(env.Data) == 0 {
		return nil, shapeFlat, fmt.Errorf("empty %s response", op)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return nil, shapeFlat, fmt.Errorf("decode %s response: %w", op, err)
	}

	if raw, ok := payload["errors"]; ok {
		var errs []graphQLError
		if err := json.Unmarshal(raw, &errs); err == nil && len(errs) > 0 {
			return nil, shapeFlat, errs[0]
		}
	}

	if raw, ok := payload["data"]; ok && len(raw) > 0 && string(raw) != "null" {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(raw, &inner); err == nil {
			if result, ok := inner[op]; ok && string(result) != "null" {
				return result, shapeNested, nil
			}
		}
	}

	if result, ok := payload[op]; ok && string(result) != "null" {
		return result, shapeNested, nil
	}

	return env.Data, shapeFlat, nil
}
