package auth

import (
	"encoding/json"

	"github.com/voyago/voyago-client/pkg/gateway"
)

// Secondary protocol surface: conventional REST endpoints with flat bodies.
const (
	loginPath          = "/auth/login"
	registerPath       = "/auth/register"
	forgotPasswordPath = "/auth/forgot-password"
	logoutPath         = "/auth/logout"
)

// extractSecondary unwraps a secondary-protocol envelope: the data field when
// present, otherwise the envelope itself.
func extractSecondary(env *gateway.Envelope) json.RawMessage {
	if env == nil {
		return nil
	}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		return env.Data
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return nil
	}
	return raw
}
