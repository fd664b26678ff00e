package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	defaultErrorMessage = "An unexpected error occurred"
	networkErrorMessage = "Network error. Please check your connection."
	setupErrorMessage   = "Request failed to send"
)

// statusMessages maps unclassified server statuses to user-facing copy.
var statusMessages = map[int]string{
	400: "Bad request. Please check your input.",
	401: "Unauthorized. Please log in again.",
	403: "Access denied. You do not have permission.",
	404: "Resource not found.",
	500: "Server error. Please try again later.",
	503: "Service unavailable. Please try again later.",
}

// classifyResponse builds the error envelope for a non-2xx server response.
// A body that carries its own message wins over the status-code table.
func classifyResponse(status int, body []byte) *Envelope {
	env := &Envelope{
		Error:      true,
		Message:    defaultErrorMessage,
		StatusCode: status,
	}

	var backend struct {
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &backend); err == nil && strings.TrimSpace(backend.Message) != "" {
		env.Message = backend.Message
		env.Data = backend.Data
		return env
	}

	if msg, ok := statusMessages[status]; ok {
		env.Message = msg
	} else {
		env.Message = fmt.Sprintf("Request failed with status %d", status)
	}
	return env
}

// classifyTransport covers the no-response case: the request went out but
// nothing came back, including the transport timeout.
func classifyTransport(err error) *Envelope {
	env := &Envelope{
		Error:      true,
		Message:    networkErrorMessage,
		StatusCode: 0,
	}
	if err != nil {
		detail, _ := json.Marshal(map[string]string{"cause": err.Error()})
		env.Data = detail
	}
	return env
}

// classifySetup covers failures before the request ever left the client.
func classifySetup(err error) *Envelope {
	msg := setupErrorMessage
	if err != nil && strings.TrimSpace(err.Error()) != "" {
		msg = err.Error()
	}
	return &Envelope{
		Error:   true,
		Message: msg,
	}
}
