package gateway

import (
	"bytes"
	"encoding/json"
)

// Envelope is the single response shape returned for every call. A backend
// may opt into the contract by responding with this shape directly; anything
// else gets wrapped as a success.
type Envelope struct {
	Error      bool            `json:"error"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data,omitempty"`
	StatusCode int             `json:"statusCode,omitempty"`
}

// DecodeData unmarshals the payload into dest.
func (e *Envelope) DecodeData(dest any) error {
	if e == nil || len(e.Data) == 0 {
		return nil
	}
	return json.Unmarshal(e.Data, dest)
}

// FailureKind is the fixed failure taxonomy produced by classification.
type FailureKind string

const (
	FailureServerRejected     FailureKind = "server_rejected"
	FailureNetworkUnavailable FailureKind = "network_unavailable"
	FailureRequestSetup       FailureKind = "request_setup"
)

// CallError carries the classified error envelope back to the caller.
type CallError struct {
	Kind     FailureKind
	Envelope *Envelope
}

func (e *CallError) Error() string {
	if e == nil || e.Envelope == nil {
		return "request failed"
	}
	return e.Envelope.Message
}

// Normalize turns a raw response body into an Envelope. A JSON object that
// already contains an "error" field passes through unchanged; everything else
// is wrapped as {error:false, message:"Success", data:<body>}. The pass is
// idempotent: normalizing an already-wrapped body is a no-op.
func Normalize(body []byte) *Envelope {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return &Envelope{Error: false, Message: "Success"}
	}

	if trimmed[0] == '{' {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err == nil {
			if _, ok := probe["error"]; ok {
				var env Envelope
				if err := json.Unmarshal(trimmed, &env); err == nil {
					return &env
				}
			}
		}
	}

	return &Envelope{
		Error:   false,
		Message: "Success",
		Data:    json.RawMessage(trimmed),
	}
}
