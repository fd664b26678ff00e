package cli

import (
	"encoding/json"
	"os"
)

// Response is the CLI's stdout envelope.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Print prints a value as JSON to stdout.
func Print(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintSuccess prints a success response.
func PrintSuccess(data any) error {
	return Print(Response{Success: true, Data: data})
}

// PrintError prints an error response.
func PrintError(err error) error {
	return Print(Response{Success: false, Error: err.Error()})
}
