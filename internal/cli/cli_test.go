package cli

import (
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseEnvelopeShape(t *testing.T) {
	payload, err := json.Marshal(Response{Success: true, Data: map[string]string{"version": "1.0.0"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"version":"1.0.0"}}`, string(payload))

	payload, err = json.Marshal(Response{Success: false, Error: "boom"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"boom"}`, string(payload))
}

func TestPrintSuccessWritesIndentedJSON(t *testing.T) {
	out := captureStdout(t, func() {
		require.NoError(t, PrintSuccess(map[string]string{"status": "ok"}))
	})

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, out, "\n  ")
}

func TestPrintErrorWritesFailureEnvelope(t *testing.T) {
	out := captureStdout(t, func() {
		require.NoError(t, PrintError(assert.AnError))
	})

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, assert.AnError.Error(), resp.Error)
}

func TestLoginCommandRequiresCredentials(t *testing.T) {
	cmd := newLoginCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestRegisterCommandRequiresCredentials(t *testing.T) {
	cmd := newRegisterCmd()
	cmd.SetArgs([]string{"--email", "a@b.com"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
}

func TestCommandSurface(t *testing.T) {
	commands := []*cobra.Command{
		newLoginCmd(),
		newRegisterCmd(),
		newForgotPasswordCmd(),
		newWhoamiCmd(),
		newProfileCmd(),
		newLogoutCmd(),
	}
	names := make([]string, 0, len(commands))
	for _, cmd := range commands {
		require.NotEmpty(t, cmd.Short, "%s needs a short description", cmd.Use)
		names = append(names, cmd.Use)
	}
	assert.ElementsMatch(t,
		[]string{"login", "register", "forgot-password", "whoami", "profile", "logout"},
		names,
	)
}

func TestProfileCommandFlags(t *testing.T) {
	cmd := newProfileCmd()
	for _, flag := range []string{"avatar-url", "primary-contact", "secondary-contact"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing flag %s", flag)
	}
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	require.NoError(t, w.Close())

	buf := make([]byte, 64*1024)
	n, _ := r.Read(buf)
	return string(buf[:n])
}
