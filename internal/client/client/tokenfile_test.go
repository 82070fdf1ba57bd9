package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commoni", "tokens.json")

	got, err := LoadTokens(path)
	require.NoError(t, err, "missing file is not an error")
	assert.Equal(t, Tokens{}, got)

	want := Tokens{AccessToken: "a", RefreshToken: "r", AgentToken: "g"}
	require.NoError(t, SaveTokens(path, want))

	got, err = LoadTokens(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err = LoadTokens(path)
	require.ErrorContains(t, err, "parse token file")
}
