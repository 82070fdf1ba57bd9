package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/commoni/commoni/internal/filex"
)

// LoadTokens reads tokens saved by SaveTokens. A missing file yields empty
// Tokens.
func LoadTokens(path string) (Tokens, error) {
	var t Tokens
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return t, fmt.Errorf("read token file: %w", err)
	}
	if err := json.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parse token file %s: %w", path, err)
	}
	return t, nil
}

// SaveTokens writes t to path with owner-only permissions.
func SaveTokens(path string, t Tokens) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return filex.WritePrivate(path, data)
}
