package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claude/coroshub/internal/models"
)

// Store persists the auth token as JSON at a per-user path, written with
// owner-only permissions. At most one process is assumed to own the file.
type Store struct {
	path string
}

// NewStore creates a token store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Read loads the stored token. An absent or malformed file is "no stored
// token", not an error.
func (s *Store) Read() (models.AuthToken, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return models.AuthToken{}, false
	}

	var tok models.AuthToken
	if err := json.Unmarshal(data, &tok); err != nil {
		return models.AuthToken{}, false
	}
	if !tok.Valid() {
		return models.AuthToken{}, false
	}
	return tok, true
}

// Write persists the token with 0600 permissions, creating the parent
// directory if needed.
func (s *Store) Write(tok models.AuthToken) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating token dir: %w", err)
	}

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// Clear removes the stored token. A missing file is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}
