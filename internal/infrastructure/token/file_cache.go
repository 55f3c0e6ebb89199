package token

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	usecase "backoffice/catalog/internal/usecase/auth"
)

// FileCache keeps the session token in a single file with owner-only permissions.
type FileCache struct {
	path string
}

var _ usecase.SessionCache = (*FileCache)(nil)

// NewFileCache returns a cache at path. An empty path disables persistence.
func NewFileCache(path string) *FileCache {
	return &FileCache{path: strings.TrimSpace(path)}
}

// Load returns the cached token, or "" when none is stored.
func (c *FileCache) Load() (string, error) {
	if c.path == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read session file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes the token, replacing any previous one.
func (c *FileCache) Save(token string) error {
	if c.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(c.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Clear removes the stored token.
func (c *FileCache) Clear() error {
	if c.path == "" {
		return nil
	}
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
