// Package images provides photo staging, inspection, and placeholder generation.
package images

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Staging manages the scratch area used while exporting.
// Photos are copied in under their final export name just before
// asset creation and released immediately after, whether or not
// creation succeeded. Thread-safe for concurrent operations.
type Staging struct {
	basePath string
	mu       sync.Mutex // Protects file operations
}

// NewStaging creates a staging area rooted at basePath.
func NewStaging(basePath string) (*Staging, error) {
	if basePath == "" {
		return nil, fmt.Errorf("staging path cannot be empty")
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	return &Staging{basePath: basePath}, nil
}

// Stage copies the file at src into the staging area under name,
// preserving the source extension. Returns the staged path.
func (s *Staging) Stage(name, src string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("name cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dst := filepath.Join(s.basePath, name+filepath.Ext(src))

	in, err := os.Open(src) //#nosec G304 -- Source path comes from the image collection
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst) //#nosec G304 -- Destination is inside the staging area
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst) //nolint:errcheck // Best-effort cleanup of a partial copy
		return "", fmt.Errorf("copy to staging: %w", err)
	}

	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close staged file: %w", err)
	}

	return dst, nil
}

// Release removes a staged file. Already-released files are not an error.
func (s *Staging) Release(path string) error {
	if path == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to release staged file: %w", err)
	}
	return nil
}

// Path returns the base directory of the staging area.
func (s *Staging) Path() string {
	return s.basePath
}
