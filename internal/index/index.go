// Package index implements the index store (component C): the staged
// path→oid map persisted as a single JSON document at <gitDir>/index.
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/systemshift/ugit/internal/ugiterr"
)

const fileName = "index"

// Map is the staged path→oid document.
type Map map[string]string

// Load reads the index document, returning an empty map if it doesn't
// exist or is empty.
func Load(gitDir string) (Map, error) {
	path := filepath.Join(gitDir, fileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Map{}, nil
		}
		return nil, fmt.Errorf("reading index: %w: %v", ugiterr.IOFailure, err)
	}
	if len(raw) == 0 {
		return Map{}, nil
	}
	var m Map
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parsing index: %w: %v", ugiterr.InvalidObject, err)
	}
	return m, nil
}

// Save persists m to the index document.
func Save(gitDir string, m Map) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling index: %w: %v", ugiterr.IOFailure, err)
	}
	path := filepath.Join(gitDir, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing index: %w: %v", ugiterr.IOFailure, err)
	}
	return nil
}

// With is a scoped acquisition: it locks <gitDir>/index.lock, loads the
// index (or an empty map), hands the mutable map to body, then persists the
// map on all exit paths, including when body returns an error. The lock
// turns a second concurrent ugit process into a reported error instead of
// silent index corruption; it is advisory, not a substitute for the
// documented single-writer assumption.
func With(gitDir string, body func(Map) error) error {
	lock := flock.New(filepath.Join(gitDir, fileName+".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("locking index: %w: %v", ugiterr.IOFailure, err)
	}
	if !locked {
		return fmt.Errorf("index is locked by another ugit process: %w", ugiterr.InvalidState)
	}
	defer lock.Unlock()

	m, err := Load(gitDir)
	if err != nil {
		return err
	}

	bodyErr := body(m)

	if saveErr := Save(gitDir, m); saveErr != nil {
		if bodyErr != nil {
			return bodyErr
		}
		return saveErr
	}
	return bodyErr
}
