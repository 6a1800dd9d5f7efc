// Package worktree implements working-tree I/O (component F): scanning,
// hashing, wiping, and the ignore rule applied to a directory.
package worktree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pjbgf/sha1cd"

	"github.com/systemshift/ugit/internal/ugiterr"
)

// IsIgnored reports whether path is ignored: any of its "/"-separated
// segments equals the repository directory's basename (ignoreName).
func IsIgnored(path, ignoreName string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == ignoreName {
			return true
		}
	}
	return false
}

// HashBlob computes the oid a blob would get if persisted, without writing
// it to the object store. Scanning the working tree only needs to know
// whether content is new or unchanged relative to the index; it does not
// need to persist every file on disk as a side effect.
func HashBlob(data []byte) string {
	h := sha1cd.New()
	h.Write([]byte("blob"))
	h.Write([]byte{0})
	h.Write(data)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Scan walks root, skipping ignored paths and non-regular files, and
// returns a path→blob-oid map of the current on-disk content. Paths are
// relative to root, using "/" separators.
func Scan(root, ignoreName string) (map[string]string, error) {
	result := make(map[string]string)

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if IsIgnored(rel, ignoreName) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		result[rel] = HashBlob(data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning working tree: %w: %v", ugiterr.IOFailure, err)
	}
	return result, nil
}

// Empty performs a bottom-up wipe of root: every non-ignored regular file is
// removed, then every non-ignored directory is removed if by then empty.
// A directory that still holds ignored content is left in place.
func Empty(root, ignoreName string) error {
	var dirs []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if IsIgnored(rel, ignoreName) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			dirs = append(dirs, path)
			return nil
		}
		if info.Mode().IsRegular() {
			if err := os.Remove(path); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("emptying working tree: %w: %v", ugiterr.IOFailure, err)
	}

	// Remove directories deepest-first, tolerating non-empty ones (they
	// still hold ignored content).
	for i := len(dirs) - 1; i >= 0; i-- {
		os.Remove(dirs[i])
	}
	return nil
}
