// Package store implements the object store (component A): a content
// addressed, append-only collection of typed immutable byte records living
// under <gitDir>/objects.
package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pjbgf/sha1cd"

	"github.com/systemshift/ugit/internal/ugiterr"
)

// Kind is the declared type of a stored object.
type Kind string

const (
	Blob   Kind = "blob"
	Tree   Kind = "tree"
	Commit Kind = "commit"
)

const objectsDir = "objects"

// Oid is a lowercase hex SHA-1 string, 40 characters long.
type Oid = string

// Put hashes type||0x00||payload with a collision-detecting SHA-1 and
// persists the full encoded form under objects/<oid>. Writing an oid that
// already exists is a no-op: the store is content addressed, so the bytes
// must already match.
func Put(gitDir string, payload []byte, kind Kind) (Oid, error) {
	encoded := encode(payload, kind)

	h := sha1cd.New()
	h.Write(encoded)
	oid := fmt.Sprintf("%x", h.Sum(nil))

	dir := filepath.Join(gitDir, objectsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating objects dir: %w: %v", ugiterr.IOFailure, err)
	}

	dst := filepath.Join(dir, oid)
	if _, err := os.Stat(dst); err == nil {
		return oid, nil
	}

	tmp := filepath.Join(dir, ".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, encoded, 0o644); err != nil {
		return "", fmt.Errorf("writing object %s: %w: %v", oid, ugiterr.IOFailure, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("renaming object %s into place: %w: %v", oid, ugiterr.IOFailure, err)
	}
	return oid, nil
}

// Get reads objects/<oid>, splits the type header from the payload, and
// returns the payload. If expected is non-empty and the object's declared
// type doesn't match, Get fails with ugiterr.TypeMismatch. Pass "" to read
// untyped (e.g. for dumping raw content).
func Get(gitDir string, oid Oid, expected Kind) ([]byte, error) {
	path := filepath.Join(gitDir, objectsDir, oid)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object %s: %w", oid, ugiterr.NotFound)
		}
		return nil, fmt.Errorf("reading object %s: %w: %v", oid, ugiterr.IOFailure, err)
	}

	kind, payload, ok := bytes.Cut(raw, []byte{0})
	if !ok {
		return nil, fmt.Errorf("object %s has no type header: %w", oid, ugiterr.InvalidObject)
	}
	if expected != "" && Kind(kind) != expected {
		return nil, fmt.Errorf("object %s: expected %s, got %s: %w", oid, expected, kind, ugiterr.TypeMismatch)
	}
	return payload, nil
}

// Exists reports whether an object with the given oid is present.
func Exists(gitDir string, oid Oid) bool {
	_, err := os.Stat(filepath.Join(gitDir, objectsDir, oid))
	return err == nil
}

// KindOf returns the declared type of a stored object without asserting it.
func KindOf(gitDir string, oid Oid) (Kind, error) {
	path := filepath.Join(gitDir, objectsDir, oid)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("object %s: %w", oid, ugiterr.NotFound)
		}
		return "", fmt.Errorf("reading object %s: %w: %v", oid, ugiterr.IOFailure, err)
	}
	kind, _, ok := bytes.Cut(raw, []byte{0})
	if !ok {
		return "", fmt.Errorf("object %s has no type header: %w", oid, ugiterr.InvalidObject)
	}
	return Kind(kind), nil
}

func encode(payload []byte, kind Kind) []byte {
	buf := make([]byte, 0, len(kind)+1+len(payload))
	buf = append(buf, kind...)
	buf = append(buf, 0)
	buf = append(buf, payload...)
	return buf
}

// CopyObjectFile copies a single object file from one repository's objects
// directory to another's, atomically (temp name, then rename), as required
// by replication's "individually atomic" copy discipline.
func CopyObjectFile(dstGitDir, srcGitDir string, oid Oid) error {
	srcPath := filepath.Join(srcGitDir, objectsDir, oid)
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("reading remote object %s: %w: %v", oid, ugiterr.IOFailure, err)
	}

	dstDir := filepath.Join(dstGitDir, objectsDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating objects dir: %w: %v", ugiterr.IOFailure, err)
	}
	tmp := filepath.Join(dstDir, ".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("staging object %s: %w: %v", oid, ugiterr.IOFailure, err)
	}
	dst := filepath.Join(dstDir, oid)
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming object %s into place: %w: %v", oid, ugiterr.IOFailure, err)
	}
	return nil
}
