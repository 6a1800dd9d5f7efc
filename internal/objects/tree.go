// Package objects implements the tree codec (component D) and commit codec
// (component E): serializing and parsing the two structured object kinds,
// and the directory snapshot/restore algorithms built on top of them.
package objects

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/systemshift/ugit/internal/store"
	"github.com/systemshift/ugit/internal/ugiterr"
	"github.com/systemshift/ugit/internal/worktree"
)

// Entry is one line of a tree object: a typed, named pointer to a blob or a
// nested tree.
type Entry struct {
	Kind store.Kind
	Oid  store.Oid
	Name string
}

// WriteTree scans dir (relative to root, "" for root itself), skipping any
// path ignored per the repository's ignore rule, hashes files as blobs and
// recurses into subdirectories, and persists a sorted tree object.
// Symlinks are not followed.
func WriteTree(gitDir, root, dir, ignoreName string) (store.Oid, error) {
	full := root
	if dir != "" {
		full = filepath.Join(root, dir)
	}

	infos, err := os.ReadDir(full)
	if err != nil {
		return "", fmt.Errorf("scanning %s: %w: %v", full, ugiterr.IOFailure, err)
	}

	var entries []Entry
	for _, info := range infos {
		rel := info.Name()
		if dir != "" {
			rel = filepath.Join(dir, info.Name())
		}
		if worktree.IsIgnored(rel, ignoreName) {
			continue
		}

		if info.Type()&os.ModeSymlink != 0 {
			continue
		}

		if info.IsDir() {
			oid, err := WriteTree(gitDir, root, rel, ignoreName)
			if err != nil {
				return "", err
			}
			entries = append(entries, Entry{Kind: store.Tree, Oid: oid, Name: info.Name()})
			continue
		}

		data, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			return "", fmt.Errorf("reading %s: %w: %v", rel, ugiterr.IOFailure, err)
		}
		oid, err := store.Put(gitDir, data, store.Blob)
		if err != nil {
			return "", err
		}
		entries = append(entries, Entry{Kind: store.Blob, Oid: oid, Name: info.Name()})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s %s %s\n", e.Kind, e.Oid, e.Name)
	}

	return store.Put(gitDir, []byte(sb.String()), store.Tree)
}

// ReadTreeEntries parses a tree object into its sorted sequence of entries.
func ReadTreeEntries(gitDir string, oid store.Oid) ([]Entry, error) {
	if oid == "" {
		return nil, nil
	}
	payload, err := store.Get(gitDir, oid, store.Tree)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, line := range strings.Split(strings.TrimSuffix(string(payload), "\n"), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("tree %s: malformed entry %q: %w", oid, line, ugiterr.InvalidObject)
		}
		kind, entryOid, name := store.Kind(parts[0]), parts[1], parts[2]
		if kind != store.Blob && kind != store.Tree {
			return nil, fmt.Errorf("tree %s: unknown entry type %q: %w", oid, kind, ugiterr.InvalidObject)
		}
		if err := validateName(name); err != nil {
			return nil, fmt.Errorf("tree %s: %w", oid, err)
		}
		entries = append(entries, Entry{Kind: kind, Oid: entryOid, Name: name})
	}
	return entries, nil
}

func validateName(name string) error {
	if strings.Contains(name, "/") || name == "." || name == ".." {
		return fmt.Errorf("invalid tree entry name %q: %w", name, ugiterr.InvalidObject)
	}
	return nil
}

// Flatten recursively expands a tree into a path→blob-oid map. It uses an
// explicit worklist rather than call-stack recursion so a deeply nested
// directory tree cannot overflow the goroutine stack.
func Flatten(gitDir string, oid store.Oid) (map[string]store.Oid, error) {
	result := make(map[string]store.Oid)
	if oid == "" {
		return result, nil
	}

	type item struct {
		oid  store.Oid
		base string
	}
	stack := []item{{oid: oid, base: ""}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := ReadTreeEntries(gitDir, top.oid)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			path := top.base + e.Name
			switch e.Kind {
			case store.Blob:
				result[path] = e.Oid
			case store.Tree:
				stack = append(stack, item{oid: e.Oid, base: path + "/"})
			}
		}
	}
	return result, nil
}

// Restore empties the working tree (per the ignore rule) and materializes
// every path in oid's flattened tree, creating parent directories as
// needed.
func Restore(gitDir, root string, oid store.Oid, ignoreName string) error {
	if err := worktree.Empty(root, ignoreName); err != nil {
		return err
	}

	flat, err := Flatten(gitDir, oid)
	if err != nil {
		return err
	}

	for path, blobOid := range flat {
		data, err := store.Get(gitDir, blobOid, store.Blob)
		if err != nil {
			return err
		}
		full := filepath.Join(root, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w: %v", path, ugiterr.IOFailure, err)
		}
		if err := os.WriteFile(full, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w: %v", path, ugiterr.IOFailure, err)
		}
	}
	return nil
}
