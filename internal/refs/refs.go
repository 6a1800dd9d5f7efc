// Package refs implements the reference store (component B): named mutable
// pointers, direct or symbolic, rooted at <gitDir>.
package refs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/systemshift/ugit/internal/ugiterr"
)

const symbolicPrefix = "ref: "

// Value is the result of resolving a reference one or more steps.
// Symbolic is true when the final (or, with Deref=false, the immediate)
// value is itself a reference name rather than an oid.
type Value struct {
	Symbolic bool
	Value    string // oid, or a ref name when Symbolic is true; "" when absent
}

// IsAbsent reports whether the ref has no value on disk.
func (v Value) IsAbsent() bool { return v.Value == "" }

// Get reads <gitDir>/<ref>. When deref is true, resolution recurses through
// symbolic references until a direct value (or an absent file) is reached.
// When false, a single-step result is returned.
func Get(gitDir, ref string, deref bool) (Value, error) {
	return get(gitDir, ref, deref, 0)
}

const maxDerefDepth = 64

func get(gitDir, ref string, deref bool, depth int) (Value, error) {
	if depth > maxDerefDepth {
		return Value{}, fmt.Errorf("ref %s: symbolic reference chain too deep: %w", ref, ugiterr.InvalidState)
	}

	path := filepath.Join(gitDir, filepath.FromSlash(ref))
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Value{Value: ""}, nil
		}
		return Value{}, fmt.Errorf("reading ref %s: %w: %v", ref, ugiterr.IOFailure, err)
	}

	text := string(raw)
	if strings.HasPrefix(text, symbolicPrefix) {
		target := strings.TrimSpace(strings.TrimPrefix(text, symbolicPrefix))
		if !deref {
			return Value{Symbolic: true, Value: target}, nil
		}
		return get(gitDir, target, true, depth+1)
	}

	return Value{Symbolic: false, Value: strings.TrimSpace(text)}, nil
}

// Update writes v to ref. When deref is true and ref currently resolves
// symbolically, the final target of the chain is rewritten instead of ref
// itself (so a branch checkout advances the branch, not HEAD's pointer to
// it). When deref is false, ref is rewritten verbatim. v.Value must be
// non-empty.
func Update(gitDir, ref string, v Value, deref bool) error {
	if v.Value == "" {
		return fmt.Errorf("updating ref %s: value must be non-empty: %w", ref, ugiterr.InvalidState)
	}

	target := ref
	if deref {
		target = finalTarget(gitDir, ref)
	}

	path := filepath.Join(gitDir, filepath.FromSlash(target))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating ref directory for %s: %w: %v", target, ugiterr.IOFailure, err)
	}

	var content string
	if v.Symbolic {
		content = symbolicPrefix + v.Value + "\n"
	} else {
		content = v.Value
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing ref %s: %w: %v", target, ugiterr.IOFailure, err)
	}
	return nil
}

// Delete removes ref. deref has the same "rewrite the alias vs. rewrite the
// final target" meaning as Update.
func Delete(gitDir, ref string, deref bool) error {
	target := ref
	if deref {
		target = finalTarget(gitDir, ref)
	}
	path := filepath.Join(gitDir, filepath.FromSlash(target))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting ref %s: %w: %v", target, ugiterr.IOFailure, err)
	}
	return nil
}

// finalTarget walks the symbolic chain starting at ref and returns the name
// of the last ref in the chain (which may be ref itself if it isn't
// symbolic, or doesn't exist).
func finalTarget(gitDir, ref string) string {
	current := ref
	for depth := 0; depth < maxDerefDepth; depth++ {
		path := filepath.Join(gitDir, filepath.FromSlash(current))
		raw, err := os.ReadFile(path)
		if err != nil {
			return current
		}
		text := string(raw)
		if !strings.HasPrefix(text, symbolicPrefix) {
			return current
		}
		current = strings.TrimSpace(strings.TrimPrefix(text, symbolicPrefix))
	}
	return current
}

// Ref pairs a reference name with its resolved value.
type Ref struct {
	Name  string
	Value Value
}

// Iter enumerates HEAD, MERGE_HEAD, and every file under refs/, yielding
// those whose name begins with prefix and whose resolved value is present.
func Iter(gitDir, prefix string, deref bool) ([]Ref, error) {
	var names []string
	for _, top := range []string{"HEAD", "MERGE_HEAD"} {
		if _, err := os.Stat(filepath.Join(gitDir, top)); err == nil {
			names = append(names, top)
		}
	}

	refsRoot := filepath.Join(gitDir, "refs")
	err := filepath.Walk(refsRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(gitDir, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("walking refs: %w: %v", ugiterr.IOFailure, err)
	}

	var out []Ref
	for _, name := range names {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		v, err := Get(gitDir, name, deref)
		if err != nil {
			return nil, err
		}
		if v.IsAbsent() {
			continue
		}
		out = append(out, Ref{Name: name, Value: v})
	}
	return out, nil
}
