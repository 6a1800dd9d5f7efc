// Package resolve implements the name resolver (component G): mapping
// human-facing names (@, branch, tag, hex oid) to an object id.
package resolve

import (
	"fmt"
	"strings"

	"github.com/systemshift/ugit/internal/refs"
	"github.com/systemshift/ugit/internal/ugiterr"
)

// Name resolves name to an oid, trying in order: the literal ref name,
// refs/<name>, refs/tags/<name>, refs/heads/<name>. "@" is rewritten to
// HEAD first. If no ref matches and name is a 40-character hex string, it
// is accepted as an oid verbatim.
func Name(gitDir, name string) (string, error) {
	if name == "@" {
		name = "HEAD"
	}

	candidates := []string{
		name,
		"refs/" + name,
		"refs/tags/" + name,
		"refs/heads/" + name,
	}
	for _, ref := range candidates {
		v, err := refs.Get(gitDir, ref, true)
		if err != nil {
			return "", err
		}
		if !v.IsAbsent() {
			return v.Value, nil
		}
	}

	if isHexOid(name) {
		return name, nil
	}

	return "", fmt.Errorf("unknown name %q: %w", name, ugiterr.UnknownName)
}

func isHexOid(s string) bool {
	if len(s) != 40 {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool {
		return !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f'))
	}) == -1
}
