package objects

import (
	"fmt"
	"strings"

	"github.com/systemshift/ugit/internal/store"
	"github.com/systemshift/ugit/internal/ugiterr"
)

// Commit is a parsed commit record: a tree, an ordered list of parents (the
// first is the main-line ancestor), and a message.
type Commit struct {
	Tree    store.Oid
	Parents []store.Oid
	Message string
}

// WriteCommit emits "tree <oid>\n", then "parent <oid>\n" for each parent in
// order, then a blank line, then message with exactly one trailing newline,
// and persists it as a commit object.
func WriteCommit(gitDir string, tree store.Oid, parents []store.Oid, message string) (store.Oid, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "tree %s\n", tree)
	for _, p := range parents {
		fmt.Fprintf(&sb, "parent %s\n", p)
	}
	sb.WriteString("\n")
	sb.WriteString(strings.TrimRight(message, "\n"))
	sb.WriteString("\n")

	return store.Put(gitDir, []byte(sb.String()), store.Commit)
}

// ReadCommit parses a commit object. Header lines are read until the first
// blank line; only "tree" and "parent" keys are accepted. The message is
// everything after the blank line, minus the single trailing newline that
// WriteCommit appends.
func ReadCommit(gitDir string, oid store.Oid) (Commit, error) {
	payload, err := store.Get(gitDir, oid, store.Commit)
	if err != nil {
		return Commit{}, err
	}

	text := string(payload)
	headerEnd := strings.Index(text, "\n\n")
	if headerEnd == -1 {
		return Commit{}, fmt.Errorf("commit %s: missing header/message separator: %w", oid, ugiterr.InvalidObject)
	}

	header := text[:headerEnd]
	message := text[headerEnd+2:]

	var c Commit
	if header != "" {
		for _, line := range strings.Split(header, "\n") {
			key, value, ok := strings.Cut(line, " ")
			if !ok {
				return Commit{}, fmt.Errorf("commit %s: malformed header line %q: %w", oid, line, ugiterr.InvalidObject)
			}
			switch key {
			case "tree":
				c.Tree = value
			case "parent":
				c.Parents = append(c.Parents, value)
			default:
				return Commit{}, fmt.Errorf("commit %s: unknown header field %q: %w", oid, key, ugiterr.InvalidObject)
			}
		}
	}
	if c.Tree == "" {
		return Commit{}, fmt.Errorf("commit %s: missing tree header: %w", oid, ugiterr.InvalidObject)
	}

	c.Message = strings.TrimSuffix(message, "\n")
	return c, nil
}
