// Package diffadapter is a thin wrapper around an external line-diff tool
// (component L). The core treats the line-diff algorithm as an external
// collaborator: LineDiffer is the seam, with a pure-Go implementation backed
// by sergi/go-diff. ExternalTool separately shells out to a real diff(1)
// binary to render a unified diff; it is not a LineDiffer.
package diffadapter

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/systemshift/ugit/internal/ugiterr"
)

// Op classifies one line of a line-level edit script.
type Op int

const (
	Equal Op = iota
	Insert
	Delete
)

// Edit is one line carried by an edit script, tagged with how it relates
// the "from" text to the "to" text.
type Edit struct {
	Op   Op
	Line string
}

// LineDiffer computes a line-level edit script between two texts.
type LineDiffer interface {
	DiffLines(from, to string) ([]Edit, error)
}

// GoDiffer is the default, in-process LineDiffer, backed by
// sergi/go-diff/diffmatchpatch's line-mode diff (the same library go-git
// depends on for line-oriented diffing).
type GoDiffer struct{}

// DiffLines maps each line to a single rune so that diffmatchpatch's
// character-level Myers diff operates line-by-line, then expands the
// result back into full lines.
func (GoDiffer) DiffLines(from, to string) ([]Edit, error) {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var edits []Edit
	for _, d := range diffs {
		var op Op
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			op = Equal
		case diffmatchpatch.DiffInsert:
			op = Insert
		case diffmatchpatch.DiffDelete:
			op = Delete
		}
		for _, line := range SplitLines(d.Text) {
			edits = append(edits, Edit{Op: op, Line: line})
		}
	}
	return edits, nil
}

// SplitLines splits s into lines, each retaining its own trailing "\n"
// except possibly the last if s doesn't end in one. It never returns an
// empty-string line for s == "".
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// ExternalTool shells out to a real diff(1) binary, for operators who want
// byte-identical output to GNU diff rather than the in-process renderer.
// It has no DiffLines method, so it does not satisfy LineDiffer and cannot
// be used as Repository.Differ; nothing in the repository calls it.
type ExternalTool struct {
	// Path to the diff binary; defaults to "diff" via exec.LookPath.
	Path string
}

// UnifiedDiff writes from/to to temporary files and invokes
// `diff --unified --show-c-function --label <labelFrom> --label <labelTo>`, returning its
// stdout. Exit status 1 (differences found) is not an error; any other
// non-zero exit is ugiterr.ExternalToolFailure.
func (t ExternalTool) UnifiedDiff(from, to []byte, labelFrom, labelTo string) ([]byte, error) {
	bin := t.Path
	if bin == "" {
		bin = "diff"
	}

	fFrom, err := os.CreateTemp("", "ugit-diff-from-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w: %v", ugiterr.IOFailure, err)
	}
	defer os.Remove(fFrom.Name())
	defer fFrom.Close()

	fTo, err := os.CreateTemp("", "ugit-diff-to-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w: %v", ugiterr.IOFailure, err)
	}
	defer os.Remove(fTo.Name())
	defer fTo.Close()

	if _, err := fFrom.Write(from); err != nil {
		return nil, fmt.Errorf("writing temp file: %w: %v", ugiterr.IOFailure, err)
	}
	if _, err := fTo.Write(to); err != nil {
		return nil, fmt.Errorf("writing temp file: %w: %v", ugiterr.IOFailure, err)
	}

	cmd := exec.Command(bin, "--unified", "--show-c-function",
		"--label", labelFrom, fFrom.Name(),
		"--label", labelTo, fTo.Name())
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return out, nil
		}
		return nil, fmt.Errorf("running %s: %w: %v", bin, ugiterr.ExternalToolFailure, err)
	}
	return out, nil
}
