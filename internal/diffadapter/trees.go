package diffadapter

import (
	"fmt"

	"github.com/systemshift/ugit/internal/store"
)

// Change classifies how a path differs between two tree snapshots.
type Change string

const (
	NewFile  Change = "new file"
	Deleted  Change = "deleted"
	Modified Change = "modified"
)

// PathOids holds, for one path, its blob oid in each of several trees being
// compared. An empty string means the path is absent from that tree.
type PathOids struct {
	Path string
	Oids []string
}

// CompareTrees builds the union of paths across trees and, for each path,
// the oid (or "" if absent) in every tree, in the order given.
func CompareTrees(trees ...map[string]string) []PathOids {
	index := make(map[string]int)
	var rows []PathOids

	for i, tree := range trees {
		for path, oid := range tree {
			rowIdx, ok := index[path]
			if !ok {
				rowIdx = len(rows)
				index[path] = rowIdx
				rows = append(rows, PathOids{Path: path, Oids: make([]string, len(trees))})
			}
			rows[rowIdx].Oids[i] = oid
		}
	}
	return rows
}

// ChangedFile is one path whose oid differs between two trees.
type ChangedFile struct {
	Path   string
	Change Change
}

// IterChangedFiles reports every path whose oid differs between from and
// to, classified as a new file, a deletion, or a modification.
func IterChangedFiles(from, to map[string]string) []ChangedFile {
	var out []ChangedFile
	for _, row := range CompareTrees(from, to) {
		o1, o2 := row.Oids[0], row.Oids[1]
		if o1 == o2 {
			continue
		}
		var change Change
		switch {
		case o1 == "":
			change = NewFile
		case o2 == "":
			change = Deleted
		default:
			change = Modified
		}
		out = append(out, ChangedFile{Path: row.Path, Change: change})
	}
	return out
}

// DiffTrees renders a combined diff of every path that differs between
// from and to, using differ for each changed file's unified diff.
func DiffTrees(gitDir string, from, to map[string]string, differ LineDiffer) ([]byte, error) {
	var out []byte
	for _, row := range CompareTrees(from, to) {
		o1, o2 := row.Oids[0], row.Oids[1]
		if o1 == o2 {
			continue
		}
		chunk, err := DiffBlobs(gitDir, o1, o2, row.Path, differ)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// DiffBlobs reads the two (possibly absent) blobs and renders a unified
// diff labeled a/<path> and b/<path>.
func DiffBlobs(gitDir string, oidFrom, oidTo, path string, differ LineDiffer) ([]byte, error) {
	fromData, err := readOptionalBlob(gitDir, oidFrom)
	if err != nil {
		return nil, err
	}
	toData, err := readOptionalBlob(gitDir, oidTo)
	if err != nil {
		return nil, err
	}

	edits, err := differ.DiffLines(string(fromData), string(toData))
	if err != nil {
		return nil, err
	}
	return RenderUnified(edits, fmt.Sprintf("a/%s", path), fmt.Sprintf("b/%s", path)), nil
}

func readOptionalBlob(gitDir, oid string) ([]byte, error) {
	if oid == "" {
		return nil, nil
	}
	return store.Get(gitDir, oid, store.Blob)
}

// RenderUnified formats a line edit script as a unified diff with 3 lines
// of context around each run of changes.
func RenderUnified(edits []Edit, labelFrom, labelTo string) []byte {
	const context = 3

	type hunk struct {
		fromStart, toStart   int
		fromCount, toCount   int
		lines                []string
	}

	var hunks []hunk
	var cur *hunk
	fromLine, toLine := 1, 1
	trailingEqual := 0

	flush := func() {
		if cur != nil {
			hunks = append(hunks, *cur)
			cur = nil
		}
	}

	// pendingContext buffers up to `context` trailing equal lines so they
	// can be attached as leading context to the next hunk.
	var pendingContext []string

	for i, e := range edits {
		switch e.Op {
		case Equal:
			if cur == nil {
				pendingContext = append(pendingContext, e.Line)
				if len(pendingContext) > context {
					pendingContext = pendingContext[1:]
				}
			} else {
				cur.lines = append(cur.lines, " "+trimNL(e.Line))
				cur.fromCount++
				cur.toCount++
				trailingEqual++
				if trailingEqual >= context || i == len(edits)-1 {
					flush()
					trailingEqual = 0
				}
			}
			fromLine++
			toLine++
		case Delete:
			if cur == nil {
				cur = &hunk{fromStart: fromLine - len(pendingContext), toStart: toLine - len(pendingContext)}
				for _, p := range pendingContext {
					cur.lines = append(cur.lines, " "+trimNL(p))
					cur.fromCount++
					cur.toCount++
				}
				pendingContext = nil
			}
			cur.lines = append(cur.lines, "-"+trimNL(e.Line))
			cur.fromCount++
			trailingEqual = 0
			fromLine++
		case Insert:
			if cur == nil {
				cur = &hunk{fromStart: fromLine - len(pendingContext), toStart: toLine - len(pendingContext)}
				for _, p := range pendingContext {
					cur.lines = append(cur.lines, " "+trimNL(p))
					cur.fromCount++
					cur.toCount++
				}
				pendingContext = nil
			}
			cur.lines = append(cur.lines, "+"+trimNL(e.Line))
			cur.toCount++
			trailingEqual = 0
			toLine++
		}
	}
	flush()

	if len(hunks) == 0 {
		return nil
	}

	var out []byte
	out = append(out, fmt.Sprintf("--- %s\n", labelFrom)...)
	out = append(out, fmt.Sprintf("+++ %s\n", labelTo)...)
	for _, h := range hunks {
		out = append(out, fmt.Sprintf("@@ -%d,%d +%d,%d @@\n", h.fromStart, h.fromCount, h.toStart, h.toCount)...)
		for _, l := range h.lines {
			out = append(out, l...)
			out = append(out, '\n')
		}
	}
	return out
}

func trimNL(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
