// Package merge implements the merge engine (component I): merge-base
// driven fast-forward detection and three-way merge of tree snapshots and
// blobs.
package merge

import (
	"strings"

	"github.com/systemshift/ugit/internal/diffadapter"
)

type hunk struct {
	baseStart int
	baseLen   int
	newLines  []string
}

// hunksFromEdits collapses a line edit script (relative to "base") into the
// runs where base was changed, each tagged with the base line range it
// replaces and the replacement lines.
func hunksFromEdits(edits []diffadapter.Edit) []hunk {
	var hunks []hunk
	var cur *hunk
	baseIdx := 0

	flush := func() {
		if cur != nil {
			hunks = append(hunks, *cur)
			cur = nil
		}
	}

	for _, e := range edits {
		switch e.Op {
		case diffadapter.Equal:
			flush()
			baseIdx++
		case diffadapter.Delete:
			if cur == nil {
				cur = &hunk{baseStart: baseIdx}
			}
			cur.baseLen++
			baseIdx++
		case diffadapter.Insert:
			if cur == nil {
				cur = &hunk{baseStart: baseIdx}
			}
			cur.newLines = append(cur.newLines, e.Line)
		}
	}
	flush()
	return hunks
}

// MergeBlobs performs a three-way merge of base/head/other byte content,
// producing Git-style conflict markers (keyed on the label "HEAD" and
// otherLabel) where head and other changed the same base region in
// different ways. An absent side is treated as empty content.
//
// This mirrors git merge-file: diff base→head and base→other with a line
// diff, then reconcile the two edit scripts region by region.
func MergeBlobs(base, head, other []byte, otherLabel string, differ diffadapter.LineDiffer) ([]byte, bool, error) {
	if otherLabel == "" {
		otherLabel = "other"
	}

	baseLines := diffadapter.SplitLines(string(base))
	headEdits, err := differ.DiffLines(string(base), string(head))
	if err != nil {
		return nil, false, err
	}
	otherEdits, err := differ.DiffLines(string(base), string(other))
	if err != nil {
		return nil, false, err
	}

	headHunks := hunksFromEdits(headEdits)
	otherHunks := hunksFromEdits(otherEdits)

	var merged []string
	conflict := false
	idx, hi, oi := 0, 0, 0

	// A hunk with baseStart == len(baseLines) inserts past the end of base; the
	// loop keeps going until it has been reconciled like any other hunk.
	for idx < len(baseLines) ||
		(hi < len(headHunks) && headHunks[hi].baseStart == idx) ||
		(oi < len(otherHunks) && otherHunks[oi].baseStart == idx) {
		var h, o *hunk
		if hi < len(headHunks) && headHunks[hi].baseStart == idx {
			h = &headHunks[hi]
			hi++
		}
		if oi < len(otherHunks) && otherHunks[oi].baseStart == idx {
			o = &otherHunks[oi]
			oi++
		}

		if h == nil && o == nil {
			merged = append(merged, baseLines[idx])
			idx++
			continue
		}

		// A pure insertion replaces no base lines (span 0), so the base line
		// at idx is still emitted on the next iteration.
		span := 0
		if h != nil && h.baseLen > span {
			span = h.baseLen
		}
		if o != nil && o.baseLen > span {
			span = o.baseLen
		}

		switch {
		case o == nil:
			merged = append(merged, h.newLines...)
		case h == nil:
			merged = append(merged, o.newLines...)
		case sameLines(h.newLines, o.newLines):
			merged = append(merged, h.newLines...)
		default:
			conflict = true
			merged = append(merged, "<<<<<<< HEAD\n")
			merged = append(merged, h.newLines...)
			merged = append(merged, "=======\n")
			merged = append(merged, o.newLines...)
			merged = append(merged, ">>>>>>> "+otherLabel+"\n")
		}
		idx += span
	}

	return []byte(strings.Join(merged, "")), conflict, nil
}

func sameLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// MergeTrees computes the merged working-tree content for every path
// present in any of base, head, or other's flattened trees. blobAt must
// return the blob content for a given oid ("" oid means absent → empty
// content).
func MergeTrees(base, head, other map[string]string, blobAt func(oid string) ([]byte, error), otherLabel string, differ diffadapter.LineDiffer) (map[string][]byte, bool, error) {
	paths := make(map[string]bool)
	for p := range base {
		paths[p] = true
	}
	for p := range head {
		paths[p] = true
	}
	for p := range other {
		paths[p] = true
	}

	result := make(map[string][]byte, len(paths))
	anyConflict := false

	for path := range paths {
		baseData, err := blobAt(base[path])
		if err != nil {
			return nil, false, err
		}
		headData, err := blobAt(head[path])
		if err != nil {
			return nil, false, err
		}
		otherData, err := blobAt(other[path])
		if err != nil {
			return nil, false, err
		}

		merged, conflict, err := MergeBlobs(baseData, headData, otherData, otherLabel, differ)
		if err != nil {
			return nil, false, err
		}
		if conflict {
			anyConflict = true
		}
		result[path] = merged
	}

	return result, anyConflict, nil
}
