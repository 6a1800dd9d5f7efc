package merge

import (
	"strings"
	"testing"

	"github.com/systemshift/ugit/internal/diffadapter"
)

func TestMergeBlobsNonOverlappingChanges(t *testing.T) {
	base := []byte("line1\nline2\nline3\n")
	head := []byte("line1-head\nline2\nline3\n")
	other := []byte("line1\nline2\nline3-other\n")

	merged, conflict, err := MergeBlobs(base, head, other, "feature", diffadapter.GoDiffer{})
	if err != nil {
		t.Fatalf("MergeBlobs failed: %v", err)
	}
	if conflict {
		t.Fatalf("expected no conflict for disjoint edits, got merged=%q", merged)
	}
	text := string(merged)
	if !strings.Contains(text, "line1-head") {
		t.Errorf("expected head's change to survive, got %q", text)
	}
	if !strings.Contains(text, "line3-other") {
		t.Errorf("expected other's change to survive, got %q", text)
	}
}

func TestMergeBlobsConflictingChanges(t *testing.T) {
	base := []byte("line1\n")
	head := []byte("line1-head\n")
	other := []byte("line1-other\n")

	merged, conflict, err := MergeBlobs(base, head, other, "feature", diffadapter.GoDiffer{})
	if err != nil {
		t.Fatalf("MergeBlobs failed: %v", err)
	}
	if !conflict {
		t.Fatalf("expected a conflict, got merged=%q", merged)
	}
	text := string(merged)
	if !strings.Contains(text, "<<<<<<< HEAD") || !strings.Contains(text, "=======") || !strings.Contains(text, ">>>>>>> feature") {
		t.Errorf("expected Git-style conflict markers, got %q", text)
	}
	if !strings.Contains(text, "line1-head") || !strings.Contains(text, "line1-other") {
		t.Errorf("expected both sides' content inside the markers, got %q", text)
	}
}

func TestMergeBlobsIdenticalChangeNoConflict(t *testing.T) {
	base := []byte("line1\n")
	head := []byte("line1-same\n")
	other := []byte("line1-same\n")

	merged, conflict, err := MergeBlobs(base, head, other, "feature", diffadapter.GoDiffer{})
	if err != nil {
		t.Fatalf("MergeBlobs failed: %v", err)
	}
	if conflict {
		t.Fatalf("expected no conflict when both sides made the same change, got merged=%q", merged)
	}
	if strings.Count(string(merged), "line1-same") != 1 {
		t.Errorf("expected the identical change to appear once, got %q", merged)
	}
}

func TestMergeTreesUnionsPathsAndTracksConflict(t *testing.T) {
	blobs := map[string][]byte{
		"base-a":  []byte("base content\n"),
		"head-a":  []byte("head content\n"),
		"other-a": []byte("other content\n"),
		"base-b":  []byte("shared\n"),
	}
	blobAt := func(oid string) ([]byte, error) {
		if oid == "" {
			return nil, nil
		}
		return blobs[oid], nil
	}

	base := map[string]string{"a.txt": "base-a", "b.txt": "base-b"}
	head := map[string]string{"a.txt": "head-a", "b.txt": "base-b", "c.txt": "head-a"}
	other := map[string]string{"a.txt": "other-a", "b.txt": "base-b"}

	merged, conflict, err := MergeTrees(base, head, other, blobAt, "feature", diffadapter.GoDiffer{})
	if err != nil {
		t.Fatalf("MergeTrees failed: %v", err)
	}
	if !conflict {
		t.Error("expected a.txt's divergent edits to produce a conflict")
	}
	if _, ok := merged["c.txt"]; !ok {
		t.Error("expected c.txt, added only on head, to appear in the merge result")
	}
	if !strings.Contains(string(merged["b.txt"]), "shared") {
		t.Errorf("expected b.txt, unchanged on both sides, to survive unmodified, got %q", merged["b.txt"])
	}
}
