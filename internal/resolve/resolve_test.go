package resolve

import (
	"os"
	"testing"

	"github.com/systemshift/ugit/internal/refs"
)

func newTestGitDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "ugit-resolve-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestNameResolvesHeadAlias(t *testing.T) {
	gitDir := newTestGitDir(t)
	oid := "1111111111111111111111111111111111111111"

	if err := refs.Update(gitDir, "refs/heads/master", refs.Value{Value: oid}, false); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := refs.Update(gitDir, "HEAD", refs.Value{Symbolic: true, Value: "refs/heads/master"}, false); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := Name(gitDir, "@")
	if err != nil {
		t.Fatalf("Name failed: %v", err)
	}
	if got != oid {
		t.Errorf("expected %q, got %q", oid, got)
	}
}

func TestNameResolvesBranchTagAndLiteral(t *testing.T) {
	gitDir := newTestGitDir(t)
	branchOid := "2222222222222222222222222222222222222222"
	tagOid := "3333333333333333333333333333333333333333"
	literalOid := "4444444444444444444444444444444444444444"

	if err := refs.Update(gitDir, "refs/heads/feature", refs.Value{Value: branchOid}, false); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := refs.Update(gitDir, "refs/tags/v1", refs.Value{Value: tagOid}, false); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := refs.Update(gitDir, "refs/custom", refs.Value{Value: literalOid}, false); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if got, err := Name(gitDir, "feature"); err != nil || got != branchOid {
		t.Errorf("expected branch resolution %q, got %q (err %v)", branchOid, got, err)
	}
	if got, err := Name(gitDir, "v1"); err != nil || got != tagOid {
		t.Errorf("expected tag resolution %q, got %q (err %v)", tagOid, got, err)
	}
	if got, err := Name(gitDir, "custom"); err != nil || got != literalOid {
		t.Errorf("expected refs/<name> resolution %q, got %q (err %v)", literalOid, got, err)
	}
}

func TestNameResolves40CharHex(t *testing.T) {
	gitDir := newTestGitDir(t)
	oid := "5555555555555555555555555555555555555555"

	got, err := Name(gitDir, oid)
	if err != nil {
		t.Fatalf("Name failed: %v", err)
	}
	if got != oid {
		t.Errorf("expected %q, got %q", oid, got)
	}
}

func TestNameRejects39CharHex(t *testing.T) {
	gitDir := newTestGitDir(t)
	almostOid := "555555555555555555555555555555555555555" // 39 chars

	if _, err := Name(gitDir, almostOid); err == nil {
		t.Fatal("expected an unknown-name error for a 39-character string")
	}
}

func TestNameUnknown(t *testing.T) {
	gitDir := newTestGitDir(t)

	if _, err := Name(gitDir, "does-not-exist"); err == nil {
		t.Fatal("expected an unknown-name error")
	}
}
