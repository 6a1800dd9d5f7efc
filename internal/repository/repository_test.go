package repository

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/systemshift/ugit/internal/objects"
	"github.com/systemshift/ugit/internal/refs"
	"github.com/systemshift/ugit/internal/ugiterr"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	root, err := os.MkdirTemp("", "ugit-repository-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(root) })

	repo := Open(root)
	if err := repo.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return repo
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
}

// Scenario 1: init; write a.txt; add a.txt; commit -m one — HEAD resolves to
// a commit whose tree contains exactly a.txt with the blob oid of "hello\n".
func TestScenarioCommitContainsExactlyAddedFile(t *testing.T) {
	repo := newTestRepo(t)
	writeFile(t, repo.Root, "a.txt", "hello\n")

	if err := repo.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	oid, err := repo.Commit("one")
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	c, err := objects.ReadCommit(repo.GitDir, oid)
	if err != nil {
		t.Fatalf("ReadCommit failed: %v", err)
	}
	flat, err := objects.Flatten(repo.GitDir, c.Tree)
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}
	if len(flat) != 1 {
		t.Fatalf("expected exactly one tracked file, got %v", flat)
	}
	blobOid, ok := flat["a.txt"]
	if !ok {
		t.Fatal("expected a.txt in the committed tree")
	}
	data, err := repo.CatFile(blobOid, "")
	if err != nil {
		t.Fatalf("CatFile failed: %v", err)
	}
	if string(data) != "hello\n" {
		t.Errorf("expected blob content %q, got %q", "hello\n", data)
	}
}

// Scenario 2: init; commit one; commit two; checkout <oid of one>; status
// reports a detached HEAD at the checked-out oid.
func TestScenarioCheckoutOidDetachesHead(t *testing.T) {
	repo := newTestRepo(t)
	writeFile(t, repo.Root, "a.txt", "one\n")
	if err := repo.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	first, err := repo.Commit("one")
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	writeFile(t, repo.Root, "a.txt", "two\n")
	if err := repo.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := repo.Commit("two"); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if err := repo.Checkout(first); err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	detached, err := repo.HeadDetached()
	if err != nil {
		t.Fatalf("HeadDetached failed: %v", err)
	}
	if !detached {
		t.Error("expected HEAD to be detached after checking out a raw oid")
	}

	report, err := repo.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !report.Detached || report.HeadOid != first {
		t.Errorf("expected status to report detached HEAD at %q, got %+v", first, report)
	}
}

// Scenario 3: init; branch b1; checkout b1; commit X; checkout master;
// merge b1 is a fast-forward and leaves no MERGE_HEAD.
func TestScenarioFastForwardMerge(t *testing.T) {
	repo := newTestRepo(t)
	writeFile(t, repo.Root, "a.txt", "base\n")
	if err := repo.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := repo.Commit("base"); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if err := repo.CreateBranch("b1", "@"); err != nil {
		t.Fatalf("CreateBranch failed: %v", err)
	}
	if err := repo.Checkout("b1"); err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	writeFile(t, repo.Root, "a.txt", "X\n")
	if err := repo.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	xOid, err := repo.Commit("X")
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if err := repo.Checkout("master"); err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	result, err := repo.Merge("b1")
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if !result.FastForward {
		t.Fatal("expected a fast-forward merge")
	}

	head, err := refs.Get(repo.GitDir, "HEAD", true)
	if err != nil {
		t.Fatalf("Get HEAD failed: %v", err)
	}
	if head.Value != xOid {
		t.Errorf("expected HEAD to advance to %q, got %q", xOid, head.Value)
	}

	mergeHead, err := refs.Get(repo.GitDir, "MERGE_HEAD", false)
	if err != nil {
		t.Fatalf("Get MERGE_HEAD failed: %v", err)
	}
	if !mergeHead.IsAbsent() {
		t.Error("expected no MERGE_HEAD after a fast-forward merge")
	}
}

// Scenario 4: a three-way merge with real divergence sets MERGE_HEAD,
// materializes merge output, and the resolving commit has parents [F, M].
func TestScenarioThreeWayMergeSetsMergeHeadAndParentOrder(t *testing.T) {
	repo := newTestRepo(t)
	writeFile(t, repo.Root, "shared.txt", "base\n")
	if err := repo.Add([]string{"shared.txt"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := repo.Commit("A"); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if err := repo.CreateBranch("feature", "@"); err != nil {
		t.Fatalf("CreateBranch failed: %v", err)
	}

	// On master: commit M.
	writeFile(t, repo.Root, "shared.txt", "base\nmaster-line\n")
	if err := repo.Add([]string{"shared.txt"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	mOid, err := repo.Commit("M")
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	// On feature: commit F, touching a different file so the merge is clean
	// but still requires three-way reconciliation (base != HEAD and base != other).
	if err := repo.Checkout("feature"); err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	writeFile(t, repo.Root, "feature.txt", "feature content\n")
	if err := repo.Add([]string{"feature.txt"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	fOid, err := repo.Commit("F")
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	result, err := repo.Merge("master")
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if result.FastForward {
		t.Fatal("expected a real three-way merge, not a fast-forward")
	}

	mergeHead, err := refs.Get(repo.GitDir, "MERGE_HEAD", false)
	if err != nil {
		t.Fatalf("Get MERGE_HEAD failed: %v", err)
	}
	if mergeHead.Value != mOid {
		t.Errorf("expected MERGE_HEAD to be %q, got %q", mOid, mergeHead.Value)
	}

	data, err := os.ReadFile(filepath.Join(repo.Root, "shared.txt"))
	if err != nil {
		t.Fatalf("reading merged shared.txt failed: %v", err)
	}
	if !strings.Contains(string(data), "master-line") {
		t.Errorf("expected master's change to be present in the merge output, got %q", data)
	}

	resolveOid, err := repo.Commit("resolve merge")
	if err != nil {
		t.Fatalf("Commit after merge failed: %v", err)
	}
	c, err := objects.ReadCommit(repo.GitDir, resolveOid)
	if err != nil {
		t.Fatalf("ReadCommit failed: %v", err)
	}
	if len(c.Parents) != 2 || c.Parents[0] != fOid || c.Parents[1] != mOid {
		t.Errorf("expected merge commit parents [%q %q], got %v", fOid, mOid, c.Parents)
	}

	if v, err := refs.Get(repo.GitDir, "MERGE_HEAD", false); err != nil || !v.IsAbsent() {
		t.Error("expected MERGE_HEAD to be cleared after the resolving commit")
	}
}

// Scenario 5: fetching from a sibling repository populates refs/remote and
// brings over the full object closure.
func TestScenarioFetchFromSiblingRepository(t *testing.T) {
	repo1 := newTestRepo(t)
	writeFile(t, repo1.Root, "a.txt", "content\n")
	if err := repo1.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	oid, err := repo1.Commit("initial")
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	repo2 := newTestRepo(t)
	if err := repo2.Fetch(repo1.Root); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	v, err := refs.Get(repo2.GitDir, "refs/remote/master", false)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v.Value != oid {
		t.Errorf("expected refs/remote/master to point at %q, got %q", oid, v.Value)
	}

	c, err := objects.ReadCommit(repo2.GitDir, oid)
	if err != nil {
		t.Fatalf("expected fetched commit to be readable locally: %v", err)
	}
	if _, err := objects.Flatten(repo2.GitDir, c.Tree); err != nil {
		t.Fatalf("expected the fetched tree's closure to be fully present: %v", err)
	}
}

// Scenario 6: "@" resolves like "HEAD"; a 40-hex string not present as a ref
// resolves to itself; a 39-hex string fails.
func TestScenarioNameResolutionEdgeCases(t *testing.T) {
	repo := newTestRepo(t)
	writeFile(t, repo.Root, "a.txt", "content\n")
	if err := repo.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := repo.Commit("one"); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	atData, err := repo.CatFile("@", "")
	if err != nil {
		t.Fatalf("resolving @ failed: %v", err)
	}
	headData, err := repo.CatFile("HEAD", "")
	if err != nil {
		t.Fatalf("resolving HEAD failed: %v", err)
	}
	if string(atData) != string(headData) {
		t.Errorf("expected @ and HEAD to name the same object, got %q and %q", atData, headData)
	}

	unknownHex := "999999999999999999999999999999999999999a" // 40 chars
	if _, err := repo.CatFile(unknownHex, ""); !errors.Is(err, ugiterr.NotFound) {
		t.Errorf("expected reading an unknown 40-hex oid to fail at the object store, not at name resolution, got %v", err)
	}

	tooShort := "99999999999999999999999999999999999999a" // 39 chars
	if _, err := repo.CatFile(tooShort, ""); !errors.Is(err, ugiterr.UnknownName) {
		t.Error("expected a 39-character string to fail name resolution")
	}
}

func TestMergeRequiresHead(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.Merge("master"); err == nil {
		t.Fatal("expected Merge to fail when HEAD has no commit yet")
	}
}

func TestStatusReportsUntrackedAndStaged(t *testing.T) {
	repo := newTestRepo(t)
	writeFile(t, repo.Root, "tracked.txt", "v1\n")
	if err := repo.Add([]string{"tracked.txt"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := repo.Commit("initial"); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	writeFile(t, repo.Root, "tracked.txt", "v2\n")
	if err := repo.Add([]string{"tracked.txt"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	writeFile(t, repo.Root, "untracked.txt", "new\n")

	report, err := repo.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if len(report.Staged) != 1 || report.Staged[0].Path != "tracked.txt" {
		t.Errorf("expected tracked.txt staged as modified, got %v", report.Staged)
	}
	found := false
	for _, u := range report.Untracked {
		if u == "untracked.txt" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected untracked.txt in untracked list, got %v", report.Untracked)
	}
}
