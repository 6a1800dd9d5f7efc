// Package repository implements the repository context (component K) and
// composes the lower-level packages into the porcelain operations a
// command-line front end calls: init, add, commit, checkout, branch, tag,
// merge, fetch, push, log, status, diff.
//
// Per the spec's design note on the mutable process-global repo-dir
// binding, a Repository is an explicit value threaded through every call
// rather than ambient state; WithRemote constructs a second value bound to
// a peer path for replication.
package repository

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/systemshift/ugit/internal/diffadapter"
	"github.com/systemshift/ugit/internal/graph"
	"github.com/systemshift/ugit/internal/index"
	"github.com/systemshift/ugit/internal/merge"
	"github.com/systemshift/ugit/internal/objects"
	"github.com/systemshift/ugit/internal/refs"
	"github.com/systemshift/ugit/internal/replicate"
	"github.com/systemshift/ugit/internal/resolve"
	"github.com/systemshift/ugit/internal/store"
	"github.com/systemshift/ugit/internal/ugiterr"
	"github.com/systemshift/ugit/internal/worktree"
)

// DirName is the basename of the repository directory and, per the ignore
// rule, the one path segment that is always skipped when scanning or
// writing the working tree.
const DirName = ".ugit"

// Repository binds the core packages to a working tree root and the
// .ugit directory beneath it.
type Repository struct {
	Root   string
	GitDir string
	Differ diffadapter.LineDiffer
}

// Open binds a Repository to root without touching disk.
func Open(root string) *Repository {
	return &Repository{
		Root:   root,
		GitDir: filepath.Join(root, DirName),
		Differ: diffadapter.GoDiffer{},
	}
}

// WithRemote returns a second Repository value bound to a peer path,
// replacing the source's scoped rebinding of a process-global repo-dir
// with an explicit second value fetch/push can hold alongside the local
// one.
func (r *Repository) WithRemote(path string) *Repository {
	return Open(path)
}

func (r *Repository) ignoreName() string { return DirName }

// Init creates the on-disk .ugit layout and points HEAD at refs/heads/master.
func (r *Repository) Init() error {
	if _, err := os.Stat(r.GitDir); err == nil {
		return fmt.Errorf("repository already exists at %s: %w", r.GitDir, ugiterr.InvalidState)
	}

	for _, dir := range []string{
		r.GitDir,
		filepath.Join(r.GitDir, "objects"),
		filepath.Join(r.GitDir, "refs", "heads"),
		filepath.Join(r.GitDir, "refs", "tags"),
		filepath.Join(r.GitDir, "refs", "remote"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w: %v", dir, ugiterr.IOFailure, err)
		}
	}

	if err := refs.Update(r.GitDir, "HEAD", refs.Value{Symbolic: true, Value: "refs/heads/master"}, false); err != nil {
		return err
	}
	return index.Save(r.GitDir, index.Map{})
}

// HashObject hashes and stores the content of the file at path as a blob,
// returning its oid.
func (r *Repository) HashObject(path string) (store.Oid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w: %v", path, ugiterr.IOFailure, err)
	}
	return store.Put(r.GitDir, data, store.Blob)
}

// CatFile returns an object's payload. Pass "" for kind to dump raw
// content regardless of declared type.
func (r *Repository) CatFile(name string, kind store.Kind) ([]byte, error) {
	oid, err := resolve.Name(r.GitDir, name)
	if err != nil {
		return nil, err
	}
	return store.Get(r.GitDir, oid, kind)
}

// WriteTree snapshots the current working directory into a tree object.
func (r *Repository) WriteTree() (store.Oid, error) {
	return objects.WriteTree(r.GitDir, r.Root, "", r.ignoreName())
}

// ReadTree restores the working directory to match a tree object
// (discarding any uncommitted content, per the ignore rule).
func (r *Repository) ReadTree(name string) error {
	oid, err := resolve.Name(r.GitDir, name)
	if err != nil {
		return err
	}
	return objects.Restore(r.GitDir, r.Root, oid, r.ignoreName())
}

// Add stages paths: each file's current content is hashed and persisted as
// a blob, and the index is updated to point at it.
func (r *Repository) Add(paths []string) error {
	return index.With(r.GitDir, func(m index.Map) error {
		for _, p := range paths {
			full := filepath.Join(r.Root, p)
			data, err := os.ReadFile(full)
			if err != nil {
				return fmt.Errorf("reading %s: %w: %v", p, ugiterr.IOFailure, err)
			}
			oid, err := store.Put(r.GitDir, data, store.Blob)
			if err != nil {
				return err
			}
			m[filepath.ToSlash(p)] = oid
		}
		return nil
	})
}

// Commit snapshots the current working directory into a tree, then records
// a commit whose parents are HEAD (if any) and MERGE_HEAD (if a merge is in
// progress), and advances HEAD to it. MERGE_HEAD is cleared once consumed.
func (r *Repository) Commit(message string) (store.Oid, error) {
	treeOid, err := r.WriteTree()
	if err != nil {
		return "", err
	}

	var parents []string
	head, err := refs.Get(r.GitDir, "HEAD", true)
	if err != nil {
		return "", err
	}
	if !head.IsAbsent() {
		parents = append(parents, head.Value)
	}

	mergeHead, err := refs.Get(r.GitDir, "MERGE_HEAD", false)
	if err != nil {
		return "", err
	}
	hadMergeHead := !mergeHead.IsAbsent()
	if hadMergeHead {
		parents = append(parents, mergeHead.Value)
	}

	oid, err := objects.WriteCommit(r.GitDir, treeOid, parents, message)
	if err != nil {
		return "", err
	}

	if err := refs.Update(r.GitDir, "HEAD", refs.Value{Value: oid}, true); err != nil {
		return "", err
	}
	if hadMergeHead {
		if err := refs.Delete(r.GitDir, "MERGE_HEAD", false); err != nil {
			return "", err
		}
	}
	return oid, nil
}

// Checkout restores the working directory to the named commit and updates
// HEAD: symbolically, if name is a branch (so later commits advance it), or
// directly ("detached HEAD") otherwise.
func (r *Repository) Checkout(name string) error {
	oid, err := resolve.Name(r.GitDir, name)
	if err != nil {
		return err
	}
	c, err := objects.ReadCommit(r.GitDir, oid)
	if err != nil {
		return err
	}
	if err := objects.Restore(r.GitDir, r.Root, c.Tree, r.ignoreName()); err != nil {
		return err
	}

	head := refs.Value{Value: oid}
	if r.IsBranch(name) {
		head = refs.Value{Symbolic: true, Value: "refs/heads/" + name}
	}
	return refs.Update(r.GitDir, "HEAD", head, false)
}

// IsBranch reports whether name is a local branch.
func (r *Repository) IsBranch(name string) bool {
	v, err := refs.Get(r.GitDir, "refs/heads/"+name, false)
	return err == nil && !v.IsAbsent()
}

// HeadDetached reports whether HEAD is a direct (non-symbolic) reference.
func (r *Repository) HeadDetached() (bool, error) {
	v, err := refs.Get(r.GitDir, "HEAD", false)
	if err != nil {
		return false, err
	}
	return !v.Symbolic && !v.IsAbsent(), nil
}

// CurrentBranch returns the branch name HEAD symbolically points at, or ""
// if HEAD is detached.
func (r *Repository) CurrentBranch() (string, error) {
	v, err := refs.Get(r.GitDir, "HEAD", false)
	if err != nil {
		return "", err
	}
	if !v.Symbolic {
		return "", nil
	}
	const prefix = "refs/heads/"
	if len(v.Value) > len(prefix) && v.Value[:len(prefix)] == prefix {
		return v.Value[len(prefix):], nil
	}
	return "", nil
}

// Reset moves HEAD (and, if HEAD is symbolic, the branch it names) directly
// to oid.
func (r *Repository) Reset(name string) error {
	oid, err := resolve.Name(r.GitDir, name)
	if err != nil {
		return err
	}
	return refs.Update(r.GitDir, "HEAD", refs.Value{Value: oid}, true)
}

// CreateBranch creates refs/heads/<name> pointing at startName (resolved).
func (r *Repository) CreateBranch(name, startName string) error {
	oid, err := resolve.Name(r.GitDir, startName)
	if err != nil {
		return err
	}
	return refs.Update(r.GitDir, "refs/heads/"+name, refs.Value{Value: oid}, false)
}

// CreateTag creates refs/tags/<name> pointing at startName (resolved).
func (r *Repository) CreateTag(name, startName string) error {
	oid, err := resolve.Name(r.GitDir, startName)
	if err != nil {
		return err
	}
	return refs.Update(r.GitDir, "refs/tags/"+name, refs.Value{Value: oid}, false)
}

// Branches lists local branches.
func (r *Repository) Branches() ([]refs.Ref, error) {
	return refs.Iter(r.GitDir, "refs/heads/", true)
}

// LogEntry is one commit in a log traversal.
type LogEntry struct {
	Oid    store.Oid
	Commit objects.Commit
}

// Log walks the commit graph from name (default "@" / HEAD if empty),
// first-parent-preferred as documented on graph.WalkCommits.
func (r *Repository) Log(name string) ([]LogEntry, error) {
	if name == "" {
		name = "@"
	}
	oid, err := resolve.Name(r.GitDir, name)
	if err != nil {
		return nil, err
	}
	oids, err := graph.WalkCommits(r.GitDir, []string{oid})
	if err != nil {
		return nil, err
	}
	entries := make([]LogEntry, 0, len(oids))
	for _, o := range oids {
		c, err := objects.ReadCommit(r.GitDir, o)
		if err != nil {
			return nil, err
		}
		entries = append(entries, LogEntry{Oid: o, Commit: c})
	}
	return entries, nil
}

// MergeBase returns the merge base of two resolvable names, or "" if their
// histories are disjoint.
func (r *Repository) MergeBase(a, b string) (string, error) {
	aOid, err := resolve.Name(r.GitDir, a)
	if err != nil {
		return "", err
	}
	bOid, err := resolve.Name(r.GitDir, b)
	if err != nil {
		return "", err
	}
	return graph.MergeBase(r.GitDir, aOid, bOid)
}

// MergeResult reports what Merge did.
type MergeResult struct {
	FastForward bool
	Conflict    bool
}

// Merge merges other into HEAD. If the merge base is HEAD, this is a
// fast-forward: the working tree is restored to other's tree and HEAD
// advances directly, with no merge commit. Otherwise MERGE_HEAD is set to
// other and the working tree is replaced with the three-way merge of base,
// HEAD, and other; the caller must commit afterward to resolve it.
func (r *Repository) Merge(otherName string) (MergeResult, error) {
	head, err := refs.Get(r.GitDir, "HEAD", true)
	if err != nil {
		return MergeResult{}, err
	}
	if head.IsAbsent() {
		return MergeResult{}, fmt.Errorf("merge requires a commit on HEAD: %w", ugiterr.InvalidState)
	}

	otherOid, err := resolve.Name(r.GitDir, otherName)
	if err != nil {
		return MergeResult{}, err
	}

	base, err := graph.MergeBase(r.GitDir, otherOid, head.Value)
	if err != nil {
		return MergeResult{}, err
	}

	if base == head.Value {
		cOther, err := objects.ReadCommit(r.GitDir, otherOid)
		if err != nil {
			return MergeResult{}, err
		}
		if err := objects.Restore(r.GitDir, r.Root, cOther.Tree, r.ignoreName()); err != nil {
			return MergeResult{}, err
		}
		if err := refs.Update(r.GitDir, "HEAD", refs.Value{Value: otherOid}, false); err != nil {
			return MergeResult{}, err
		}
		return MergeResult{FastForward: true}, nil
	}

	if err := refs.Update(r.GitDir, "MERGE_HEAD", refs.Value{Value: otherOid}, false); err != nil {
		return MergeResult{}, err
	}

	cBase, err := objects.ReadCommit(r.GitDir, base)
	if err != nil {
		return MergeResult{}, err
	}
	cHead, err := objects.ReadCommit(r.GitDir, head.Value)
	if err != nil {
		return MergeResult{}, err
	}
	cOther, err := objects.ReadCommit(r.GitDir, otherOid)
	if err != nil {
		return MergeResult{}, err
	}

	baseTree, err := objects.Flatten(r.GitDir, cBase.Tree)
	if err != nil {
		return MergeResult{}, err
	}
	headTree, err := objects.Flatten(r.GitDir, cHead.Tree)
	if err != nil {
		return MergeResult{}, err
	}
	otherTree, err := objects.Flatten(r.GitDir, cOther.Tree)
	if err != nil {
		return MergeResult{}, err
	}

	blobAt := func(oid string) ([]byte, error) {
		if oid == "" {
			return nil, nil
		}
		return store.Get(r.GitDir, oid, store.Blob)
	}

	merged, conflict, err := merge.MergeTrees(baseTree, headTree, otherTree, blobAt, otherName, r.Differ)
	if err != nil {
		return MergeResult{}, err
	}

	if err := worktree.Empty(r.Root, r.ignoreName()); err != nil {
		return MergeResult{}, err
	}
	for path, content := range merged {
		full := filepath.Join(r.Root, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return MergeResult{}, fmt.Errorf("creating directory for %s: %w: %v", path, ugiterr.IOFailure, err)
		}
		if err := os.WriteFile(full, content, 0o644); err != nil {
			return MergeResult{}, fmt.Errorf("writing %s: %w: %v", path, ugiterr.IOFailure, err)
		}
	}

	return MergeResult{Conflict: conflict}, nil
}

// StatusReport is the structured result of comparing the index, the
// working tree, and HEAD's tree. Rendering it as text is a CLI concern.
type StatusReport struct {
	Branch    string
	Detached  bool
	HeadOid   string
	Staged    []diffadapter.ChangedFile
	Unstaged  []diffadapter.ChangedFile
	Untracked []string
}

// Status compares the index against HEAD's tree (staged changes) and
// against the working tree (unstaged changes), and reports working-tree
// paths tracked by neither.
func (r *Repository) Status() (StatusReport, error) {
	var report StatusReport

	branch, err := r.CurrentBranch()
	if err != nil {
		return report, err
	}
	report.Branch = branch
	detached, err := r.HeadDetached()
	if err != nil {
		return report, err
	}
	report.Detached = detached

	headTree := map[string]string{}
	head, err := refs.Get(r.GitDir, "HEAD", true)
	if err != nil {
		return report, err
	}
	if !head.IsAbsent() {
		report.HeadOid = head.Value
		c, err := objects.ReadCommit(r.GitDir, head.Value)
		if err != nil {
			return report, err
		}
		headTree, err = objects.Flatten(r.GitDir, c.Tree)
		if err != nil {
			return report, err
		}
	}

	idx, err := index.Load(r.GitDir)
	if err != nil {
		return report, err
	}
	staged := map[string]string(idx)

	working, err := worktree.Scan(r.Root, r.ignoreName())
	if err != nil {
		return report, err
	}

	report.Staged = diffadapter.IterChangedFiles(headTree, staged)
	report.Unstaged = diffadapter.IterChangedFiles(staged, working)

	for path := range working {
		_, inStage := staged[path]
		_, inHead := headTree[path]
		if !inStage && !inHead {
			report.Untracked = append(report.Untracked, path)
		}
	}

	return report, nil
}

// Diff renders a unified diff between two resolvable commit-ish names. If
// toName is "", the working tree is used; if fromName is "", HEAD is used.
func (r *Repository) Diff(fromName, toName string) ([]byte, error) {
	fromTree, err := r.treeByName(fromName)
	if err != nil {
		return nil, err
	}
	var toTree map[string]string
	if toName == "" {
		toTree, err = worktree.Scan(r.Root, r.ignoreName())
	} else {
		toTree, err = r.treeByName(toName)
	}
	if err != nil {
		return nil, err
	}
	return diffadapter.DiffTrees(r.GitDir, fromTree, toTree, r.Differ)
}

func (r *Repository) treeByName(name string) (map[string]string, error) {
	if name == "" {
		name = "@"
	}
	oid, err := resolve.Name(r.GitDir, name)
	if err != nil {
		return nil, err
	}
	c, err := objects.ReadCommit(r.GitDir, oid)
	if err != nil {
		return nil, err
	}
	return objects.Flatten(r.GitDir, c.Tree)
}

// Fetch pulls every object reachable from remotePath's branch heads that
// this repository lacks, and mirrors the remote heads into refs/remote/.
func (r *Repository) Fetch(remotePath string) error {
	remote := r.WithRemote(remotePath)
	return replicate.Fetch(r.GitDir, remote.GitDir)
}

// Push copies refname's closure to remotePath and updates its ref to match.
func (r *Repository) Push(remotePath, refname string) error {
	remote := r.WithRemote(remotePath)
	return replicate.Push(r.GitDir, remote.GitDir, refname)
}
