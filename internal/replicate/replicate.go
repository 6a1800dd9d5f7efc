// Package replicate implements replication (component J): fetching and
// pushing object closures between two repository roots identified by
// filesystem path. There is no network transport; a "remote" is just
// another .ugit directory read or written directly.
package replicate

import (
	"fmt"
	"strings"

	"github.com/systemshift/ugit/internal/graph"
	"github.com/systemshift/ugit/internal/refs"
	"github.com/systemshift/ugit/internal/store"
	"github.com/systemshift/ugit/internal/ugiterr"
)

const (
	remoteHeadsPrefix = "refs/heads/"
	localRemotePrefix = "refs/remote/"
)

// Fetch enumerates remoteGitDir's refs/heads/, copies every object
// reachable from those heads that localGitDir lacks, then mirrors each
// remote branch head into localGitDir's refs/remote/<name>. The closure is
// enumerated by walking the remote's own object graph, and objects are
// copied in graph.WalkObjects order, so a container is copied before its
// children.
func Fetch(localGitDir, remoteGitDir string) error {
	remoteHeads, err := refs.Iter(remoteGitDir, remoteHeadsPrefix, true)
	if err != nil {
		return err
	}

	var seeds []string
	for _, r := range remoteHeads {
		seeds = append(seeds, r.Value.Value)
	}

	objects, err := walkObjectsAcross(localGitDir, remoteGitDir, seeds)
	if err != nil {
		return err
	}
	for _, oid := range objects {
		if store.Exists(localGitDir, oid) {
			continue
		}
		if err := store.CopyObjectFile(localGitDir, remoteGitDir, oid); err != nil {
			return err
		}
	}

	for _, r := range remoteHeads {
		name := strings.TrimPrefix(r.Name, remoteHeadsPrefix)
		localRef := localRemotePrefix + name
		if err := refs.Update(localGitDir, localRef, refs.Value{Value: r.Value.Value}, true); err != nil {
			return err
		}
	}
	return nil
}

// Push resolves refname locally, copies every object in its closure that
// the remote doesn't already have, then updates the remote's refname to
// point at it.
func Push(localGitDir, remoteGitDir, refname string) error {
	localVal, err := refs.Get(localGitDir, refname, true)
	if err != nil {
		return err
	}
	if localVal.IsAbsent() {
		return fmt.Errorf("push: %s does not resolve locally: %w", refname, ugiterr.InvalidState)
	}
	localOid := localVal.Value

	remoteHeads, err := refs.Iter(remoteGitDir, "", true)
	if err != nil {
		return err
	}
	var knownRemoteSeeds []string
	for _, r := range remoteHeads {
		if store.Exists(localGitDir, r.Value.Value) {
			knownRemoteSeeds = append(knownRemoteSeeds, r.Value.Value)
		}
	}

	localObjects, err := graph.WalkObjects(localGitDir, []string{localOid})
	if err != nil {
		return err
	}
	knownObjects, err := graph.WalkObjects(localGitDir, knownRemoteSeeds)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(knownObjects))
	for _, oid := range knownObjects {
		known[oid] = true
	}

	for _, oid := range localObjects {
		if known[oid] {
			continue
		}
		if err := store.CopyObjectFile(remoteGitDir, localGitDir, oid); err != nil {
			return err
		}
	}

	return refs.Update(remoteGitDir, refname, refs.Value{Value: localOid}, true)
}

// walkObjectsAcross walks the object graph starting from seeds entirely in
// remoteGitDir; localGitDir is not read. This lets Fetch discover the full
// closure before any object has been copied locally.
func walkObjectsAcross(localGitDir, remoteGitDir string, seeds []string) ([]string, error) {
	// The remote is assumed self-consistent (every object it names is
	// present there), so walking the remote's own graph yields exactly the
	// closure Fetch needs to copy.
	return graph.WalkObjects(remoteGitDir, seeds)
}
