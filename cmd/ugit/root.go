package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/systemshift/ugit/internal/repository"
)

func newRootCommand(logger *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "ugit",
		Short:         "A content-addressed version control tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newInitCommand(logger),
		newHashObjectCommand(logger),
		newCatFileCommand(logger),
		newWriteTreeCommand(logger),
		newReadTreeCommand(logger),
		newAddCommand(logger),
		newCommitCommand(logger),
		newLogCommand(logger),
		newShowCommand(logger),
		newDiffCommand(logger),
		newCheckoutCommand(logger),
		newBranchCommand(logger),
		newTagCommand(logger),
		newStatusCommand(logger),
		newResetCommand(logger),
		newMergeCommand(logger),
		newMergeBaseCommand(logger),
		newFetchCommand(logger),
		newPushCommand(logger),
	)
	return root
}

// openRepo opens the repository rooted at the current working directory.
func openRepo() (*repository.Repository, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	repo := repository.Open(cwd)
	if _, err := os.Stat(repo.GitDir); err != nil {
		return nil, fmt.Errorf("not a ugit repository (or any parent up to %s)", cwd)
	}
	return repo, nil
}

func shortOid(oid string) string {
	return oidPrefix(oid, 8)
}

func oidPrefix(oid string, n int) string {
	if len(oid) > n {
		return oid[:n]
	}
	return oid
}
