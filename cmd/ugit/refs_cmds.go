package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCheckoutCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <commit-ish>",
		Short: "Switch the working directory and HEAD to a commit, branch, or tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			if err := repo.Checkout(args[0]); err != nil {
				return err
			}
			if repo.IsBranch(args[0]) {
				fmt.Printf("Switched to branch '%s'\n", args[0])
			} else {
				fmt.Printf("HEAD is now at %s (detached)\n", shortOid(args[0]))
			}
			return nil
		},
	}
}

func newBranchCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "branch [name] [start-point]",
		Short: "List local branches, or create one at start-point (default HEAD)",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				refs, err := repo.Branches()
				if err != nil {
					return err
				}
				current, err := repo.CurrentBranch()
				if err != nil {
					return err
				}
				for _, ref := range refs {
					name := strings.TrimPrefix(ref.Name, "refs/heads/")
					marker := " "
					if name == current {
						marker = "*"
					}
					fmt.Printf("%s %s\n", marker, name)
				}
				return nil
			}
			start := "@"
			if len(args) == 2 {
				start = args[1]
			}
			if err := repo.CreateBranch(args[0], start); err != nil {
				return err
			}
			fmt.Printf("Created branch '%s'\n", args[0])
			return nil
		},
	}
}

func newTagCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <name> [start-point]",
		Short: "Create a tag at start-point (default HEAD)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			start := "@"
			if len(args) == 2 {
				start = args[1]
			}
			if err := repo.CreateTag(args[0], start); err != nil {
				return err
			}
			fmt.Printf("Created tag '%s'\n", args[0])
			return nil
		},
	}
}

func newResetCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <commit-ish>",
		Short: "Move HEAD to a commit without touching the working directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			return repo.Reset(args[0])
		},
	}
}
