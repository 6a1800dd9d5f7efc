package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/systemshift/ugit/internal/diffadapter"
)

func newLogCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "log [commit-ish]",
		Short: "Show commit history, first-parent-preferred from the given start point (default HEAD)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			start := ""
			if len(args) == 1 {
				start = args[0]
			}
			entries, err := repo.Log(start)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No commits yet")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("commit %s\n", e.Oid)
				for _, p := range e.Commit.Parents {
					fmt.Printf("parent %s\n", p)
				}
				fmt.Println()
				for _, line := range strings.Split(e.Commit.Message, "\n") {
					fmt.Printf("    %s\n", line)
				}
				fmt.Println()
			}
			return nil
		},
	}
}

func newShowCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "show <commit-ish>",
		Short: "Show a commit's message and its diff against its first parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			entries, err := repo.Log(args[0])
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("unknown commit %q", args[0])
			}
			entry := entries[0]
			fmt.Printf("commit %s\n\n", entry.Oid)
			for _, line := range strings.Split(entry.Commit.Message, "\n") {
				fmt.Printf("    %s\n", line)
			}
			fmt.Println()

			parent := ""
			if len(entry.Commit.Parents) > 0 {
				parent = entry.Commit.Parents[0]
			}
			diff, err := repo.Diff(parent, entry.Oid)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(diff)
			return err
		},
	}
}

func newDiffCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "diff [from] [to]",
		Short: "Show changes between commits, or a commit and the working directory (default: HEAD vs. working directory)",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}

			from, to := "", ""
			switch len(args) {
			case 1:
				from = args[0]
			case 2:
				from, to = args[0], args[1]
			}

			diff, err := repo.Diff(from, to)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(diff)
			return err
		},
	}
}

func newStatusCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show staged, unstaged, and untracked changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			report, err := repo.Status()
			if err != nil {
				return err
			}

			if report.Detached {
				fmt.Printf("HEAD detached at %s\n", oidPrefix(report.HeadOid, 10))
			} else if report.Branch != "" {
				fmt.Printf("On branch %s\n", report.Branch)
			} else {
				fmt.Println("No commits yet")
			}

			printChanges("Changes to be committed", report.Staged)
			printChanges("Changes not staged for commit", report.Unstaged)

			if len(report.Untracked) > 0 {
				fmt.Println("\nUntracked files:")
				for _, path := range report.Untracked {
					fmt.Printf("\t%s\n", path)
				}
			}
			return nil
		},
	}
}

func printChanges(title string, changes []diffadapter.ChangedFile) {
	if len(changes) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, c := range changes {
		fmt.Printf("\t%s: %s\n", c.Change, c.Path)
	}
}
