package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAddCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "add <path>...",
		Short: "Stage file contents for the next commit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			return repo.Add(args)
		},
	}
}

func newCommitCommand(logger *zap.Logger) *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record the current working directory as a new commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("a commit message is required (use -m)")
			}
			repo, err := openRepo()
			if err != nil {
				return err
			}
			oid, err := repo.Commit(message)
			if err != nil {
				return err
			}
			logger.Info("committed", zap.String("oid", oid))
			fmt.Printf("[%s] %s\n", shortOid(oid), message)
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message")
	return cmd
}
