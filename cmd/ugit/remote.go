package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newFetchCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <remote-path>",
		Short: "Fetch every branch head and its object closure from another repository path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			if err := repo.Fetch(args[0]); err != nil {
				return err
			}
			logger.Info("fetched", zap.String("remote", args[0]))
			fmt.Printf("Fetched from %s\n", args[0])
			return nil
		},
	}
}

func newPushCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "push <remote-path> <ref>",
		Short: "Push a ref and its object closure to another repository path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			if err := repo.Push(args[0], args[1]); err != nil {
				return err
			}
			logger.Info("pushed", zap.String("remote", args[0]), zap.String("ref", args[1]))
			fmt.Printf("Pushed %s to %s\n", args[1], args[0])
			return nil
		},
	}
}
