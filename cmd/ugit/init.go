package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/systemshift/ugit/internal/repository"
)

func newInitCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an empty ugit repository in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			repo := repository.Open(cwd)
			if err := repo.Init(); err != nil {
				return err
			}
			logger.Info("initialized repository", zap.String("path", repo.GitDir))
			fmt.Printf("Initialized empty ugit repository in %s\n", repo.GitDir)
			return nil
		},
	}
}
