package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMergeCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <commit-ish>",
		Short: "Merge another commit into HEAD",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			result, err := repo.Merge(args[0])
			if err != nil {
				return err
			}
			switch {
			case result.FastForward:
				fmt.Println("Fast-forward")
			case result.Conflict:
				fmt.Println("Automatic merge failed; fix conflicts and then commit the result")
			default:
				fmt.Println("Merge made; commit to record it")
			}
			return nil
		},
	}
}

func newMergeBaseCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "merge-base <commit-ish> <commit-ish>",
		Short: "Print the best common ancestor of two commits",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			base, err := repo.MergeBase(args[0], args[1])
			if err != nil {
				return err
			}
			if base == "" {
				return fmt.Errorf("no common ancestor")
			}
			fmt.Println(base)
			return nil
		},
	}
}
