package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/systemshift/ugit/internal/store"
)

func newHashObjectCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-object <file>",
		Short: "Compute the object id of a file and store it as a blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			oid, err := repo.HashObject(args[0])
			if err != nil {
				return err
			}
			logger.Debug("hashed object", zap.String("path", args[0]), zap.String("oid", oid))
			fmt.Println(oid)
			return nil
		},
	}
}

func newCatFileCommand(logger *zap.Logger) *cobra.Command {
	var typeName string
	cmd := &cobra.Command{
		Use:   "cat-file <object>",
		Short: "Print the content of an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			data, err := repo.CatFile(args[0], store.Kind(typeName))
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Expected object type (blob, tree, commit); empty dumps raw content")
	return cmd
}

func newWriteTreeCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "write-tree",
		Short: "Snapshot the current working directory into a tree object",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			oid, err := repo.WriteTree()
			if err != nil {
				return err
			}
			fmt.Println(oid)
			return nil
		},
	}
}

func newReadTreeCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "read-tree <tree>",
		Short: "Restore the working directory to match a tree object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			return repo.ReadTree(args[0])
		},
	}
}
