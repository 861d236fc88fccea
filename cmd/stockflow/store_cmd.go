package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-stockflow/pkg/project"
)

func (a *app) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage projects in the configured store",
	}
	cmd.AddCommand(a.storePutCommand(), a.storeGetCommand(), a.storeListCommand(), a.storeDeleteCommand())
	return cmd
}

func (a *app) storePutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "put <name> <file>",
		Short: "Upload a project file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read project: %w", err)
			}
			doc, err := project.Decode(data)
			if err != nil {
				return err
			}
			// Reject documents the editor could not open either.
			if _, err := doc.Graph(); err != nil {
				return err
			}

			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Put(cmd.Context(), args[0], doc); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, successStyle.Render("stored "+args[0]))
			return nil
		},
	}
}

func (a *app) storeGetCommand() *cobra.Command {
	var out string
	var compress bool
	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Download a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			doc, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := project.Plain
			if compress {
				enc = project.Compressed
			}
			data, err := project.Encode(doc, enc)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = a.stdout.Write(data)
				return err
			}
			return os.WriteFile(out, data, 0644)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&compress, "compress", false, "write snappy-compressed output")
	return cmd
}

func (a *app) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			infos, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			renderStoreList(a.stdout, infos)
			return nil
		},
	}
}

func (a *app) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, successStyle.Render("deleted "+args[0]))
			return nil
		},
	}
}
