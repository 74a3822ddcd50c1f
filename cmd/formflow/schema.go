package main

import (
	"fmt"

	"github.com/aretw0/formflow/internal/cli"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage stored forms",
	Long:  `Store, inspect, list and remove the form documents the engine serves.`,
}

var schemaPutCmd = &cobra.Command{
	Use:   "put <file>...",
	Short: "Store one or more form documents (\"-\" reads stdin)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		for _, path := range args {
			form, err := cli.ReadForm(path, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := app.Repo.Save(cmd.Context(), form); err != nil {
				return fmt.Errorf("failed to save form %s: %w", form.ID, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored form '%s'\n", form.ID)
		}
		return nil
	},
}

var schemaGetCmd = &cobra.Command{
	Use:   "get <form-id>",
	Short: "Print a stored form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		form, err := app.Repo.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), form)
	},
}

var schemaLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored forms",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		ids, err := app.Repo.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No forms found.")
			return nil
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), "- "+id)
		}
		return nil
	},
}

var schemaRmCmd = &cobra.Command{
	Use:   "rm <form-id>...",
	Short: "Remove one or more forms",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		var firstErr error
		for _, id := range args {
			if err := app.Repo.Delete(cmd.Context(), id); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", id, err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed form '%s'\n", id)
		}
		return firstErr
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaPutCmd)
	schemaCmd.AddCommand(schemaGetCmd)
	schemaCmd.AddCommand(schemaLsCmd)
	schemaCmd.AddCommand(schemaRmCmd)
}
