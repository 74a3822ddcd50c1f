package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and reset participant positions",
	Long:  `Show where participants stand in a form and move them back to its entry node.`,
}

var sessionGetCmd = &cobra.Command{
	Use:   "get <form-id> <account>",
	Short: "Print a participant's current node",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		current, err := app.Engine.Position(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), current)
		return nil
	},
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls <form-id>",
	Short: "List participants with a stored position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		ids, err := app.Engine.Participants(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No active sessions found.")
			return nil
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), "- "+id)
		}
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <form-id> <account>...",
	Short: "Reset one or more participants to the entry node",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		formID := args[0]
		for _, account := range args[1:] {
			if err := app.Engine.ResetSession(cmd.Context(), formID, account); err != nil {
				return fmt.Errorf("error removing '%s': %w", account, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", account)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionGetCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}
