package main

import (
	"github.com/aretw0/formflow"
	"github.com/aretw0/formflow/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview <form-id>",
	Short: "Fill a form interactively in the terminal",
	Long: `Walks through the form step by step. Choices can be answered with the option
number or value. Type "exit" to stop; the position is kept for the next run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		account, _ := cmd.Flags().GetString("account")
		plain, _ := cmd.Flags().GetBool("plain")

		runner := &formflow.Runner{
			Input:    cmd.InOrStdin(),
			Output:   cmd.OutOrStdout(),
			Renderer: tui.Plain,
		}
		if !plain && tui.IsInteractive() {
			tui.PrintBanner(cmd.OutOrStdout(), formflow.Version)
			runner.Renderer = tui.NewRenderer()
		}
		return runner.Run(cmd.Context(), app.Engine, args[0], account)
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().StringP("account", "a", "preview", "Participant id to fill the form as")
	previewCmd.Flags().Bool("plain", false, "Print markdown without terminal styling")
}
