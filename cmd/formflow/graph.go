package main

import (
	"fmt"

	"github.com/aretw0/formflow/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <form-id>",
	Short: "Export the form graph visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the form. With --account the
participant's current node is highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		form, err := app.Engine.Inspect(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if account, _ := cmd.Flags().GetString("account"); account != "" {
			current, err := app.Engine.Position(cmd.Context(), form.ID, account)
			if err != nil {
				return err
			}
			overlay = &graph.GraphOverlay{CurrentNode: current}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(form.Schema, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("account", "a", "", "Highlight this participant's current node")
}
