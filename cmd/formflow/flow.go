package main

import (
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <form-id>",
	Short: "Print the descriptor a participant would see now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		account, _ := cmd.Flags().GetString("account")
		return handle(cmd, domain.Request{FormID: args[0], ParticipantID: account})
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit <form-id>",
	Short: "Answer a participant's current step",
	Long: `Submits an answer for the participant and prints the resulting descriptor.
Without --input the step is submitted with no answer, which moves past start nodes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		account, _ := cmd.Flags().GetString("account")
		req := domain.Request{FormID: args[0], ParticipantID: account, Submit: true}
		if cmd.Flags().Changed("input") {
			input, _ := cmd.Flags().GetString("input")
			req.Input = &input
		}
		return handle(cmd, req)
	},
}

func handle(cmd *cobra.Command, req domain.Request) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	resp, err := app.Engine.Handle(cmd.Context(), req)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}

func init() {
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(submitCmd)

	renderCmd.Flags().StringP("account", "a", "", "Participant id (empty renders the entry node)")
	submitCmd.Flags().StringP("account", "a", "", "Participant id")
	submitCmd.Flags().StringP("input", "i", "", "Answer to submit")
	_ = submitCmd.MarkFlagRequired("account")
}
