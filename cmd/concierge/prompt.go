package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/concierge/internal/api"
	"github.com/jackzampolin/concierge/internal/server/endpoints"
)

var (
	promptHint     string
	promptTextOnly bool
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the extraction prompt",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp := endpoints.DescribePrompt(promptHint)
		if promptTextOnly {
			fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
			return nil
		}
		return api.Output(resp)
	},
}

func init() {
	promptCmd.Flags().StringVar(&promptHint, "hint", "", "Hint appended to the prompt")
	promptCmd.Flags().BoolVar(&promptTextOnly, "text", false, "Print only the rendered prompt text")
	rootCmd.AddCommand(promptCmd)
}
