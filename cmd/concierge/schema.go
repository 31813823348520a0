package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/concierge/internal/api"
	"github.com/jackzampolin/concierge/internal/schema"
	"github.com/jackzampolin/concierge/internal/server/endpoints"
)

var schemaTemplateOnly bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the extraction template",
	Long: `Print the extraction template, its field kinds and the JSON Schema used
for conformance notes. No server or model is needed.

Examples:
  concierge schema             # Template, fields and JSON Schema as YAML
  concierge schema --template  # Only the template JSON sent to the model`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if schemaTemplateOnly {
			fmt.Fprintln(cmd.OutOrStdout(), schema.JSON())
			return nil
		}
		return api.Output(endpoints.SchemaDescription())
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaTemplateOnly, "template", false, "Print only the template JSON")
	rootCmd.AddCommand(schemaCmd)
}
