package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docsearch/documenter-mcp-server/tools"
)

func newValidateCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "validate <search_index.js>",
		Short: "Check every record against the search index schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			result := tools.ValidatePayload(raw)
			result.Source = args[0]

			out := cmd.OutOrStdout()
			if output != outputText {
				if err := writeStructured(out, output, result); err != nil {
					return err
				}
			} else {
				for _, e := range result.Errors {
					fmt.Fprintf(out, "%s\t%s\t%s\n", e.Code, e.Path, e.Message)
				}
				for _, w := range result.Warnings {
					fmt.Fprintf(out, "warning\t%s\t%s\n", w.Path, w.Message)
				}
				fmt.Fprintln(out, result.Summary)
			}

			if !result.Valid {
				return fmt.Errorf("%s: %d error(s)", args[0], len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "report format: text, json or yaml")
	return cmd
}
