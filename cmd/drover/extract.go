package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/drover-ai/drover/pkg/adapters/sandbox"
	"github.com/drover-ai/drover/pkg/drover"
)

var (
	extractSchema  string
	extractCommand string
	extractURL     string
	extractSize    string
)

var extractCmd = &cobra.Command{
	Use:   "extract --schema schema.json",
	Short: "Run the agent as an information retriever and print validated JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := os.ReadFile(extractSchema)
		if err != nil {
			return fmt.Errorf("read schema: %w", err)
		}
		ctx := cmd.Context()

		client, prov, runCfg, cleanup, err := buildStack(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		size := extractSize
		if size == "" {
			size = cfg.Sandbox.Size
		}
		out, err := drover.ExtractJSON(ctx, client, prov, runCfg, schema, drover.ExtractRequest{
			URL:     extractURL,
			Command: extractCommand,
			Size:    sandbox.Size(size),
			Model:   cfg.Model.Model,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractSchema, "schema", "", "path to the JSON Schema the answer must satisfy")
	extractCmd.Flags().StringVar(&extractCommand, "cmd", "", "instruction for the agent (defaults to observe-only)")
	extractCmd.Flags().StringVar(&extractURL, "url", "", "open this URL in the instance browser before the run")
	extractCmd.Flags().StringVar(&extractSize, "size", "", "instance size: small, medium, or large")
	_ = extractCmd.MarkFlagRequired("schema")
	rootCmd.AddCommand(extractCmd)
}
