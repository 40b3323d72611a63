package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drover-ai/drover/pkg/adapters/sandbox"
	"github.com/drover-ai/drover/pkg/drover"
)

var (
	launchURL  string
	launchSize string
)

var launchCmd = &cobra.Command{
	Use:   "launch <instruction>",
	Short: "Run the agent on an open-ended instruction and print its report.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		instruction := strings.Join(args, " ")
		ctx := cmd.Context()

		client, prov, runCfg, cleanup, err := buildStack(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		size := launchSize
		if size == "" {
			size = cfg.Sandbox.Size
		}
		answer, err := drover.Launch(ctx, client, prov, runCfg, drover.LaunchRequest{
			Instruction: instruction,
			URL:         launchURL,
			Size:        sandbox.Size(size),
			Model:       cfg.Model.Model,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	},
}

func init() {
	launchCmd.Flags().StringVar(&launchURL, "url", "", "open this URL in the instance browser before the run")
	launchCmd.Flags().StringVar(&launchSize, "size", "", "instance size: small, medium, or large")
	rootCmd.AddCommand(launchCmd)
}
