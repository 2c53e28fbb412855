package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var providerFlag string

	ctx := newCommandContext(&providerFlag)

	rootCmd := &cobra.Command{
		Use:           "rescuectl",
		Short:         "RescueAssist dispatch CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&providerFlag, "provider", "p", "", "Model provider, overrides AI_PROVIDER")

	rootCmd.AddCommand(newFlowsCommand(ctx))
	rootCmd.AddCommand(newJobsCommand())
	rootCmd.AddCommand(newStatsCommand())
	rootCmd.AddCommand(newVehiclesCommand())

	return rootCmd
}
