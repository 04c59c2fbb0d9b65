package main

import (
	"github.com/spf13/cobra"

	"viracoach/config"
	"viracoach/log"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "viracoach",
		Short:         "Score short-form videos for virality potential",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log.InitLogger()
			_, err := config.LoadOrCreateConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newReportCommand())
	rootCmd.AddCommand(newDoctorCommand())

	return rootCmd
}
