package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"viracoach/internal/deps"
)

func newDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that ffmpeg, ffprobe and yt-dlp are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			states := deps.ResolveDependencyInventory()
			fmt.Println(deps.FormatDependencyReport(states))

			for _, state := range states {
				if state.Tier == deps.DependencyTierMust && state.Status != deps.DependencyStatusOK {
					return fmt.Errorf("required dependency %q is not available", state.ID)
				}
			}
			fmt.Println("all required dependencies found")
			return nil
		},
	}
}
