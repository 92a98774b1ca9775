package commands

import "github.com/spf13/cobra"

func assignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign",
		Short: "Run the two-tier optimizer and print the combined assignment plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runPipeline()
			if err != nil {
				return err
			}
			return renderSection("plan", renderPlanText(result.Plan), result.Plan)
		},
	}
}
