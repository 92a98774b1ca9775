package commands

import "github.com/spf13/cobra"

func stabilityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stability",
		Short: "Run the stability index engine and print per-mold stability",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runPipeline()
			if err != nil {
				return err
			}
			return renderSection("stability", renderStabilityText(result.Stability), result.Stability)
		},
	}
}
