package commands

import "github.com/spf13/cobra"

func weightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weights",
		Short: "Run the feature weight engine and print per-feature weights",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runPipeline()
			if err != nil {
				return err
			}
			return renderSection("weights", renderWeightsText(result.FeatureWeight), result.FeatureWeight)
		},
	}
}
