package commands

import "github.com/spf13/cobra"

func priorityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "priority",
		Short: "Run the priority matrix engine and print mold x machine ranks",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runPipeline()
			if err != nil {
				return err
			}
			return renderSection("priority", renderPriorityText(result.Priority), result.Priority)
		},
	}
}
