package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline and print every engine's output",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runPipeline()
			if err != nil {
				return err
			}

			var b strings.Builder
			fmt.Fprintf(&b, "RUN %s (from_cache=%v, %d warnings)\n\n", result.RunID, result.FromCache, len(result.Warnings))
			b.WriteString(renderStabilityText(result.Stability))
			b.WriteString("\n")
			b.WriteString(renderWeightsText(result.FeatureWeight))
			b.WriteString("\n")
			b.WriteString(renderPriorityText(result.Priority))
			b.WriteString("\n")
			b.WriteString(renderPlanText(result.Plan))

			return renderSection("run", b.String(), result)
		},
	}
}
