package commands

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/config"
	csvloader "github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/ingest/csv"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/orchestrator"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/repository/memory"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
)

// sharedFlags holds the persistent flags every subcommand reads to
// locate its inputs and pick its output shape.
type sharedFlags struct {
	scenarioDir string
	configPath  string
	format      string
	outputDir   string
	verbose     bool
	regenerate  bool
}

var flags sharedFlags

// Root builds the optimoldiq command tree.
func Root() *cobra.Command {
	root := &cobra.Command{
		Use:           "optimoldiq",
		Short:         "Manufacturing planning core for plastic injection molding",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.scenarioDir, "scenario", "", "directory containing the snapshot CSV files (required)")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a YAML config file (optional, defaults applied otherwise)")
	root.PersistentFlags().StringVar(&flags.format, "format", "text", "output format: text or json")
	root.PersistentFlags().StringVar(&flags.outputDir, "output", "", "write output to this directory instead of stdout")
	root.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "enable verbose logging")
	root.PersistentFlags().BoolVar(&flags.regenerate, "regenerate", false, "bypass the fingerprint cache and recompute")

	root.AddCommand(stabilityCmd(), weightsCmd(), priorityCmd(), assignCmd(), runCmd())
	return root
}

// loadInputs reads the snapshot and config for the current invocation,
// applying --regenerate on top of whatever the config file specifies.
func loadInputs() (types.Snapshot, config.Config, error) {
	if flags.scenarioDir == "" {
		return types.Snapshot{}, config.Config{}, fmt.Errorf("--scenario is required")
	}

	snap, err := csvloader.NewLoader().LoadSnapshot(flags.scenarioDir)
	if err != nil {
		return types.Snapshot{}, config.Config{}, fmt.Errorf("loading scenario: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return types.Snapshot{}, config.Config{}, fmt.Errorf("invalid scenario: %w", err)
	}

	cfg := config.Default()
	if flags.configPath != "" {
		cfg, err = config.LoadYAML(flags.configPath)
		if err != nil {
			return types.Snapshot{}, config.Config{}, err
		}
	}
	if flags.regenerate {
		cfg.Regenerate = true
	}

	return snap, cfg, nil
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	if flags.verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}

// runPipeline loads inputs and executes the full orchestrator DAG; every
// subcommand runs the same pass and renders a different slice of its
// Result.
func runPipeline() (*orchestrator.Result, error) {
	snap, cfg, err := loadInputs()
	if err != nil {
		return nil, err
	}
	store := memory.New(32)
	return orchestrator.Run(cfg, snap, store, newLogger())
}

// renderSection writes payload to --output/<name>.<ext> or stdout,
// choosing text or JSON per --format.
func renderSection(name string, textBody string, payload any) error {
	switch flags.format {
	case "text":
		return writeOutput(name+".txt", textBody)
	case "json":
		body, err := marshalIndent(payload)
		if err != nil {
			return err
		}
		return writeOutput(name+".json", body)
	default:
		return fmt.Errorf("unsupported --format %q (want text or json)", flags.format)
	}
}

func writeOutput(filename, body string) error {
	if flags.outputDir == "" {
		fmt.Print(body)
		if len(body) == 0 || body[len(body)-1] != '\n' {
			fmt.Println()
		}
		return nil
	}
	if err := os.MkdirAll(flags.outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := flags.outputDir + string(os.PathSeparator) + filename
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if flags.verbose {
		fmt.Printf("wrote %s\n", path)
	}
	return nil
}
