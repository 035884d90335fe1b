package main

import (
	"fmt"
	"os"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"marker/cmd/marker/tui"
	"marker/internal/demo"
	"marker/internal/logging"
	"marker/internal/session"
)

const version = "1.0.0"

var (
	// Global flags
	verbose  bool
	demoMode bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "marker",
	Short: "marker - instruction applicability and evaluation TUI",
	Long: `marker is a terminal tool for marking instruction applicability and
scoring per-model evaluations against rubrics.

The workflow has three steps:
  1. Applicability: paste the instructions JSON, mark each instruction
     applicable or not, and commit.
  2. Evaluation: walk the applicable rubrics per model and record verdicts.
  3. Results: export the final and per-model JSON, or import an evaluated
     payload back into a model's state.

Run without arguments to start the interactive interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Init(verbose)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.Named("marker")

		sess := session.New(log)
		if demoMode {
			if err := demo.Load(sess); err != nil {
				return fmt.Errorf("load demo data: %w", err)
			}
			log.Info("demo data loaded")
		}

		p := tea.NewProgram(tui.New(sess, log), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("tui: %w", err)
		}
		return nil
	},
}

// versionCmd shows build information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("marker %s (%s)\n", version, runtime.Version())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&demoMode, "demo", false, "Start with the built-in sample session")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
