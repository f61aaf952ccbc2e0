package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spherical/tabular-extractor/cmd/tabular-extractor/ui"
	"github.com/spherical/tabular-extractor/internal/config"
)

var (
	cfgFile string
	verbose bool
	noColor bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tabular-extractor",
	Short: "Extract text and tables from PDFs and images",
	Long: `tabular-extractor runs OCR over an uploaded PDF or image, detects tables in
PDFs, and serves the results as plain text plus one JSON file per table.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.InitUI(noColor, verbose)

		loaded, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if verbose {
			loaded.Observability.LogLevel = "debug"
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
