package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spherical/tabular-extractor/internal/ocr"
)

// Version is overridden at build time with -ldflags "-X ...commands.Version=...".
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := "disabled"
		if client, err := ocr.New(ocr.DefaultOptions()); err == nil {
			engine = client.Version()
			_ = client.Close()
		}
		fmt.Fprintf(cmd.OutOrStdout(), "tabular-extractor version %s (tesseract: %s)\n", Version, engine)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
