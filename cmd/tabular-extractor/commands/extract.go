package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spherical/tabular-extractor/cmd/tabular-extractor/ui"
	"github.com/spherical/tabular-extractor/internal/domain"
	"github.com/spherical/tabular-extractor/internal/present"
)

var (
	extractFilePath  string
	extractFileType  string
	extractOutputDir string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract text and tables from a PDF or image",
	Long: `Run OCR over a PDF or image, print the text and any detected tables, and
write each table to <output-dir>/table_<N>.json.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractFilePath, "file", "f", "", "path to the PDF or image (required)")
	extractCmd.Flags().StringVarP(&extractFileType, "type", "t", "", "file type: pdf or image (default: from the extension)")
	extractCmd.Flags().StringVarP(&extractOutputDir, "output-dir", "o", ".", "directory for table_<N>.json files")
	_ = extractCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	kind, err := resolveKind(extractFileType, extractFilePath)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(extractFilePath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	logOut := io.Discard
	if ui.Verbose() {
		logOut = os.Stderr
	}
	logger := newLogger(cfg, logOut)

	svc, closeOCR, err := buildService(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer closeOCR()

	ui.Section("Extraction")
	ui.KeyValue("File", extractFilePath)
	ui.KeyValue("Type", kind.Label())
	ui.Newline()

	events := make(chan domain.StreamEvent, 64)
	done := make(chan *domain.ExtractionResult, 1)
	go func() {
		done <- svc.Process(ctx, domain.ExtractionRequest{
			Filename: filepath.Base(extractFilePath),
			Kind:     kind,
			Content:  content,
		}, events)
		close(events)
	}()

	tracker := ui.NewTracker(kind)
	for event := range events {
		tracker.Handle(event)
	}
	tracker.Finish()
	result := <-done

	view, err := present.NewBuilder().Build(result)
	if err != nil {
		return err
	}
	ui.Newline()
	present.NewTerminal(os.Stdout).Render(view)

	if !result.Accepted() {
		return fmt.Errorf("upload rejected: %s", result.Failure.Message)
	}

	paths, err := present.WriteTables(extractOutputDir, view)
	if err != nil {
		return err
	}
	for _, p := range paths {
		ui.Success("Saved %s", p)
	}

	ui.Info("Finished in %s", ui.FormatDuration(result.Duration))
	if n := len(view.Errors); n > 0 {
		ui.Warning("%d stage(s) failed; see the errors above", n)
		return fmt.Errorf("extraction finished with errors")
	}
	return nil
}

// resolveKind uses the --type flag when given and the file extension
// otherwise.
func resolveKind(flag, path string) (domain.DocumentKind, error) {
	if flag != "" {
		return domain.ParseDocumentKind(flag)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		return domain.KindPDF, nil
	case "":
		return "", fmt.Errorf("cannot infer file type of %s; pass --type", path)
	default:
		return domain.KindImage, nil
	}
}
