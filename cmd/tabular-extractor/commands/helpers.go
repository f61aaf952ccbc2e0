package commands

import (
	"fmt"
	"io"

	"github.com/spherical/tabular-extractor/internal/config"
	"github.com/spherical/tabular-extractor/internal/extract"
	"github.com/spherical/tabular-extractor/internal/observability"
	"github.com/spherical/tabular-extractor/internal/ocr"
	"github.com/spherical/tabular-extractor/internal/pdf"
	"github.com/spherical/tabular-extractor/internal/tables"
	"github.com/spherical/tabular-extractor/internal/upload"
)

func newLogger(cfg *config.Config, out io.Writer) *observability.Logger {
	return observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		Output:      out,
		ServiceName: cfg.Observability.ServiceName,
	})
}

// buildService wires the pipeline from configuration. The returned closer
// releases the OCR engine.
func buildService(cfg *config.Config, logger *observability.Logger, metrics *observability.Metrics) (*extract.Service, func() error, error) {
	header, err := tables.ParseHeaderMode(cfg.Tables.Header)
	if err != nil {
		return nil, nil, fmt.Errorf("tables header: %w", err)
	}
	orient, err := tables.ParseOrient(cfg.Tables.JSONOrient)
	if err != nil {
		return nil, nil, fmt.Errorf("tables json orient: %w", err)
	}

	recognizer, err := ocr.New(ocr.Options{
		Language:    cfg.OCR.Language,
		PageSegMode: cfg.OCR.PageSegMode,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init OCR: %w", err)
	}

	logger = logger.With().
		Str("ocr", recognizer.Version()).
		Str("language", cfg.OCR.Language).
		Int("dpi", cfg.OCR.DPI).
		Logger()
	logger.Debug().Msgf("Pipeline configured: tabula %s, orient %s, header %s", cfg.Tables.JarPath, orient, header)

	svc := extract.NewService(extract.Deps{
		Acceptor: upload.NewAcceptor(upload.Options{
			AllowedExtensions: cfg.Ingest.AllowedExtensions,
			MaxBytes:          cfg.Ingest.MaxUploadBytes,
			StrictKind:        cfg.Ingest.StrictKind,
			TempDir:           cfg.Ingest.TempDir,
		}),
		Rasterizer: pdf.NewConverter(cfg.OCR.DPI),
		Recognizer: recognizer,
		Detector: tables.NewTabulaDetector(tables.TabulaConfig{
			JavaPath: cfg.Tables.JavaPath,
			JarPath:  cfg.Tables.JarPath,
			Timeout:  cfg.Tables.Timeout,
		}, nil),
		Formatter: tables.NewFormatter(header, orient),
		Logger:    logger,
		Metrics:   metrics,
	})
	return svc, recognizer.Close, nil
}
