// Package extract runs the extraction pipeline: accept the upload, OCR its
// text, detect and format its tables.
package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spherical/tabular-extractor/internal/domain"
	"github.com/spherical/tabular-extractor/internal/observability"
	"github.com/spherical/tabular-extractor/internal/tables"
	"github.com/spherical/tabular-extractor/internal/upload"
)

// Acceptor validates and materializes uploads
type Acceptor interface {
	Accept(req domain.ExtractionRequest) (*domain.UploadedDocument, *upload.TempFile, error)
}

// Deps holds the collaborators of a Service
type Deps struct {
	Acceptor    Acceptor
	Rasterizer  domain.Rasterizer
	Recognizer  domain.Recognizer
	ImageLoader ImageLoader
	Detector    domain.TableDetector
	Formatter   *tables.Formatter
	Logger      *observability.Logger
	Metrics     *observability.Metrics
}

// Service orchestrates one extraction per call
type Service struct {
	acceptor  Acceptor
	text      *TextExtractor
	detector  domain.TableDetector
	formatter *tables.Formatter
	logger    *observability.Logger
	metrics   *observability.Metrics
}

// NewService creates a new extraction service
func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = observability.Nop()
	}
	formatter := deps.Formatter
	if formatter == nil {
		formatter = tables.NewFormatter(tables.HeaderFirstRow, tables.OrientColumns)
	}
	return &Service{
		acceptor:  deps.Acceptor,
		text:      NewTextExtractor(deps.Rasterizer, deps.Recognizer, deps.ImageLoader, deps.Metrics),
		detector:  deps.Detector,
		formatter: formatter,
		logger:    logger.WithOperation("extract"),
		metrics:   deps.Metrics,
	}
}

// Process runs the pipeline for one request. It never returns nil: every
// outcome, including rejection, is reported on the result. The text and table
// stages are independent, so one failing does not stop the other.
func (s *Service) Process(ctx context.Context, req domain.ExtractionRequest, eventCh chan<- domain.StreamEvent) *domain.ExtractionResult {
	startTime := time.Now()

	requestID := observability.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = observability.ContextWithRequestID(ctx, requestID)
	}
	logger := s.logger.WithContext(ctx)

	result := &domain.ExtractionResult{
		RequestID: requestID,
		Filename:  req.Filename,
		Kind:      req.Kind,
		Tables:    []domain.FormattedTable{},
	}
	defer func() {
		result.Duration = time.Since(startTime)
	}()

	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventStart,
		Payload:   fmt.Sprintf("Starting extraction of %s", req.Filename),
		Timestamp: time.Now(),
	})

	// Accept
	stageStart := time.Now()
	doc, tmp, err := s.acceptor.Accept(req)
	s.metrics.ObserveStage(observability.StageAccept, time.Since(stageStart))
	if err != nil {
		result.Failure = s.fail(eventCh, observability.StageAccept, err, domain.ErrorTypeValidation, "upload rejected")
		logger.Warn().Str("filename", req.Filename).Str("reason", result.Failure.Reason).Msg(result.Failure.Message)
		return result
	}
	defer func() {
		if err := tmp.Release(); err != nil {
			logger.Warn().Err(err).Str("path", tmp.Path).Msg("Failed to remove temp file")
		}
	}()

	logger.Info().
		Str("filename", doc.Filename).
		Str("kind", string(doc.Kind)).
		Int64("bytes", doc.Size).
		Msg("Upload accepted")

	// Text
	stageStart = time.Now()
	text, pages, err := s.text.Extract(ctx, doc.Path, doc.Kind, func(evt domain.EventType, page, total int) {
		s.emitEvent(eventCh, domain.StreamEvent{
			Type:       evt,
			PageNumber: page,
			TotalPages: total,
			Payload:    fmt.Sprintf("%s page %d/%d", pageVerb(evt), page, total),
			Timestamp:  time.Now(),
		})
	})
	s.metrics.ObserveStage(observability.StageText, time.Since(stageStart))
	result.Pages = pages
	if err != nil {
		result.TextFailure = s.fail(eventCh, observability.StageText, err, domain.ErrorTypeOCR, "text extraction failed")
		logger.Error().Err(err).Msg("Text extraction failed")
	} else {
		result.Text = text
		logger.Info().Int("pages", pages).Int("chars", len(text)).Msg("Text extracted")
	}

	// Tables
	if doc.Kind == domain.KindPDF {
		s.extractTables(ctx, doc.Path, result, eventCh, logger)
	}

	s.emitEvent(eventCh, domain.StreamEvent{
		Type: domain.EventComplete,
		Payload: fmt.Sprintf("Extraction complete: %d pages, %d tables in %v",
			result.Pages, len(result.Tables), time.Since(startTime).Round(time.Millisecond)),
		Timestamp: time.Now(),
	})
	logger.Info().
		Int("pages", result.Pages).
		Int("tables", len(result.Tables)).
		Dur("duration", time.Since(startTime)).
		Msg("Extraction complete")

	return result
}

func (s *Service) extractTables(ctx context.Context, path string, result *domain.ExtractionResult, eventCh chan<- domain.StreamEvent, logger *observability.Logger) {
	stageStart := time.Now()
	raws, err := s.detector.Detect(ctx, path)
	s.metrics.ObserveStage(observability.StageTables, time.Since(stageStart))
	if err != nil {
		result.TableFailure = s.fail(eventCh, observability.StageTables, err, domain.ErrorTypeTableDetection, "table detection failed")
		logger.Error().Err(err).Msg("Table detection failed")
		return
	}
	s.metrics.TablesDetected(len(raws))

	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventTablesDetected,
		Payload:   len(raws),
		Timestamp: time.Now(),
	})

	stageStart = time.Now()
	formatted, err := s.formatter.Format(raws)
	s.metrics.ObserveStage(observability.StageFormat, time.Since(stageStart))
	if err != nil {
		result.TableFailure = s.fail(eventCh, observability.StageFormat, err, domain.ErrorTypeSerialization, "table formatting failed")
		logger.Error().Err(err).Msg("Table formatting failed")
		return
	}

	result.Tables = formatted
	logger.Info().Int("tables", len(formatted)).Msg("Tables formatted")
}

// fail records a stage failure and reports it as a typed error.
func (s *Service) fail(eventCh chan<- domain.StreamEvent, stage string, err error, fallback domain.ErrorType, message string) *domain.DomainError {
	de := domain.AsDomainError(err, fallback, message)
	s.metrics.StageFailed(stage, string(de.Type))
	s.emitError(eventCh, de)
	return de
}

func pageVerb(evt domain.EventType) string {
	if evt == domain.EventPageComplete {
		return "Recognized"
	}
	return "Recognizing"
}

// emitEvent safely emits an event to the channel
func (s *Service) emitEvent(eventCh chan<- domain.StreamEvent, event domain.StreamEvent) {
	if eventCh != nil {
		select {
		case eventCh <- event:
		default:
			s.logger.Warn().Str("event", string(event.Type)).Msg("Event channel full, dropping event")
		}
	}
}

// emitError emits an error event
func (s *Service) emitError(eventCh chan<- domain.StreamEvent, err *domain.DomainError) {
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventError,
		Payload:   err,
		Timestamp: time.Now(),
	})
}
