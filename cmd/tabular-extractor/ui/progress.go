package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/schollz/progressbar/v3"

	"github.com/spherical/tabular-extractor/internal/domain"
)

// ProgressBar wraps a progressbar instance for deterministic progress display.
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// NewProgressBar creates a new progress bar with the given total and description.
func NewProgressBar(total int64, description string) *ProgressBar {
	bar := progressbar.NewOptions64(
		total,
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &ProgressBar{bar: bar}
}

// Set moves the bar to current.
func (p *ProgressBar) Set(current int64) {
	_ = p.bar.Set64(current)
}

// Finish completes the progress bar.
func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
}

// Spinner wraps a spinner instance for indeterminate progress display.
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner creates a new spinner with the given message.
func NewSpinner(message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = os.Stderr
	return &Spinner{spinner: s}
}

// Start starts the spinner animation.
func (s *Spinner) Start() {
	s.spinner.Start()
}

// Stop stops the spinner animation and clears the line.
func (s *Spinner) Stop() {
	s.spinner.Stop()
}

type trackerPhase int

const (
	phaseText trackerPhase = iota
	phaseTables
	phaseDone
)

// Tracker turns pipeline events into a page progress bar followed by a
// spinner while tables are detected.
type Tracker struct {
	kind    domain.DocumentKind
	phase   trackerPhase
	bar     *ProgressBar
	spinner *Spinner
}

// NewTracker creates a tracker for a document of the given kind.
func NewTracker(kind domain.DocumentKind) *Tracker {
	return &Tracker{kind: kind}
}

// Handle reacts to one event.
func (t *Tracker) Handle(event domain.StreamEvent) {
	switch event.Type {
	case domain.EventStart:
		if Verbose() {
			Info("%v", event.Payload)
		}

	case domain.EventPageProcessing:
		if t.bar == nil {
			t.bar = NewProgressBar(int64(event.TotalPages), "OCR")
		}

	case domain.EventPageComplete:
		if t.bar != nil {
			t.bar.Set(int64(event.PageNumber))
		}
		if event.PageNumber == event.TotalPages {
			t.textDone()
		}

	case domain.EventTablesDetected:
		t.stopSpinner()
		t.phase = phaseDone
		if n, ok := event.Payload.(int); ok && Verbose() {
			Info("Detector reported %d table(s)", n)
		}

	case domain.EventError:
		rejected := domain.IsType(asError(event.Payload), domain.ErrorTypeValidation)
		t.Finish()
		switch {
		case rejected:
			t.phase = phaseDone
		case t.phase == phaseText:
			// Table detection still runs after a text failure.
			t.textDone()
		default:
			t.phase = phaseDone
		}

	case domain.EventComplete:
		t.Finish()
		if Verbose() {
			Info("%v", event.Payload)
		}
	}
}

// Finish stops any running indicator.
func (t *Tracker) Finish() {
	if t.bar != nil {
		t.bar.Finish()
		t.bar = nil
	}
	t.stopSpinner()
}

func (t *Tracker) textDone() {
	if t.bar != nil {
		t.bar.Finish()
		t.bar = nil
	}
	if t.phase != phaseText {
		return
	}
	t.phase = phaseTables
	if t.kind == domain.KindPDF {
		t.spinner = NewSpinner("Detecting tables...")
		t.spinner.Start()
	}
}

func (t *Tracker) stopSpinner() {
	if t.spinner != nil {
		t.spinner.Stop()
		t.spinner = nil
	}
}

func asError(v interface{}) error {
	err, _ := v.(error)
	return err
}
