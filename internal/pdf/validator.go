// Package pdf rasterizes PDF pages for OCR.
package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/spherical/tabular-extractor/internal/domain"
)

// Validator provides input validation for PDF files
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidatePDFPath checks that path names a readable regular file. The
// extension is not checked; uploads are stored under generated names and the
// Input Acceptor has already matched extension and content.
func (v *Validator) ValidatePDFPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return domain.ValidationError("file path cannot be empty", nil).WithReason(domain.ReasonMissingFile)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ValidationError(fmt.Sprintf("file does not exist: %s", path), err).WithReason(domain.ReasonMissingFile)
		}
		return domain.ValidationError(fmt.Sprintf("cannot access file: %s", path), err).WithReason(domain.ReasonUnreadableSource)
	}

	if info.IsDir() {
		return domain.ValidationError(fmt.Sprintf("path is a directory, not a file: %s", path), nil).WithReason(domain.ReasonUnreadableSource)
	}

	file, err := os.Open(path)
	if err != nil {
		return domain.ValidationError(fmt.Sprintf("cannot open file: %s", path), err).WithReason(domain.ReasonUnreadableSource)
	}
	file.Close()

	return nil
}
