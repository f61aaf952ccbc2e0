package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/tabular-extractor/internal/domain"
)

func TestResolveKind(t *testing.T) {
	tests := []struct {
		flag string
		path string
		want domain.DocumentKind
	}{
		{"", "report.pdf", domain.KindPDF},
		{"", "REPORT.PDF", domain.KindPDF},
		{"", "scan.jpg", domain.KindImage},
		{"image", "report.pdf", domain.KindImage},
		{"PDF", "scan.png", domain.KindPDF},
	}
	for _, tt := range tests {
		got, err := resolveKind(tt.flag, tt.path)
		require.NoError(t, err, "%s %s", tt.flag, tt.path)
		assert.Equal(t, tt.want, got)
	}

	_, err := resolveKind("", "README")
	assert.Error(t, err)

	_, err = resolveKind("docx", "a.docx")
	assert.True(t, domain.IsType(err, domain.ErrorTypeValidation))
}
