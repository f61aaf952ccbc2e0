package tables

import (
	"fmt"

	"github.com/spherical/tabular-extractor/internal/domain"
)

// Formatter normalizes and serializes detected tables.
type Formatter struct {
	header HeaderMode
	orient Orient
}

// NewFormatter creates a formatter for the given header mode and orient.
func NewFormatter(header HeaderMode, orient Orient) *Formatter {
	if header == "" {
		header = HeaderFirstRow
	}
	if orient == "" {
		orient = OrientColumns
	}
	return &Formatter{header: header, orient: orient}
}

// Orient returns the JSON layout this formatter writes.
func (f *Formatter) Orient() Orient {
	return f.orient
}

// Format returns one FormattedTable per raw table, in the same order.
func (f *Formatter) Format(raws []domain.RawTable) ([]domain.FormattedTable, error) {
	out := make([]domain.FormattedTable, 0, len(raws))
	for i, raw := range raws {
		normalized := Normalize(raw, f.header)
		encoded, err := EncodeJSON(normalized, f.orient)
		if err != nil {
			return nil, domain.SerializationError(fmt.Sprintf("failed to serialize table %d", i+1), err)
		}
		out = append(out, domain.FormattedTable{
			Index:      i + 1,
			PageNumber: raw.PageNumber,
			Normalized: normalized,
			JSON:       encoded,
			FileName:   domain.TableFileName(i + 1),
		})
	}
	return out, nil
}
