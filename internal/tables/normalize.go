package tables

import (
	"fmt"
	"strconv"

	"github.com/spherical/tabular-extractor/internal/domain"
)

// HeaderMode selects how column labels are chosen.
type HeaderMode string

const (
	// HeaderFirstRow promotes the first row to column labels when it has any
	// text, the way a DataFrame is built from tabula output.
	HeaderFirstRow HeaderMode = "first_row"
	// HeaderNone always uses positional labels.
	HeaderNone HeaderMode = "none"
)

// ParseHeaderMode validates a configured header mode.
func ParseHeaderMode(s string) (HeaderMode, error) {
	switch HeaderMode(s) {
	case HeaderFirstRow, HeaderNone:
		return HeaderMode(s), nil
	case "":
		return HeaderFirstRow, nil
	default:
		return "", domain.ConfigError(fmt.Sprintf("unknown header mode %q", s), nil)
	}
}

// Normalize coerces a raw grid into a rectangular table with one label per
// column. Width is the widest row; short rows are padded with "". A table
// without columns has no cells to carry, so it normalizes to no rows.
func Normalize(raw domain.RawTable, mode HeaderMode) domain.NormalizedTable {
	width := raw.ColCount()
	out := domain.NormalizedTable{
		Columns: []string{},
		Rows:    [][]string{},
	}
	if width == 0 {
		return out
	}

	body := raw.Cells
	if mode == HeaderFirstRow && len(body) > 0 && hasText(body[0]) {
		out.Columns = headerLabels(body[0], width)
		body = body[1:]
	} else {
		out.Columns = positionalLabels(width)
	}

	for _, row := range body {
		padded := make([]string, width)
		copy(padded, row)
		out.Rows = append(out.Rows, padded)
	}
	return out
}

func hasText(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return true
		}
	}
	return false
}

func positionalLabels(width int) []string {
	labels := make([]string, width)
	for i := range labels {
		labels[i] = strconv.Itoa(i)
	}
	return labels
}

// headerLabels names empty header cells "Unnamed: <i>" and suffixes
// duplicates with ".<n>" so every label is unique.
func headerLabels(row []string, width int) []string {
	labels := make([]string, width)
	for i := 0; i < width; i++ {
		if i < len(row) && row[i] != "" {
			labels[i] = row[i]
		} else {
			labels[i] = fmt.Sprintf("Unnamed: %d", i)
		}
	}

	seen := make(map[string]bool, width)
	for _, l := range labels {
		seen[l] = false
	}
	counts := make(map[string]int, width)
	for i, l := range labels {
		if !seen[l] {
			seen[l] = true
			continue
		}
		for {
			counts[l]++
			candidate := fmt.Sprintf("%s.%d", l, counts[l])
			if _, taken := seen[candidate]; !taken {
				seen[candidate] = true
				labels[i] = candidate
				break
			}
		}
	}
	return labels
}
