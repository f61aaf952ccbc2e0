package tables

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spherical/tabular-extractor/internal/domain"
)

// Orient selects the JSON layout of a serialized table.
type Orient string

const (
	// OrientColumns writes {"<label>":{"<row>":"<value>",...},...}, the
	// layout of DataFrame.to_json().
	OrientColumns Orient = "columns"
	// OrientSplit writes {"columns":[...],"index":[...],"data":[[...]]}.
	OrientSplit Orient = "split"
)

// ParseOrient validates a configured orient.
func ParseOrient(s string) (Orient, error) {
	switch Orient(s) {
	case OrientColumns, OrientSplit:
		return Orient(s), nil
	case "":
		return OrientColumns, nil
	default:
		return "", domain.ConfigError(fmt.Sprintf("unknown json orient %q", s), nil)
	}
}

type splitTable struct {
	Columns []string   `json:"columns"`
	Index   []int      `json:"index"`
	Data    [][]string `json:"data"`
}

// EncodeJSON serializes a normalized table. Keys follow column and row order
// so equal tables always produce equal bytes, and HTML characters are not
// escaped so cell text appears verbatim.
func EncodeJSON(t domain.NormalizedTable, orient Orient) (string, error) {
	var buf bytes.Buffer

	switch orient {
	case OrientColumns, "":
		buf.WriteByte('{')
		for c, label := range t.Columns {
			if c > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(&buf, label); err != nil {
				return "", err
			}
			buf.WriteString(":{")
			for r, row := range t.Rows {
				if r > 0 {
					buf.WriteByte(',')
				}
				buf.WriteString(`"` + strconv.Itoa(r) + `":`)
				if err := writeString(&buf, row[c]); err != nil {
					return "", err
				}
			}
			buf.WriteByte('}')
		}
		buf.WriteByte('}')
		return buf.String(), nil

	case OrientSplit:
		st := splitTable{Columns: t.Columns, Index: make([]int, len(t.Rows)), Data: t.Rows}
		for i := range st.Index {
			st.Index[i] = i
		}
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(st); err != nil {
			return "", fmt.Errorf("encode table: %w", err)
		}
		return string(bytes.TrimRight(buf.Bytes(), "\n")), nil

	default:
		return "", fmt.Errorf("unknown json orient %q", orient)
	}
}

func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode string: %w", err)
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// DecodeJSON parses a serialized table back into its normalized form.
func DecodeJSON(data string, orient Orient) (domain.NormalizedTable, error) {
	switch orient {
	case OrientColumns, "":
		return decodeColumns(data)
	case OrientSplit:
		var st splitTable
		if err := json.Unmarshal([]byte(data), &st); err != nil {
			return domain.NormalizedTable{}, fmt.Errorf("decode table: %w", err)
		}
		out := domain.NormalizedTable{Columns: st.Columns, Rows: st.Data}
		if out.Columns == nil {
			out.Columns = []string{}
		}
		if out.Rows == nil {
			out.Rows = [][]string{}
		}
		for i, row := range out.Rows {
			if len(row) != len(out.Columns) {
				return domain.NormalizedTable{}, fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(out.Columns))
			}
		}
		return out, nil
	default:
		return domain.NormalizedTable{}, fmt.Errorf("unknown json orient %q", orient)
	}
}

// decodeColumns walks the token stream so column order survives; a Go map
// would lose it.
func decodeColumns(data string) (domain.NormalizedTable, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))

	if err := expectDelim(dec, '{'); err != nil {
		return domain.NormalizedTable{}, err
	}

	var (
		columns []string
		values  []map[int]string
	)
	for dec.More() {
		label, err := readString(dec)
		if err != nil {
			return domain.NormalizedTable{}, err
		}
		if err := expectDelim(dec, '{'); err != nil {
			return domain.NormalizedTable{}, err
		}
		col := map[int]string{}
		for dec.More() {
			key, err := readString(dec)
			if err != nil {
				return domain.NormalizedTable{}, err
			}
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 {
				return domain.NormalizedTable{}, fmt.Errorf("column %q: bad row index %q", label, key)
			}
			val, err := readString(dec)
			if err != nil {
				return domain.NormalizedTable{}, err
			}
			col[idx] = val
		}
		if err := expectDelim(dec, '}'); err != nil {
			return domain.NormalizedTable{}, err
		}
		columns = append(columns, label)
		values = append(values, col)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return domain.NormalizedTable{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return domain.NormalizedTable{}, fmt.Errorf("trailing data after table")
	}

	out := domain.NormalizedTable{Columns: []string{}, Rows: [][]string{}}
	if len(columns) == 0 {
		return out, nil
	}
	out.Columns = columns

	rowCount := len(values[0])
	for c, col := range values {
		if len(col) != rowCount {
			return domain.NormalizedTable{}, fmt.Errorf("column %q has %d rows, want %d", columns[c], len(col), rowCount)
		}
	}
	for r := 0; r < rowCount; r++ {
		row := make([]string, len(columns))
		for c, col := range values {
			v, ok := col[r]
			if !ok {
				return domain.NormalizedTable{}, fmt.Errorf("column %q is missing row %d", columns[c], r)
			}
			row[c] = v
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode table: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("decode table: expected %q, got %v", want, tok)
	}
	return nil
}

func readString(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("decode table: %w", err)
	}
	switch v := tok.(type) {
	case string:
		return v, nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("decode table: expected string, got %v", tok)
	}
}

// PrettyJSON indents a serialized table for previews.
func PrettyJSON(data string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(data), "", "  "); err != nil {
		return data
	}
	return buf.String()
}
