package tables

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/tabular-extractor/internal/domain"
)

const twoTablesJSON = `[
  {"extraction_method":"lattice","page_number":1,"top":10,"left":10,"width":100,"height":40,
   "data":[[{"text":"Name"},{"text":"Age"}],[{"text":"Ann"},{"text":"30"}],[{"text":"Bob"},{"text":"41"}],[{"text":"Cy"},{"text":"27"}]]},
  {"extraction_method":"stream","page_number":3,
   "data":[[{"text":"a"}],[{"text":"b"},{"text":"c"}]]}
]`

func TestTabulaDetector_Args(t *testing.T) {
	d := NewTabulaDetector(TabulaConfig{JarPath: "/opt/tabula.jar"}, nil)
	assert.Equal(t, []string{
		"-Dfile.encoding=UTF8",
		"-Djava.awt.headless=true",
		"-jar", "/opt/tabula.jar",
		"--pages", "all",
		"--guess",
		"--format", "JSON",
		"/tmp/in.pdf",
	}, d.Args("/tmp/in.pdf"))
}

func TestTabulaDetector_Detect(t *testing.T) {
	var gotName string
	var gotArgs []string
	run := func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		gotName, gotArgs = name, args
		return []byte(twoTablesJSON), nil, nil
	}

	d := NewTabulaDetector(TabulaConfig{JarPath: "tabula.jar", Timeout: time.Minute}, run)
	tables, err := d.Detect(context.Background(), "doc.pdf")
	require.NoError(t, err)

	assert.Equal(t, "java", gotName)
	assert.Equal(t, "doc.pdf", gotArgs[len(gotArgs)-1])

	require.Len(t, tables, 2)
	assert.Equal(t, 1, tables[0].PageNumber)
	assert.Equal(t, "lattice", tables[0].ExtractionMethod)
	assert.Equal(t, 4, tables[0].RowCount())
	assert.Equal(t, 2, tables[0].ColCount())
	assert.Equal(t, []string{"Bob", "41"}, tables[0].Cells[2])

	assert.Equal(t, 3, tables[1].PageNumber)
	assert.Equal(t, 2, tables[1].ColCount())
}

func TestTabulaDetector_NoTables(t *testing.T) {
	for _, out := range []string{"", "  \n", "[]"} {
		run := func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
			return []byte(out), nil, nil
		}
		tables, err := NewTabulaDetector(TabulaConfig{}, run).Detect(context.Background(), "doc.pdf")
		require.NoError(t, err, "output %q", out)
		assert.NotNil(t, tables)
		assert.Empty(t, tables)
	}
}

func TestTabulaDetector_Failures(t *testing.T) {
	t.Run("process error carries stderr", func(t *testing.T) {
		run := func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
			return nil, []byte("Error: Unable to access jarfile tabula.jar\nmore detail\n"), errors.New("exit status 1")
		}
		_, err := NewTabulaDetector(TabulaConfig{}, run).Detect(context.Background(), "doc.pdf")
		require.Error(t, err)
		assert.True(t, domain.IsType(err, domain.ErrorTypeTableDetection))
		assert.Contains(t, err.Error(), "Unable to access jarfile")
		assert.NotContains(t, err.Error(), "more detail")
	})

	t.Run("malformed output", func(t *testing.T) {
		run := func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
			return []byte("{not json"), nil, nil
		}
		_, err := NewTabulaDetector(TabulaConfig{}, run).Detect(context.Background(), "doc.pdf")
		require.Error(t, err)
		assert.True(t, domain.IsType(err, domain.ErrorTypeTableDetection))
	})

	t.Run("timeout", func(t *testing.T) {
		run := func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
			<-ctx.Done()
			return nil, nil, ctx.Err()
		}
		d := NewTabulaDetector(TabulaConfig{Timeout: 10 * time.Millisecond}, run)
		_, err := d.Detect(context.Background(), "doc.pdf")
		require.Error(t, err)
		assert.True(t, domain.IsType(err, domain.ErrorTypeTableDetection))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestParseTabulaJSON_Degenerate(t *testing.T) {
	tables, err := ParseTabulaJSON([]byte(`[{"page_number":2,"data":[]},{"page_number":2,"data":[[],[]]}]`))
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, 0, tables[0].RowCount())
	assert.Equal(t, 2, tables[1].RowCount())
	assert.Equal(t, 0, tables[1].ColCount())
}
