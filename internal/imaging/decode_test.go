package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for x := 0; x < 8; x++ {
		img.Set(x, 1, color.Black)
	}
	return img
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadAsPNG_Formats(t *testing.T) {
	var jpg, bm, tif bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, testImage(), nil))
	require.NoError(t, bmp.Encode(&bm, testImage()))
	require.NoError(t, tiff.Encode(&tif, testImage(), nil))
	pngData, err := EncodePNG(testImage())
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"scan.png", pngData},
		{"scan.jpg", jpg.Bytes()},
		{"scan.bmp", bm.Bytes()},
		{"scan.tiff", tif.Bytes()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, bounds, err := LoadAsPNG(writeFile(t, tt.name, tt.data))
			require.NoError(t, err)
			assert.Equal(t, 8, bounds.Dx())
			assert.Equal(t, 4, bounds.Dy())

			_, format, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, "png", format)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	_, _, err = Load(writeFile(t, "fake.png", []byte("%PDF-1.4 not an image")))
	assert.Error(t, err)
}
