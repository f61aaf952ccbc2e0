package upload

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/google/uuid"
)

// TempFile is a write-once temporary file owned by one pipeline run.
// Release removes it and is safe to call more than once.
type TempFile struct {
	Path string

	once sync.Once
	err  error
}

// Acquire writes content to a new file in dir (os.TempDir when empty) and
// returns a handle whose Release deletes it. ext is appended so that external
// tools which look at the suffix see the right type.
func Acquire(dir, ext string, content []byte) (*TempFile, error) {
	if dir == "" {
		dir = os.TempDir()
	}

	pattern := "upload-" + uuid.NewString() + "-*"
	if ext != "" {
		pattern += "." + ext
	}

	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	tf := &TempFile{Path: f.Name()}

	if _, err := f.Write(content); err != nil {
		f.Close()
		tf.Release()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		tf.Release()
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	return tf, nil
}

// Release deletes the file. A file that is already gone is not an error.
func (t *TempFile) Release() error {
	if t == nil {
		return nil
	}
	t.once.Do(func() {
		if err := os.Remove(t.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			t.err = fmt.Errorf("remove temp file: %w", err)
		}
	})
	return t.err
}
