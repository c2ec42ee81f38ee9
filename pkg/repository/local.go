package repository

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
)

type localDocument struct {
	path string
}

// NewLocal stores the document in a file on the local disk
func NewLocal(path string) Document {
	return &localDocument{path: path}
}

func (l *localDocument) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrDocumentNotFound, "no local memory file", goerr.V("path", l.path))
		}
		return nil, goerr.Wrap(err, "failed to read local memory file", goerr.V("path", l.path))
	}
	return data, nil
}

// Write goes through a temporary file so a crash never leaves half a document
func (l *localDocument) Write(ctx context.Context, data []byte) error {
	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, ".memory-*.json")
	if err != nil {
		return goerr.Wrap(err, "failed to create temporary memory file", goerr.V("dir", dir))
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return goerr.Wrap(err, "failed to write temporary memory file", goerr.V("path", tmp.Name()))
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close temporary memory file", goerr.V("path", tmp.Name()))
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return goerr.Wrap(err, "failed to replace local memory file", goerr.V("path", l.path))
	}
	return nil
}

func (l *localDocument) Name() string {
	return "file://" + l.path
}
