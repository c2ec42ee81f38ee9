package repository

import (
	"context"
	"errors"

	"github.com/alfred-assistant/alfred/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

var ErrDocumentNotFound = goerr.New("memory document not found")

// Document persists the single memory JSON document. Write always replaces
// the whole document.
type Document interface {
	// Read returns the raw document. It returns ErrDocumentNotFound if nothing was written yet.
	Read(ctx context.Context) ([]byte, error)
	// Write replaces the document with data
	Write(ctx context.Context, data []byte) error
	// Name describes where the document lives, for logs
	Name() string
}

type fallbackDocument struct {
	primary Document
	local   Document
}

// NewFallback reads primary and falls back to local when primary has no
// document yet. Writes always go to primary. Any other primary failure is
// returned as is.
func NewFallback(primary, local Document) Document {
	return &fallbackDocument{primary: primary, local: local}
}

func (f *fallbackDocument) Read(ctx context.Context) ([]byte, error) {
	data, err := f.primary.Read(ctx)
	if err == nil {
		return data, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	logging.From(ctx).Info("memory document not found, trying local fallback",
		"primary", f.primary.Name(),
		"local", f.local.Name(),
	)
	return f.local.Read(ctx)
}

func (f *fallbackDocument) Write(ctx context.Context, data []byte) error {
	return f.primary.Write(ctx, data)
}

func (f *fallbackDocument) Name() string {
	return f.primary.Name()
}

// IsNotFound reports whether err means no document was written yet
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDocumentNotFound)
}
