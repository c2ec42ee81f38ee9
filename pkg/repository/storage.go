package repository

import (
	"context"
	"errors"
	"io"

	"github.com/alfred-assistant/alfred/pkg/adapter"
	"github.com/m-mizutani/goerr/v2"
)

type storageDocument struct {
	storage adapter.Storage
	key     string
}

// NewStorage keeps the document as one Cloud Storage object
func NewStorage(storage adapter.Storage, key string) Document {
	return &storageDocument{storage: storage, key: key}
}

func (s *storageDocument) Read(ctx context.Context) ([]byte, error) {
	reader, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, adapter.ErrObjectNotFound) {
			return nil, goerr.Wrap(ErrDocumentNotFound, "no memory object", goerr.V("key", s.key))
		}
		return nil, goerr.Wrap(err, "failed to get memory object", goerr.V("key", s.key))
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read memory object", goerr.V("key", s.key))
	}
	return data, nil
}

func (s *storageDocument) Write(ctx context.Context, data []byte) error {
	writer, err := s.storage.Put(ctx, s.key)
	if err != nil {
		return goerr.Wrap(err, "failed to create storage writer", goerr.V("key", s.key))
	}

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return goerr.Wrap(err, "failed to write memory object", goerr.V("key", s.key))
	}

	if err := writer.Close(); err != nil {
		return goerr.Wrap(err, "failed to close storage writer", goerr.V("key", s.key))
	}
	return nil
}

func (s *storageDocument) Name() string {
	return "storage://" + s.key
}
