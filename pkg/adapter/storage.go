package adapter

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

var ErrObjectNotFound = goerr.New("object not found")

// Storage is the interface for object storage holding the memory document
type Storage interface {
	// Put returns a writer that replaces the object when closed
	Put(ctx context.Context, key string) (io.WriteCloser, error)
	// Get opens the object. It returns ErrObjectNotFound if the object does not exist.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// storageClient implements Storage interface using Cloud Storage
type storageClient struct {
	bucketName string
	client     *storage.Client
}

// NewStorage creates a new Cloud Storage client
func NewStorage(ctx context.Context, bucketName string) (Storage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &storageClient{
		bucketName: bucketName,
		client:     client,
	}, nil
}

func (s *storageClient) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	writer := s.client.Bucket(s.bucketName).Object(key).NewWriter(ctx)
	writer.ContentType = "application/json"
	return writer, nil
}

func (s *storageClient) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	reader, err := s.client.Bucket(s.bucketName).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(ErrObjectNotFound, "no such object", goerr.V("bucket", s.bucketName), goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to read from storage", goerr.V("bucket", s.bucketName), goerr.V("key", key))
	}

	return reader, nil
}
