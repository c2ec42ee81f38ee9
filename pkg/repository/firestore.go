package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	firestoreDocumentID = "memory"
)

// firestoreRecord wraps the JSON text. The document keeps its raw JSON so the
// layout stays identical across backends.
type firestoreRecord struct {
	Body      string    `firestore:"body"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type Firestore struct {
	client     *firestore.Client
	collection string
}

// NewFirestore keeps the document in <collection>/memory
func NewFirestore(ctx context.Context, projectID, databaseID, collection string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID),
			goerr.V("database", databaseID),
		)
	}

	return &Firestore{
		client:     client,
		collection: collection,
	}, nil
}

func (f *Firestore) Read(ctx context.Context) ([]byte, error) {
	snap, err := f.client.Collection(f.collection).Doc(firestoreDocumentID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrDocumentNotFound, "no memory document in firestore", goerr.V("collection", f.collection))
		}
		return nil, goerr.Wrap(err, "failed to get memory document", goerr.V("collection", f.collection))
	}

	var rec firestoreRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, goerr.Wrap(err, "failed to decode memory record", goerr.V("collection", f.collection))
	}
	return []byte(rec.Body), nil
}

func (f *Firestore) Write(ctx context.Context, data []byte) error {
	rec := firestoreRecord{
		Body:      string(data),
		UpdatedAt: time.Now(),
	}
	if _, err := f.client.Collection(f.collection).Doc(firestoreDocumentID).Set(ctx, rec); err != nil {
		return goerr.Wrap(err, "failed to put memory document", goerr.V("collection", f.collection))
	}
	return nil
}

func (f *Firestore) Name() string {
	return "firestore://" + f.collection + "/" + firestoreDocumentID
}

// Close releases the client
func (f *Firestore) Close() error {
	return f.client.Close()
}
