package memory

import (
	"context"

	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/alfred-assistant/alfred/pkg/repository"
	"github.com/alfred-assistant/alfred/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Load reads the document and replaces the cache. A missing document yields an
// empty store. A legacy list document is migrated and written back at once.
func (u *UseCase) Load(ctx context.Context) (*model.MemoryStore, error) {
	data, err := u.doc.Read(ctx)
	if err != nil && !repository.IsNotFound(err) {
		return nil, goerr.Wrap(err, "failed to read memory document", goerr.V("document", u.doc.Name()))
	}

	store, migrated, err := model.DecodeStore(data)
	if err != nil {
		return nil, goerr.Wrap(err, "malformed memory document", goerr.V("document", u.doc.Name()))
	}
	u.store = store

	if migrated {
		if err := u.write(ctx); err != nil {
			return nil, goerr.Wrap(err, "failed to persist migrated memory document")
		}
		logging.From(ctx).Info("legacy memory document migrated",
			"document", u.doc.Name(),
			"items", len(store.FreeMemories),
		)
	}

	return u.store, nil
}

// Get returns the cached store, loading it on first use. Schema defaults are
// re-applied on every call.
func (u *UseCase) Get(ctx context.Context) (*model.MemoryStore, error) {
	if u.store == nil {
		return u.Load(ctx)
	}
	u.store.EnsureSchema()
	return u.store, nil
}

// Save writes the whole document. A non-nil store replaces the cache first.
func (u *UseCase) Save(ctx context.Context, store *model.MemoryStore) error {
	if store != nil {
		u.store = store
	}
	if u.store == nil {
		u.store = model.NewMemoryStore()
	}
	u.store.EnsureSchema()
	return u.write(ctx)
}

// AutosaveHeartbeat saves when the interval has elapsed since the last
// successful heartbeat save. It reports whether a save happened.
func (u *UseCase) AutosaveHeartbeat(ctx context.Context) (bool, error) {
	now := u.now()
	if !u.lastAutosave.IsZero() && now.Sub(u.lastAutosave) < u.autosaveInterval {
		return false, nil
	}

	store, err := u.Get(ctx)
	if err != nil {
		return false, err
	}
	if err := u.Save(ctx, store); err != nil {
		return false, goerr.Wrap(err, "autosave failed")
	}

	u.lastAutosave = now
	logging.From(ctx).Info("autosave performed", "document", u.doc.Name())
	return true, nil
}

func (u *UseCase) write(ctx context.Context) error {
	data, err := model.EncodeStore(u.store)
	if err != nil {
		return err
	}
	if err := u.doc.Write(ctx, data); err != nil {
		return goerr.Wrap(err, "failed to write memory document", goerr.V("document", u.doc.Name()))
	}
	return nil
}
