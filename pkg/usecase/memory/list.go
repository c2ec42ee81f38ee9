package memory

import (
	"context"

	"github.com/alfred-assistant/alfred/pkg/model"
)

// ListMemories returns the last limit free memories in insertion order
func (u *UseCase) ListMemories(ctx context.Context, limit int) ([]*model.MemoryItem, error) {
	store, err := u.Get(ctx)
	if err != nil {
		return nil, err
	}
	return lastN(store.FreeMemories, limit), nil
}

// ListByCategory returns the last limit memories of category
func (u *UseCase) ListByCategory(ctx context.Context, category string, limit int) ([]*model.MemoryItem, error) {
	return u.listGroup(ctx, model.LocationCategory, category, limit)
}

// ListByDomain returns the last limit memories of domain
func (u *UseCase) ListByDomain(ctx context.Context, domain string, limit int) ([]*model.MemoryItem, error) {
	return u.listGroup(ctx, model.LocationDomain, domain, limit)
}

// Categories returns category names in document order
func (u *UseCase) Categories(ctx context.Context) ([]string, error) {
	store, err := u.Get(ctx)
	if err != nil {
		return nil, err
	}
	return store.CategorizedMemories.Keys(), nil
}

// Domains returns domain names in document order
func (u *UseCase) Domains(ctx context.Context) ([]string, error) {
	store, err := u.Get(ctx)
	if err != nil {
		return nil, err
	}
	return store.DomainMemories.Keys(), nil
}

func (u *UseCase) listGroup(ctx context.Context, loc model.Location, group string, limit int) ([]*model.MemoryItem, error) {
	store, err := u.Get(ctx)
	if err != nil {
		return nil, err
	}
	items, _ := store.Groups(loc).Get(normalizeGroup(group))
	return lastN(items, limit), nil
}

func lastN(items []*model.MemoryItem, n int) []*model.MemoryItem {
	if n <= 0 || n > len(items) {
		n = len(items)
	}
	out := make([]*model.MemoryItem, n)
	copy(out, items[len(items)-n:])
	return out
}
