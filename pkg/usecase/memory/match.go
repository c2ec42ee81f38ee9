package memory

import (
	"context"
	"math"
	"strings"

	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/alfred-assistant/alfred/pkg/utils/logging"
)

// Match locates one item in the store
type Match struct {
	Location model.Location
	Group    string
	Index    int
	Item     *model.MemoryItem
}

// Pending converts the match into a deletion proposal holding a snapshot of the item
func (m *Match) Pending() *model.PendingDeletion {
	p := &model.PendingDeletion{
		Location: m.Location,
		Index:    m.Index,
		Item:     *m.Item,
	}
	switch m.Location {
	case model.LocationCategory:
		p.Category = m.Group
	case model.LocationDomain:
		p.Domain = m.Group
	}
	return p
}

// FindFirstMatch walks free memories, then categories, then domains, each in
// document order, and returns the first item accepted by pred. When several
// items qualify the others are ignored: callers get no disambiguation.
func FindFirstMatch(store *model.MemoryStore, pred func(*model.MemoryItem) bool) *Match {
	for i, it := range store.FreeMemories {
		if pred(it) {
			return &Match{Location: model.LocationFree, Index: i, Item: it}
		}
	}

	for _, loc := range []model.Location{model.LocationCategory, model.LocationDomain} {
		var found *Match
		store.Groups(loc).Each(func(group string, items []*model.MemoryItem) bool {
			for i, it := range items {
				if pred(it) {
					found = &Match{Location: loc, Group: group, Index: i, Item: it}
					return false
				}
			}
			return true
		})
		if found != nil {
			return found
		}
	}

	return nil
}

// ContainsText matches items whose text contains s, ignoring case
func ContainsText(s string) func(*model.MemoryItem) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(it *model.MemoryItem) bool {
		return s != "" && strings.Contains(strings.ToLower(it.Text), s)
	}
}

// FindMemoryMatch proposes deletion of the first item containing text. It
// returns nil when nothing matches.
func (u *UseCase) FindMemoryMatch(ctx context.Context, text string) (*model.PendingDeletion, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	store, err := u.Get(ctx)
	if err != nil {
		return nil, err
	}

	m := FindFirstMatch(store, ContainsText(text))
	if m == nil {
		return nil, nil
	}
	return m.Pending(), nil
}

// ConfirmDelete applies a proposed deletion. The item at the recorded index
// must still be the one in the snapshot; otherwise nothing is removed and an
// info message says so.
func (u *UseCase) ConfirmDelete(ctx context.Context, p *model.PendingDeletion) (*model.Message, error) {
	if p == nil || p.Validate() != nil {
		return &model.Message{Text: "No deletion performed.", Subtype: model.SubtypeInfo}, nil
	}

	store, err := u.Get(ctx)
	if err != nil {
		return nil, err
	}

	var items []*model.MemoryItem
	if p.Location == model.LocationFree {
		items = store.FreeMemories
	} else {
		items, _ = store.Groups(p.Location).Get(p.Group())
	}

	if p.Index >= len(items) || items[p.Index].Key() != p.Item.Key() {
		return &model.Message{Text: "That memory no longer exists.", Subtype: model.SubtypeInfo}, nil
	}

	items = append(items[:p.Index:p.Index], items[p.Index+1:]...)
	if p.Location == model.LocationFree {
		store.FreeMemories = items
	} else {
		store.Groups(p.Location).Set(p.Group(), items)
	}

	if err := u.write(ctx); err != nil {
		return nil, err
	}

	logging.From(ctx).Info("memory deleted", "tier", p.Location, "group", p.Group())
	switch p.Location {
	case model.LocationCategory:
		return model.NewMessage(model.SubtypeSuccess, "🧽 Memory erased from category **%s**.", p.Category), nil
	case model.LocationDomain:
		return model.NewMessage(model.SubtypeSuccess, "🧽 Memory erased from domain **%s**.", p.Domain), nil
	default:
		return &model.Message{Text: "🧽 Memory erased.", Subtype: model.SubtypeSuccess}, nil
	}
}

// SetImportance sets the importance of the first item containing text,
// clamped to [0, 1]
func (u *UseCase) SetImportance(ctx context.Context, text string, value float64) (*model.Message, error) {
	v := clamp(value, 0, 1)

	store, err := u.Get(ctx)
	if err != nil {
		return nil, err
	}

	m := FindFirstMatch(store, ContainsText(text))
	if m == nil {
		return &model.Message{Text: "Memory not found.", Subtype: model.SubtypeInfo}, nil
	}
	m.Item.Importance = v
	if err := u.write(ctx); err != nil {
		return nil, err
	}
	return model.NewMessage(model.SubtypeSuccess, "Importance set to %g.", v), nil
}

// Vote moves the feedback of the first item containing text by 0.1 up or
// down, clamped to [-1, 1]
func (u *UseCase) Vote(ctx context.Context, text string, up bool) (*model.Message, error) {
	delta := 0.1
	if !up {
		delta = -0.1
	}

	store, err := u.Get(ctx)
	if err != nil {
		return nil, err
	}

	m := FindFirstMatch(store, ContainsText(text))
	if m == nil {
		return &model.Message{Text: "Memory not found.", Subtype: model.SubtypeInfo}, nil
	}
	m.Item.Feedback = clamp(math.Round((m.Item.Feedback+delta)*100)/100, -1, 1)
	if err := u.write(ctx); err != nil {
		return nil, err
	}
	return model.NewMessage(model.SubtypeSuccess, "Feedback applied. Score fb=%.2f", m.Item.Feedback), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ItemKeys resolves each text to the key of the first item containing it, for
// SearchOptions.Pins and Masks. Texts matching nothing are skipped.
func (u *UseCase) ItemKeys(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	store, err := u.Get(ctx)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, text := range texts {
		if m := FindFirstMatch(store, ContainsText(text)); m != nil {
			keys = append(keys, m.Item.Key())
		}
	}
	return keys, nil
}
