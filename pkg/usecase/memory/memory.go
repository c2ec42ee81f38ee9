package memory

import (
	"time"

	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/alfred-assistant/alfred/pkg/policy"
	"github.com/alfred-assistant/alfred/pkg/repository"
)

const (
	// DefaultAutosaveInterval is the minimum time between two heartbeat saves
	DefaultAutosaveInterval = 5 * time.Minute

	// DefaultRecallLimit is how many items a recall command shows
	DefaultRecallLimit = 10

	defaultCategory = "général"
)

// UseCase owns the memory document. It loads it lazily, keeps it cached and
// writes the whole document back on every mutation.
type UseCase struct {
	doc       repository.Document
	placement *policy.Engine
	now       func() time.Time

	autosaveInterval time.Duration
	lastAutosave     time.Time

	store      *model.MemoryStore
	similarity *similarity
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

// WithAutosaveInterval sets the heartbeat interval. Zero or negative keeps the default.
func WithAutosaveInterval(d time.Duration) Option {
	return func(uc *UseCase) {
		if d > 0 {
			uc.autosaveInterval = d
		}
	}
}

// WithPlacementPolicy sets the Rego policy consulted for freeform additions
// that no keyword rule captured
func WithPlacementPolicy(p *policy.Engine) Option {
	return func(uc *UseCase) {
		uc.placement = p
	}
}

// WithSimilarityCacheSize sets how many text pairs the ranking keeps memoized
func WithSimilarityCacheSize(n int) Option {
	return func(uc *UseCase) {
		if n > 0 {
			uc.similarity = newSimilarity(n)
		}
	}
}

// New creates a memory UseCase backed by doc
func New(doc repository.Document, opts ...Option) *UseCase {
	uc := &UseCase{
		doc:              doc,
		now:              time.Now,
		autosaveInterval: DefaultAutosaveInterval,
		similarity:       newSimilarity(defaultSimilarityCacheSize),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
