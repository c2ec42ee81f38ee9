package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alfred-assistant/alfred/pkg/model"
)

const (
	DefaultMinRatio = 0.25
	DefaultTopK     = 5

	duplicateRatio = 0.90

	weightDomain     = 0.35
	weightCategory   = 0.20
	weightRecency    = 0.15
	weightImportance = 0.25
	weightFeedback   = 0.10
	pinBonus         = 1.5

	recencyHorizonDays = 365
)

// SearchOptions controls Search
type SearchOptions struct {
	// TopK is the maximum number of results. Ignored when DynamicLimit is set.
	TopK int
	// DynamicLimit picks TopK from the query length: 3, 5 or 7
	DynamicLimit bool
	// MinRatio is the similarity cutoff. Zero means DefaultMinRatio, a
	// negative value disables the cutoff.
	MinRatio float64

	// AllowedDomains and AllowedCategories restrict the pool when non-empty.
	// Free memories are always candidates.
	AllowedDomains    []string
	AllowedCategories []string

	// Pins and Masks hold item keys. Masked items never show, pinned ones
	// skip the cutoff and get a large bonus.
	Pins  []string
	Masks []string
}

// RankedMemory is a search hit
type RankedMemory struct {
	model.MemoryItem
	Location model.Location
	Group    string
	Key      string
	Score    float64
	Pinned   bool
}

type candidate struct {
	hit   *RankedMemory
	score float64
}

// Search ranks memories of every tier against query. See the weights above:
// similarity, domain and category affinity, recency, importance and
// feedback add up; near-duplicates of a better hit are dropped.
func (u *UseCase) Search(ctx context.Context, query string, opts SearchOptions) ([]*RankedMemory, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}

	store, err := u.Get(ctx)
	if err != nil {
		return nil, err
	}

	topK := opts.TopK
	if opts.DynamicLimit {
		topK = DynamicLimit(query)
	} else if topK <= 0 {
		topK = DefaultTopK
	}

	minRatio := opts.MinRatio
	if minRatio == 0 {
		minRatio = DefaultMinRatio
	}

	pins := toSet(opts.Pins)
	masks := toSet(opts.Masks)
	allowedDomains := toSet(opts.AllowedDomains)
	allowedCategories := toSet(opts.AllowedCategories)
	activeDomain := u.activeDomain(store, q)
	now := u.now()

	var candidates []*candidate
	consider := func(loc model.Location, group string, it *model.MemoryItem) {
		text := strings.TrimSpace(it.Text)
		if text == "" {
			return
		}
		key := it.Key()
		if masks[key] {
			return
		}
		pinned := pins[key]

		sim := u.similarity.Ratio(q, strings.ToLower(text))
		if sim < minRatio && !pinned {
			return
		}

		score := sim +
			weightRecency*recency(it, now) +
			weightImportance*it.Importance +
			weightFeedback*it.Feedback
		if loc == model.LocationDomain && group == activeDomain {
			score += weightDomain
		}
		if loc == model.LocationCategory && group != "" && strings.Contains(q, group) {
			score += weightCategory
		}
		if pinned {
			score += pinBonus
		}

		candidates = append(candidates, &candidate{
			score: score,
			hit: &RankedMemory{
				MemoryItem: *it,
				Location:   loc,
				Group:      group,
				Key:        key,
				Score:      math.Round(score*10000) / 10000,
				Pinned:     pinned,
			},
		})
	}

	for _, it := range store.FreeMemories {
		consider(model.LocationFree, "", it)
	}
	store.CategorizedMemories.Each(func(cat string, items []*model.MemoryItem) bool {
		if len(allowedCategories) > 0 && !allowedCategories[cat] {
			return true
		}
		for _, it := range items {
			consider(model.LocationCategory, cat, it)
		}
		return true
	})
	store.DomainMemories.Each(func(dom string, items []*model.MemoryItem) bool {
		if len(allowedDomains) > 0 && !allowedDomains[dom] {
			return true
		}
		for _, it := range items {
			consider(model.LocationDomain, dom, it)
		}
		return true
	})

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	// greedy: a candidate survives only if it is not a near copy of a better one
	var result []*RankedMemory
	for _, c := range candidates {
		duplicate := false
		for _, kept := range result {
			if u.similarity.Ratio(c.hit.Text, kept.Text) >= duplicateRatio {
				duplicate = true
				break
			}
		}
		if !duplicate {
			result = append(result, c.hit)
		}
		if len(result) >= topK {
			break
		}
	}

	return result, nil
}

// DynamicLimit returns 3 for queries under 120 characters, 5 under 300, else 7
func DynamicLimit(query string) int {
	switch n := utf8.RuneCountInString(query); {
	case n < 120:
		return 3
	case n < 300:
		return 5
	default:
		return 7
	}
}

// activeDomain is the active project if set, else the first domain named in q
func (u *UseCase) activeDomain(store *model.MemoryStore, q string) string {
	if p := normalizeGroup(store.ActiveProjectName()); p != "" {
		return p
	}
	for _, dom := range store.DomainMemories.Keys() {
		if dom != "" && strings.Contains(q, dom) {
			return dom
		}
	}
	return ""
}

// recency is 1 for items from today or the future and decays linearly to 0
// over a year. Unreadable timestamps score 0.
func recency(it *model.MemoryItem, now time.Time) float64 {
	created, err := it.CreatedAt()
	if err != nil {
		return 0
	}
	days := int(math.Floor(now.Sub(created).Hours() / 24))
	if days <= 0 {
		return 1
	}
	return math.Max(0, 1-float64(min(days, recencyHorizonDays))/recencyHorizonDays)
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
