package memory

import (
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const defaultSimilarityCacheSize = 4096

// similarity computes the matching-characters ratio 2*M/T of two strings,
// where M is the number of runes the diff keeps equal and T the total rune
// count. Results are memoized because ranking compares the same pairs again
// during deduplication.
type similarity struct {
	dmp   *diffmatchpatch.DiffMatchPatch
	cache *lru.Cache[[2]string, float64]
}

func newSimilarity(size int) *similarity {
	s := &similarity{dmp: diffmatchpatch.New()}
	if cache, err := lru.New[[2]string, float64](size); err == nil {
		s.cache = cache
	}
	return s
}

// Ratio returns a value in [0, 1]. Two empty strings are identical.
func (s *similarity) Ratio(a, b string) float64 {
	key := [2]string{a, b}
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v
		}
	}

	v := s.ratio(a, b)
	if s.cache != nil {
		s.cache.Add(key, v)
	}
	return v
}

func (s *similarity) ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1.0
	}
	if a == b {
		return 1.0
	}

	matched := 0
	for _, d := range s.dmp.DiffMain(a, b, false) {
		if d.Type == diffmatchpatch.DiffEqual {
			matched += utf8.RuneCountInString(d.Text)
		}
	}
	return 2.0 * float64(matched) / float64(total)
}
