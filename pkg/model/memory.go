package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const (
	// SchemaVersion is the document version written by this build
	SchemaVersion = 2

	// TimestampFormat is the second-precision layout of MemoryItem.Timestamp
	TimestampFormat = "2006-01-02 15:04:05"
)

var (
	ErrEmptyText       = goerr.New("memory text is empty")
	ErrInvalidLocation = goerr.New("invalid memory location")
)

// MemoryItem is a single remembered fact
type MemoryItem struct {
	Timestamp  string  `json:"timestamp" yaml:"timestamp"`
	Text       string  `json:"text" yaml:"text"`
	Importance float64 `json:"importance" yaml:"importance"`
	Feedback   float64 `json:"feedback" yaml:"feedback"`
}

// NewMemoryItem creates an item stamped with now. Text is trimmed.
func NewMemoryItem(text string, now time.Time) (*MemoryItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	return &MemoryItem{
		Timestamp: now.Format(TimestampFormat),
		Text:      text,
	}, nil
}

// Key identifies the item in pin and mask sets and for stale checks
func (x *MemoryItem) Key() string {
	return x.Timestamp + "|" + x.Text
}

// CreatedAt parses Timestamp in the local time zone
func (x *MemoryItem) CreatedAt() (time.Time, error) {
	t, err := time.ParseInLocation(TimestampFormat, x.Timestamp, time.Local)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "invalid memory timestamp", goerr.V("timestamp", x.Timestamp))
	}
	return t, nil
}

// UnmarshalJSON accepts the current keys and the legacy ones (date, texte, fb).
// A bare JSON string is read as an item without timestamp.
func (x *MemoryItem) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return goerr.Wrap(err, "failed to decode memory text")
		}
		*x = MemoryItem{Text: text}
		return nil
	}

	var raw struct {
		Timestamp  string   `json:"timestamp"`
		Date       string   `json:"date"`
		Text       string   `json:"text"`
		Texte      string   `json:"texte"`
		Importance float64  `json:"importance"`
		Feedback   *float64 `json:"feedback"`
		FB         float64  `json:"fb"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return goerr.Wrap(err, "failed to decode memory item")
	}

	*x = MemoryItem{
		Timestamp:  firstNonEmpty(raw.Timestamp, raw.Date),
		Text:       firstNonEmpty(raw.Text, raw.Texte),
		Importance: raw.Importance,
		Feedback:   raw.FB,
	}
	if raw.Feedback != nil {
		x.Feedback = *raw.Feedback
	}
	return nil
}

// Rule redirects a freeform memory whose text contains the rule keyword
type Rule struct {
	Domain   string `json:"domain,omitempty" yaml:"domain,omitempty"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}

// Settings holds user settings stored with the memories
type Settings struct {
	ActiveProject       *string          `json:"active_project" yaml:"active_project"`
	ClassificationRules OrderedMap[Rule] `json:"classification_rules" yaml:"classification_rules"`
}

// MemoryStore is the persisted memory document
type MemoryStore struct {
	SchemaVersion       int                       `json:"schema_version" yaml:"schema_version"`
	Profile             map[string]any            `json:"profile" yaml:"profile"`
	Settings            Settings                  `json:"settings" yaml:"settings"`
	FreeMemories        []*MemoryItem             `json:"free_memories" yaml:"free_memories"`
	CategorizedMemories OrderedMap[[]*MemoryItem] `json:"categorized_memories" yaml:"categorized_memories"`
	DomainMemories      OrderedMap[[]*MemoryItem] `json:"domain_memories" yaml:"domain_memories"`
}

// NewMemoryStore returns an empty store at the current schema version
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{}
	m.EnsureSchema()
	return m
}

// EnsureSchema fills missing parts with defaults. It only adds, and calling it
// again on its own output changes nothing.
func (m *MemoryStore) EnsureSchema() {
	if m.SchemaVersion < SchemaVersion {
		m.SchemaVersion = SchemaVersion
	}
	if m.Profile == nil {
		m.Profile = map[string]any{}
	}
	if m.Settings.ClassificationRules.values == nil {
		m.Settings.ClassificationRules.values = make(map[string]Rule)
	}
	m.FreeMemories = compactItems(m.FreeMemories)
	ensureGroups(&m.CategorizedMemories)
	ensureGroups(&m.DomainMemories)
}

// Count returns the number of items across all tiers
func (m *MemoryStore) Count() int {
	n := len(m.FreeMemories)
	m.CategorizedMemories.Each(func(_ string, items []*MemoryItem) bool {
		n += len(items)
		return true
	})
	m.DomainMemories.Each(func(_ string, items []*MemoryItem) bool {
		n += len(items)
		return true
	})
	return n
}

// ActiveProjectName returns the active project or an empty string
func (m *MemoryStore) ActiveProjectName() string {
	if m.Settings.ActiveProject == nil {
		return ""
	}
	return *m.Settings.ActiveProject
}

// Groups returns the ordered group map of loc. It panics on LocationFree,
// which has no groups.
func (m *MemoryStore) Groups(loc Location) *OrderedMap[[]*MemoryItem] {
	switch loc {
	case LocationCategory:
		return &m.CategorizedMemories
	case LocationDomain:
		return &m.DomainMemories
	default:
		panic("no groups for location " + string(loc))
	}
}

func ensureGroups(groups *OrderedMap[[]*MemoryItem]) {
	if groups.values == nil {
		groups.values = make(map[string][]*MemoryItem)
	}
	for _, k := range groups.keys {
		groups.values[k] = compactItems(groups.values[k])
	}
}

func compactItems(items []*MemoryItem) []*MemoryItem {
	out := make([]*MemoryItem, 0, len(items))
	for _, it := range items {
		if it != nil {
			out = append(out, it)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
