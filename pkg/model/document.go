package model

import (
	"bytes"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// legacyDocument is the object layout written before the field names were
// translated. It is only read, never written.
type legacyDocument struct {
	Profile  map[string]any `json:"profil_utilisateur"`
	Settings struct {
		ActiveProject *string                `json:"projet_actif"`
		Rules         OrderedMap[legacyRule] `json:"souvenirs_rules"`
	} `json:"parametres"`
	Free        []*MemoryItem             `json:"souvenirs"`
	Categorized OrderedMap[[]*MemoryItem] `json:"souvenirs_par_categorie"`
	Domains     OrderedMap[[]*MemoryItem] `json:"souvenirs_par_domaine"`
}

type legacyRule struct {
	Domain   string `json:"domaine"`
	Category string `json:"categorie"`
}

// DecodeStore parses a memory document. A bare JSON list is the legacy format:
// it is wrapped into FreeMemories and migrated is true. Empty input or null
// yields an empty store.
func DecodeStore(data []byte) (store *MemoryStore, migrated bool, err error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return NewMemoryStore(), false, nil
	}

	if data[0] == '[' {
		var items []*MemoryItem
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, false, goerr.Wrap(err, "failed to decode legacy memory list")
		}
		store := NewMemoryStore()
		store.FreeMemories = compactItems(items)
		return store, true, nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, false, goerr.Wrap(err, "memory document is not a JSON object")
	}

	store = &MemoryStore{}
	if err := json.Unmarshal(data, store); err != nil {
		return nil, false, goerr.Wrap(err, "failed to decode memory document")
	}

	if hasLegacyKeys(keys) {
		var legacy legacyDocument
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, false, goerr.Wrap(err, "failed to decode legacy memory document")
		}
		mergeLegacy(store, keys, &legacy)
	}

	store.EnsureSchema()
	return store, false, nil
}

// EncodeStore serializes the whole document
func EncodeStore(store *MemoryStore) ([]byte, error) {
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode memory document")
	}
	return data, nil
}

func hasLegacyKeys(keys map[string]json.RawMessage) bool {
	for _, k := range []string{"profil_utilisateur", "parametres", "souvenirs", "souvenirs_par_categorie", "souvenirs_par_domaine"} {
		if _, ok := keys[k]; ok {
			return true
		}
	}
	return false
}

// mergeLegacy copies legacy sections whose current key is absent
func mergeLegacy(store *MemoryStore, keys map[string]json.RawMessage, legacy *legacyDocument) {
	if _, ok := keys["profile"]; !ok && legacy.Profile != nil {
		store.Profile = legacy.Profile
	}
	if _, ok := keys["settings"]; !ok {
		store.Settings.ActiveProject = legacy.Settings.ActiveProject
		legacy.Settings.Rules.Each(func(kw string, r legacyRule) bool {
			store.Settings.ClassificationRules.Set(kw, Rule{Domain: r.Domain, Category: r.Category})
			return true
		})
	}
	if _, ok := keys["free_memories"]; !ok {
		store.FreeMemories = legacy.Free
	}
	if _, ok := keys["categorized_memories"]; !ok {
		store.CategorizedMemories = legacy.Categorized
	}
	if _, ok := keys["domain_memories"]; !ok {
		store.DomainMemories = legacy.Domains
	}
}
