package model

import (
	"bytes"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// OrderedMap is a string-keyed map that remembers insertion order. JSON
// encoding and decoding keep the order of the document, so iteration over
// categories, domains and rules is stable across save and load.
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

// NewOrderedMap returns an empty OrderedMap
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{values: make(map[string]V)}
}

// Len returns the number of keys
func (m *OrderedMap[V]) Len() int {
	return len(m.keys)
}

// Keys returns keys in insertion order. The returned slice is a copy.
func (m *OrderedMap[V]) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Get returns the value stored for key
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set stores value for key. An existing key keeps its position.
func (m *OrderedMap[V]) Set(key string, value V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Delete removes key and reports whether it existed
func (m *OrderedMap[V]) Delete(key string) bool {
	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

// Each calls fn for every entry in insertion order until fn returns false
func (m *OrderedMap[V]) Each(fn func(key string, value V) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

func (m OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to marshal key", goerr.V("key", k))
		}
		value, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, goerr.Wrap(err, "failed to marshal value", goerr.V("key", k))
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML emits a mapping node in insertion order
func (m OrderedMap[V]) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range m.keys {
		var key, value yaml.Node
		if err := key.Encode(k); err != nil {
			return nil, goerr.Wrap(err, "failed to encode key", goerr.V("key", k))
		}
		if err := value.Encode(m.values[k]); err != nil {
			return nil, goerr.Wrap(err, "failed to encode value", goerr.V("key", k))
		}
		node.Content = append(node.Content, &key, &value)
	}
	return node, nil
}

func (m *OrderedMap[V]) UnmarshalJSON(data []byte) error {
	m.keys = nil
	m.values = make(map[string]V)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return goerr.Wrap(err, "failed to read object start")
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return goerr.New("expected JSON object", goerr.V("token", tok))
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return goerr.Wrap(err, "failed to read object key")
		}
		key, ok := tok.(string)
		if !ok {
			return goerr.New("object key is not a string", goerr.V("token", tok))
		}

		var value V
		if err := dec.Decode(&value); err != nil {
			return goerr.Wrap(err, "failed to decode object value", goerr.V("key", key))
		}
		m.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return goerr.Wrap(err, "failed to read object end")
	}
	return nil
}
