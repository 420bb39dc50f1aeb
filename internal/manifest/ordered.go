package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OrderedMap is a JSON object decoded with its key declaration order
// preserved. encoding/json's default map[string]interface{} decoding loses
// that order, but spec §4.4's conditional-exports algorithm is explicit that
// condition objects ("exports"/"imports" values keyed by condition name such
// as "node"/"import"/"default") must be walked in the order they were
// declared in the manifest, not in whatever order Go happens to range a map.
// This is decoded with the same token-stream technique
// internal/resolver/tsconfig.go's orderedPaths uses for tsconfig "paths",
// generalized to arbitrary nesting so it applies to every object anywhere in
// a manifest, not just one known field.
type OrderedMap struct {
	keys   []string
	values map[string]interface{}
}

// NewOrderedMap returns an empty OrderedMap ready for Set.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]interface{})}
}

// Set appends a key/value pair; setting an existing key replaces its value
// and keeps its original position. The JSON decoder builds objects with it,
// and tests use it to build fixtures without going through JSON.
func (m *OrderedMap) Set(key string, value interface{}) *OrderedMap {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	return m
}

// Keys returns the object's keys in declaration order.
func (m *OrderedMap) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// Get returns the value for key and whether it was present.
func (m *OrderedMap) Get(key string) (interface{}, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Len reports the number of keys.
func (m *OrderedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

func (m *OrderedMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	val, err := decodeJSONValue(dec, tok)
	if err != nil {
		return err
	}
	obj, ok := val.(*OrderedMap)
	if !ok {
		return fmt.Errorf("manifest: expected a JSON object")
	}
	*m = *obj
	return nil
}

// decodeJSONValue decodes the value starting at tok (already read from dec),
// recursing into objects and arrays so order is preserved at every nesting
// level. Scalars (string, float64, bool, nil) are returned as encoding/json
// would normally produce them.
func decodeJSONValue(dec *json.Decoder, tok json.Token) (interface{}, error) {
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		obj := NewOrderedMap()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := keyTok.(string)
			valTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			val, err := decodeJSONValue(dec, valTok)
			if err != nil {
				return nil, err
			}
			obj.Set(key, val)
		}
		if _, err := dec.Token(); err != nil { // consume '}'
			return nil, err
		}
		return obj, nil
	case '[':
		var arr []interface{}
		for dec.More() {
			valTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			val, err := decodeJSONValue(dec, valTok)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil { // consume ']'
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("manifest: unexpected delimiter %v", delim)
	}
}
