// Package manifest parses and caches package manifests (conventionally
// package.json). The concrete JSON parser is not part of the core (spec §1:
// "the concrete JSON parser used for manifests" is explicitly out of the
// core's scope) and is not pluggable — encoding/json is used directly here,
// the same choice bennypowers-mappa's sibling packagejson package makes for
// its own exports/imports trees.
package manifest

import (
	"encoding/json"
	"path"

	"github.com/pkg/errors"
)

// Manifest is the parsed, immutable manifest for one directory.
type Manifest struct {
	// Dir is the directory this manifest belongs to (the directory
	// containing the manifest file, not necessarily the directory that
	// requested it — see Store.Nearest).
	Dir string

	raw *OrderedMap
}

// ErrParse marks a manifest that failed to parse as JSON. Parse always
// wraps it with the JSON decoder's error message via github.com/pkg/errors
// before surfacing it to a caller; the manifest's path is not included.
var ErrParse = errors.New("manifest: parse error")

// Parse decodes raw manifest bytes belonging to dir. Every JSON object in the
// document, at every nesting depth, is decoded into an *OrderedMap rather
// than a plain map so that exports/imports condition objects keep their
// declaration order (spec §4.4).
func Parse(dir string, data []byte) (*Manifest, error) {
	raw := NewOrderedMap()
	if err := json.Unmarshal(data, raw); err != nil {
		return nil, errors.Wrap(ErrParse, err.Error())
	}
	return &Manifest{Dir: dir, raw: raw}, nil
}

// Name returns the manifest's "name" field, the empty string if absent or
// not a string.
func (m *Manifest) Name() string {
	if m == nil {
		return ""
	}
	v, _ := m.raw.Get("name")
	s, _ := v.(string)
	return s
}

// MainField returns the string value of the named field (e.g. "main",
// "module", "browser") if present.
func (m *Manifest) MainField(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.raw.Get(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Field returns the raw decoded value of an arbitrary top-level field, for
// collaborators that need something other than the typed accessors (e.g. the
// exports/imports subpath-pattern matcher). Object-typed values are
// *OrderedMap, not map[string]interface{}.
func (m *Manifest) Field(name string) (interface{}, bool) {
	if m == nil {
		return nil, false
	}
	return m.raw.Get(name)
}

// AliasMap returns the named field's value as an order-preserving object, the
// form required of alias fields like "browser" (spec §4.3.4).
func (m *Manifest) AliasMap(name string) (*OrderedMap, bool) {
	v, ok := m.Field(name)
	if !ok {
		return nil, false
	}
	obj, ok := v.(*OrderedMap)
	return obj, ok
}

// Join resolves a relative path against this manifest's directory.
func (m *Manifest) Join(rel string) string {
	return path.Join(m.Dir, rel)
}
