package resolver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/shepherdwind/goresolver/internal/fsprobe"
)

// orderedPaths preserves the declaration order of a typed-config manifest's
// "paths" table, since encoding/json's map decoding does not (spec §4.5:
// "for each paths key ... test against the raw request target" implies
// declaration order matters). Unlike exports/imports subpath matching
// (matchSubpath), which picks the most specific key, patterns here are
// tried in declaration order.
type orderedPaths struct {
	keys   []string
	values map[string][]string
}

func (o *orderedPaths) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return fmt.Errorf("tsconfig: paths must be an object")
	}
	o.values = make(map[string][]string)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var vals []string
		if err := dec.Decode(&vals); err != nil {
			return err
		}
		o.keys = append(o.keys, key)
		o.values[key] = vals
	}
	_, err = dec.Token()
	return err
}

type tsconfigFile struct {
	CompilerOptions struct {
		BaseURL string       `json:"baseUrl"`
		Paths   orderedPaths `json:"paths"`
	} `json:"compilerOptions"`
}

// tsconfigPaths is the loaded, computed form of a typed-config manifest's
// path-mapping table (spec §4.5).
type tsconfigPaths struct {
	baseURL string
	order   []string
	paths   map[string][]string
	matcher PatternMatcher
}

// loadTSConfigPaths loads and parses location, computing baseUrl relative to
// the manifest's own directory.
func loadTSConfigPaths(fs *fsprobe.Store, location string, matcher PatternMatcher) (*tsconfigPaths, error) {
	kind, err := fs.Entry(location)
	if err != nil {
		return nil, err
	}
	if kind != fsprobe.File {
		return nil, newError(Io, location, "", "tsconfig manifest not found")
	}
	data, err := fs.ReadFile(location)
	if err != nil {
		return nil, err
	}
	var file tsconfigFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, newError(ManifestParse, location, "", err.Error())
	}

	dir := path.Dir(location)
	baseURL := dir
	if file.CompilerOptions.BaseURL != "" {
		baseURL = path.Join(dir, file.CompilerOptions.BaseURL)
	}

	return &tsconfigPaths{
		baseURL: baseURL,
		order:   file.CompilerOptions.Paths.keys,
		paths:   file.CompilerOptions.Paths.values,
		matcher: matcher,
	}, nil
}

// resolveWithTSConfig is the pre-pass spec §4.5 describes: for a Normal-kind
// request, test it against each paths key in declaration order; on a match,
// try each replacement (in order) through the normal pipeline, rooted at
// baseUrl. The first replacement that resolves wins; otherwise resolution
// falls through to the unmodified pipeline.
func (r *Resolver) resolveWithTSConfig(info Info, ctx *Context) State {
	if info.Req.Kind == Normal {
		for _, pattern := range r.tsPaths.order {
			middle, ok := r.tsPaths.matcher.MatchPathPattern(pattern, info.Req.Target)
			if !ok {
				continue
			}
			for _, replacement := range r.tsPaths.paths[pattern] {
				target := substituteStar(replacement, middle)
				if !strings.HasPrefix(target, "./") && !strings.HasPrefix(target, "../") && !strings.HasPrefix(target, "/") {
					target = "./" + target
				}
				candidate := Info{Base: r.tsPaths.baseURL, Req: info.Req.WithTarget(target)}
				state := r._resolve(candidate, ctx)
				if state.Status == StatusSuccess {
					return state
				}
			}
		}
	}
	return r._resolve(info, ctx)
}

func substituteStar(s, middle string) string {
	if idx := strings.IndexByte(s, '*'); idx != -1 {
		return s[:idx] + middle + s[idx+1:]
	}
	return s
}
