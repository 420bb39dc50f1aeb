package resolver

import (
	"strings"

	"github.com/shepherdwind/goresolver/internal/manifest"
)

// subpathCandidate is a single "*"-pattern key from an exports/imports map
// that matched a lookup key.
type subpathCandidate struct {
	key, prefix, suffix string
}

func isBetterCandidate(a, b subpathCandidate) bool {
	if len(a.prefix) != len(b.prefix) {
		return len(a.prefix) > len(b.prefix)
	}
	if len(a.suffix) != len(b.suffix) {
		return len(a.suffix) > len(b.suffix)
	}
	return a.key < b.key
}

// subpathMatch is the result of matching a key against a subpath map (spec
// §4.4 "Subpath-pattern matching").
type subpathMatch struct {
	found     bool
	value     interface{}
	middle    string
	isPattern bool
}

// matchSubpath implements exact-match-first, then longest-prefix/longest-
// suffix/lexicographic pattern matching against a single-"*" key set. Key
// order doesn't affect the outcome here — unlike condition objects (see
// evaluateSubpathValue), subpath keys are picked by specificity, not
// declaration order — but the map comes in as an *manifest.OrderedMap because
// every object anywhere in a parsed manifest is one.
func matchSubpath(m *manifest.OrderedMap, key string) subpathMatch {
	if v, ok := m.Get(key); ok {
		return subpathMatch{found: true, value: v}
	}

	var best *subpathCandidate
	for _, k := range m.Keys() {
		if strings.Count(k, "*") != 1 {
			continue
		}
		star := strings.IndexByte(k, '*')
		prefix, suffix := k[:star], k[star+1:]
		if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, suffix) {
			continue
		}
		if len(key) < len(prefix)+len(suffix) {
			continue
		}
		c := subpathCandidate{key: k, prefix: prefix, suffix: suffix}
		if best == nil || isBetterCandidate(c, *best) {
			cc := c
			best = &cc
		}
	}
	if best == nil {
		return subpathMatch{}
	}
	middle := key[len(best.prefix) : len(key)-len(best.suffix)]
	value, _ := m.Get(best.key)
	return subpathMatch{found: true, value: value, middle: middle, isPattern: true}
}

// subpathOutcome is the verdict of evaluating a matched value against the
// resolver's configured conditions.
type subpathOutcome uint8

const (
	outcomeNone subpathOutcome = iota
	outcomeOK
	outcomeInvalid
)

// conditionIsActive reports whether cond is one the resolver should honor:
// either it's in the caller-configured condition list, or it's "default",
// which every resolver implicitly supports as the final fallback a package
// author can declare (spec §4.4: "the first condition that is either in the
// resolver's configured condition set or equals 'default'").
func conditionIsActive(cond string, conditions []string) bool {
	if cond == "default" {
		return true
	}
	for _, c := range conditions {
		if c == cond {
			return true
		}
	}
	return false
}

// evaluateSubpathValue walks a matched exports/imports value — string,
// ordered condition object, or array of fallbacks — per spec §4.4,
// substituting the pattern middle into string leaves.
//
// A condition object's keys are walked in the manifest's own declaration
// order (spec §4.4), not in the order the resolver's Conditions option lists
// them: Conditions is a set of which condition names are active, and
// declaration order in the manifest decides which active condition wins when
// more than one is present. The first key that is active and whose sub-value
// resolves wins; an active key whose sub-value is invalid stops the search
// immediately, while one that simply doesn't resolve (outcomeNone) falls
// through to the next declared key.
//
// requireDotSlash enforces the exports-only rule that a resolved string must
// begin with "./" to be valid; imports values may also be bare specifiers
// that re-enter _resolve.
func evaluateSubpathValue(value interface{}, middle string, isPattern bool, conditions []string, requireDotSlash bool) (string, subpathOutcome) {
	switch v := value.(type) {
	case string:
		result := v
		if isPattern {
			result = strings.ReplaceAll(result, "*", middle)
		}
		if requireDotSlash && !strings.HasPrefix(result, "./") {
			return result, outcomeInvalid
		}
		if hasInvalidSegment(result) {
			return result, outcomeInvalid
		}
		return result, outcomeOK

	case *manifest.OrderedMap:
		for _, cond := range v.Keys() {
			if !conditionIsActive(cond, conditions) {
				continue
			}
			sub, _ := v.Get(cond)
			result, outcome := evaluateSubpathValue(sub, middle, isPattern, conditions, requireDotSlash)
			if outcome == outcomeOK {
				return result, outcomeOK
			}
			if outcome == outcomeInvalid {
				return result, outcomeInvalid
			}
		}
		return "", outcomeNone

	case []interface{}:
		for _, item := range v {
			result, outcome := evaluateSubpathValue(item, middle, isPattern, conditions, requireDotSlash)
			if outcome == outcomeOK {
				return result, outcomeOK
			}
		}
		return "", outcomeNone

	case nil:
		return "", outcomeNone

	default:
		return "", outcomeInvalid
	}
}

// hasInvalidSegment reports whether any path segment after the first is ".",
// "..", or "node_modules" — forbidden in a resolved exports/imports target
// (spec §4.4, §7 InvalidSpecifier; mirrors esbuild's resolver.hasInvalidSegment
// which implements the same rule from the Node.js ESM resolution algorithm).
func hasInvalidSegment(p string) bool {
	slash := strings.IndexAny(p, "/\\")
	if slash == -1 {
		return false
	}
	rest := p[slash+1:]
	for rest != "" {
		slash := strings.IndexAny(rest, "/\\")
		segment := rest
		if slash != -1 {
			segment = rest[:slash]
			rest = rest[slash+1:]
		} else {
			rest = ""
		}
		if segment == "." || segment == ".." || segment == "node_modules" {
			return true
		}
	}
	return false
}
