package resolver

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PatternMatcher is the text-pattern matcher collaborator spec §1 and §4.5
// name as external: "the implementation of the text-pattern matcher for
// typed-config path patterns ... only their interface to the core is
// specified."
type PatternMatcher interface {
	// MatchPathPattern reports whether target matches a tsconfig "paths" key
	// containing at most one "*", returning the substring the "*" matched
	// when it does.
	MatchPathPattern(pattern, target string) (middle string, ok bool)

	// MatchGlob reports whether path matches a doublestar glob pattern; used
	// by the supplemental SkipDirPatterns option.
	MatchGlob(pattern, path string) bool
}

// doublestarMatcher is the default PatternMatcher. bmatcuk/doublestar is the
// glob-matching library used by both bennypowers-mappa (file globbing) and
// mutagen-io-mutagen (sync ignore patterns) in the retrieval pack.
type doublestarMatcher struct{}

func (doublestarMatcher) MatchGlob(pattern, path string) bool {
	ok, err := doublestar.Match(pattern, path)
	return err == nil && ok
}

// MatchPathPattern implements the single-star substitution tsconfig uses for
// "paths" (e.g. "@app/*" matching "@app/utils/log" with middle "utils/log").
// This is a much narrower grammar than a doublestar glob, so it is matched
// directly rather than translated into one.
func (doublestarMatcher) MatchPathPattern(pattern, target string) (string, bool) {
	star := strings.IndexByte(pattern, '*')
	if star == -1 {
		if pattern == target {
			return "", true
		}
		return "", false
	}
	prefix, suffix := pattern[:star], pattern[star+1:]
	if !strings.HasPrefix(target, prefix) || !strings.HasSuffix(target, suffix) {
		return "", false
	}
	if len(target) < len(prefix)+len(suffix) {
		return "", false
	}
	return target[len(prefix) : len(target)-len(suffix)], true
}
