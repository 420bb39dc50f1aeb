package resolver

import (
	"strings"

	"github.com/shepherdwind/goresolver/internal/manifest"
	"github.com/shepherdwind/goresolver/internal/rlog"
)

// EnforceExtension controls whether the bare (extension-less) path is probed
// before trying configured extensions (spec §6).
type EnforceExtension uint8

const (
	// Auto means "compute from Extensions": Enabled iff some entry is empty.
	Auto EnforceExtension = iota
	Enabled
	Disabled
)

// AliasValue is either a replacement path, an ignore marker, or an explicit
// no-op (webpack-style "alias: {key: false}" meaning "match the key but
// don't rewrite it, let the rest of the pipeline run") (spec §4.3.1).
type AliasValue struct {
	Path   string
	Ignore bool
	NoOp   bool
}

// AliasEntry is one row of the ordered alias table (spec §4.3.1).
type AliasEntry struct {
	Key   string
	Value AliasValue
}

// Options configures a Resolver (spec §6: "Resolver::new(options)").
type Options struct {
	Extensions       []string
	EnforceExtension EnforceExtension
	Alias            []AliasEntry
	MainFields       []string
	MainFiles        []string
	Modules          []string
	Conditions       []string
	AliasFields      []string
	ExportsField     string
	ImportsField     string
	PreferRelative   bool
	Symlinks         bool

	// Tsconfig, when non-empty, is the path to a typed-configuration
	// manifest (tsconfig.json) consulted by the path-mapping pre-pass
	// (spec §4.5).
	Tsconfig string

	// ManifestFilename is the conventional manifest file name; defaults to
	// "package.json".
	ManifestFilename string

	// ManifestCache lets multiple Resolver instances share one manifest
	// store (spec §6: "unsafe_cache: optional shared manifest cache
	// handle"). A nil value makes NewResolver create a private one.
	ManifestCache *manifest.Store

	// MaxRecursionDepth is the loop-guard ceiling (spec §5), default 1024.
	MaxRecursionDepth int

	// SkipDirPatterns excludes vendored subtrees matching any of these
	// doublestar globs from the module-directory ascent (spec §4.4 step 7).
	// This is a supplemental option, not present in spec.md.
	SkipDirPatterns []string

	// Matcher overrides the PatternMatcher collaborator used for tsconfig
	// "paths" matching and SkipDirPatterns. Defaults to a doublestar-backed
	// implementation.
	Matcher PatternMatcher

	// Logger receives debug/warn traces; defaults to a no-op.
	Logger rlog.Logger
}

// normalize fills in defaults the way Resolver::new does in the original
// (strip leading dots from extensions, resolve Auto enforceExtension, etc.).
func (o Options) normalize() Options {
	exts := make([]string, len(o.Extensions))
	hasEmpty := false
	for i, e := range o.Extensions {
		e = strings.TrimPrefix(e, ".")
		exts[i] = e
		if e == "" {
			hasEmpty = true
		}
	}
	o.Extensions = exts

	if o.EnforceExtension == Auto {
		if hasEmpty {
			o.EnforceExtension = Enabled
		} else {
			o.EnforceExtension = Disabled
		}
	}
	if len(o.MainFields) == 0 {
		o.MainFields = []string{"main"}
	}
	if len(o.MainFiles) == 0 {
		o.MainFiles = []string{"index"}
	}
	if len(o.Modules) == 0 {
		o.Modules = []string{"node_modules"}
	}
	if o.ExportsField == "" {
		o.ExportsField = "exports"
	}
	if o.ImportsField == "" {
		o.ImportsField = "imports"
	}
	if len(o.AliasFields) == 0 {
		o.AliasFields = []string{"browser"}
	}
	if o.ManifestFilename == "" {
		o.ManifestFilename = "package.json"
	}
	if o.MaxRecursionDepth <= 0 {
		o.MaxRecursionDepth = 1024
	}
	if o.Logger == nil {
		o.Logger = rlog.Nop{}
	}
	if o.Matcher == nil {
		o.Matcher = doublestarMatcher{}
	}
	return o
}
