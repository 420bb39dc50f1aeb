package resolver

import (
	"path"
	"strings"

	"github.com/shepherdwind/goresolver/internal/helpers"
	"github.com/shepherdwind/goresolver/internal/manifest"
)

// isTerminal reports whether a State is no longer Resolving.
func isTerminal(s State) bool { return s.Status != StatusResolving }

// aliasKeyMatches implements the alias-table matching rule (spec §4.3.1): a
// key matches a target either exactly or as a path-segment prefix.
func aliasKeyMatches(key, target string) bool {
	if key == target {
		return true
	}
	return strings.HasPrefix(target, key+"/")
}

// aliasPlugin consults the configured alias table in order. The first
// matching entry wins: Ignore short-circuits to a successful ignored result,
// a replacement path rewrites the target and recurses through _resolve, and
// an explicit no-op entry falls through to the rest of the pipeline as if no
// entry had matched.
func (r *Resolver) aliasPlugin(info Info, ctx *Context) State {
	target := info.Req.Target
	for _, entry := range r.opts.Alias {
		if !aliasKeyMatches(entry.Key, target) {
			continue
		}
		switch {
		case entry.Value.Ignore:
			r.opts.Logger.Debugf("alias %q ignores %q", entry.Key, target)
			return Succeeded(Result{Ignored: true})
		case entry.Value.NoOp:
			return Resolving(info)
		default:
			suffix := target[len(entry.Key):]
			newTarget := entry.Value.Path + suffix
			r.opts.Logger.Debugf("alias %q rewrites %q to %q", entry.Key, target, newTarget)
			state := r._resolve(info.WithTarget(newTarget), ctx)
			if state.Status == StatusFailed {
				// Report the failure against what the caller actually asked
				// for, not the internal alias rewrite.
				return Failed(info)
			}
			return state
		}
	}
	return Resolving(info)
}

// preferRelativePlugin speculatively retries a Normal-kind request as if it
// had been written with a leading "./"; if that succeeds it wins outright,
// an error from the retry is returned as is, and otherwise resolution
// continues unmodified (spec §4.3.2).
func (r *Resolver) preferRelativePlugin(info Info, ctx *Context) State {
	if !r.opts.PreferRelative || info.Req.Kind != Normal {
		return Resolving(info)
	}
	state := r._resolve(info.WithTarget("./"+info.Req.Target), ctx)
	if state.Status == StatusSuccess || state.Status == StatusError {
		return state
	}
	return Resolving(info)
}

// importsFieldPlugin handles "#"-prefixed internal specifiers against the
// enclosing manifest's imports map (spec §4.3.3). It self-guards: outside of
// an Internal-kind request, or when the manifest declares no imports map, it
// is a no-op.
func (r *Resolver) importsFieldPlugin(mf *manifest.Manifest, info Info, ctx *Context) State {
	if info.Req.Kind != Internal || mf == nil {
		return Resolving(info)
	}
	importsField, ok := mf.Field(r.opts.ImportsField)
	if !ok {
		return Resolving(info)
	}
	importsMap, ok := importsField.(*manifest.OrderedMap)
	if !ok {
		return Resolving(info)
	}
	match := matchSubpath(importsMap, info.Req.Target)
	if !match.found {
		return Errored(newError(PackagePathNotExported, info.Base, info.Req.Target, "not declared in imports map"))
	}
	resolved, outcome := evaluateSubpathValue(match.value, match.middle, match.isPattern, r.opts.Conditions, false)
	switch outcome {
	case outcomeOK:
		r.opts.Logger.Debugf("imports field rewrites %q to %q", info.Req.Target, resolved)
		return r._resolve(Info{Base: mf.Dir, Req: info.Req.WithTarget(resolved)}, ctx)
	case outcomeInvalid:
		return Errored(newError(InvalidSpecifier, info.Base, info.Req.Target, resolved))
	default:
		return Errored(newError(PackagePathNotExported, info.Base, info.Req.Target, "no condition matched"))
	}
}

// aliasFieldPlugin consults a manifest's alias fields (default "browser").
// A string value rewrites the target and recurses; false marks the target
// ignored (spec §4.3.4).
func (r *Resolver) aliasFieldPlugin(mf *manifest.Manifest, info Info, ctx *Context) State {
	if mf == nil {
		return Resolving(info)
	}
	for _, fieldName := range r.opts.AliasFields {
		aliasMap, ok := mf.AliasMap(fieldName)
		if !ok {
			continue
		}
		val, ok := aliasMap.Get(info.Req.Target)
		if !ok {
			continue
		}
		switch v := val.(type) {
		case bool:
			if !v {
				return Succeeded(Result{Ignored: true})
			}
		case string:
			return r._resolve(info.WithTarget(v), ctx)
		}
	}
	return Resolving(info)
}

// mainFieldPlugin applies only when info's normalized path equals the
// manifest's own directory (i.e. info represents the package root). It tries
// each configured main-field name in order; the first one whose rewrite
// reaches a terminal state wins outright (spec §4.4).
func (r *Resolver) mainFieldPlugin(mf *manifest.Manifest, info Info, ctx *Context) State {
	if mf == nil || mf.Dir != info.NormalizedPath() {
		return Resolving(info)
	}
	base := info.NormalizedPath()
	for _, field := range r.opts.MainFields {
		val, ok := mf.MainField(field)
		if !ok {
			continue
		}
		if val == "." || val == "./" {
			break
		}
		target := val
		if !strings.HasPrefix(target, "./") && !strings.HasPrefix(target, "../") {
			target = "./" + target
		}
		r.opts.Logger.Debugf("main field %q in %s points to %q", field, mf.Dir, target)
		state := r._resolve(Info{Base: base, Req: info.Req.WithTarget(target)}, ctx)
		if state.Status == StatusFailed && !helpers.IsInsideNodeModules(mf.Dir) {
			r.opts.Logger.Warnf("package %s declares %q %q but the file does not exist", mf.Dir, field, target)
		}
		if isTerminal(state) {
			return state
		}
	}
	return Resolving(info)
}

// mainFilePlugin probes each configured main-file name (default "index")
// joined with each configured extension under info's normalized path
// (spec §4.4).
func (r *Resolver) mainFilePlugin(info Info) State {
	dir := info.NormalizedPath()
	for _, name := range r.opts.MainFiles {
		base := path.Join(dir, name)
		if r.opts.EnforceExtension != Enabled {
			kind, err := r.fsStore.IsFile(base)
			if err != nil {
				return Errored(err)
			}
			if kind {
				return Succeeded(Result{Path: base, Query: info.Req.Query, Fragment: info.Req.Fragment})
			}
		}
		for _, ext := range r.opts.Extensions {
			if ext == "" {
				continue
			}
			candidate := base + "." + ext
			isFile, err := r.fsStore.IsFile(candidate)
			if err != nil {
				return Errored(err)
			}
			if isFile {
				return Succeeded(Result{Path: candidate, Query: info.Req.Query, Fragment: info.Req.Fragment})
			}
		}
	}
	return Failed(info)
}

// exportsFieldPlugin resolves a subpath against a package's exports map
// (spec §4.4, sharing the subpath-pattern algorithm with importsFieldPlugin).
// moduleName is the bare package name stripped from the front of the
// request's target to compute the subpath key.
func (r *Resolver) exportsFieldPlugin(pkg *manifest.Manifest, info Info, moduleName string, ctx *Context) State {
	exportsField, ok := pkg.Field(r.opts.ExportsField)
	if !ok {
		return Resolving(info)
	}
	rest := info.Req.Target[len(moduleName):]
	subpath := "." + rest

	exportsMap, ok := exportsField.(*manifest.OrderedMap)
	if !ok || !hasDotKeys(exportsMap) {
		if subpath != "." {
			return Errored(newError(PackagePathNotExported, info.Base, info.Req.Target, "subpath not exported"))
		}
		exportsMap = manifest.NewOrderedMap().Set(".", exportsField)
	}

	match := matchSubpath(exportsMap, subpath)
	if !match.found {
		return Errored(newError(PackagePathNotExported, info.Base, info.Req.Target, "subpath not exported"))
	}
	resolved, outcome := evaluateSubpathValue(match.value, match.middle, match.isPattern, r.opts.Conditions, true)
	switch outcome {
	case outcomeOK:
		r.opts.Logger.Debugf("exports field in %s resolves %q to %q", pkg.Dir, subpath, resolved)
		return Resolving(Info{Base: pkg.Dir, Req: info.Req.WithTarget(resolved)})
	case outcomeInvalid:
		return Errored(newError(InvalidSpecifier, info.Base, info.Req.Target, resolved))
	default:
		return Errored(newError(PackagePathNotExported, info.Base, info.Req.Target, "no condition matched"))
	}
}

func hasDotKeys(m *manifest.OrderedMap) bool {
	for _, k := range m.Keys() {
		if strings.HasPrefix(k, ".") {
			return true
		}
	}
	return false
}

// moduleNameFromTarget extracts the bare package name from a module
// specifier: everything up to (but excluding) the first "/" for an
// unscoped package, or the second "/" for a "@scope/name" package. Ported
// from the original resolver's get_module_name_from_request.
func moduleNameFromTarget(target string) string {
	hasScope := strings.HasPrefix(target, "@")
	slashesSeen := 0
	for i := 0; i < len(target); i++ {
		if target[i] != '/' {
			continue
		}
		slashesSeen++
		if hasScope {
			if slashesSeen == 2 {
				return target[:i]
			}
		} else {
			return target[:i]
		}
	}
	return target
}
