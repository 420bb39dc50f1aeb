// Package resolver implements the module resolution core: a Request Parser,
// a Plugin Pipeline, a Resolver Engine, and a Typed-Config Path Layer built
// on top of the fsprobe and manifest packages' filesystem probe and manifest
// store collaborators.
package resolver

import (
	"path"

	"github.com/shepherdwind/goresolver/internal/fsprobe"
	"github.com/shepherdwind/goresolver/internal/manifest"
)

// Resolver resolves module requests against a filesystem and a set of
// Options (spec §6: "Resolver::new(options)").
type Resolver struct {
	opts      Options
	fsStore   *fsprobe.Store
	manifests *manifest.Store
	tsPaths   *tsconfigPaths
}

// NewResolver constructs a Resolver over fs. A nil Options.ManifestCache
// makes the Resolver create a private manifest store; supplying one lets
// multiple resolvers share parsed manifests (spec §9, "unsafe_cache").
func NewResolver(fs fsprobe.FS, opts Options) (*Resolver, error) {
	opts = opts.normalize()

	fsStore := fsprobe.NewStore(fs)
	manifests := opts.ManifestCache
	if manifests == nil {
		manifests = manifest.NewStore(fsStore, opts.ManifestFilename)
	}

	r := &Resolver{opts: opts, fsStore: fsStore, manifests: manifests}

	if opts.Tsconfig != "" {
		tp, err := loadTSConfigPaths(fsStore, opts.Tsconfig, opts.Matcher)
		if err != nil {
			return nil, err
		}
		r.tsPaths = tp
	}
	return r, nil
}

// Resolve is the public entry point (spec §6: "resolve(base_dir, request) ->
// Result"). base must already be an absolute, forward-slash path.
func (r *Resolver) Resolve(base, request string) (*Result, error) {
	info := Info{Base: base, Req: ParseRequest(request)}
	ctx := newContext(r.opts.MaxRecursionDepth)

	var state State
	if r.tsPaths != nil {
		state = r.resolveWithTSConfig(info, ctx)
	} else {
		state = r._resolve(info, ctx)
	}

	switch state.Status {
	case StatusSuccess:
		result := state.Result
		if !result.Ignored {
			result.Path = path.Clean(result.Path)
		}
		return &result, nil
	case StatusError:
		return nil, state.Err
	default:
		// Failed (or, unreachably, still Resolving) bubbled all the way to
		// the top: synthesize the final not-found message here, against the
		// original request rather than whatever a plugin had rewritten it
		// to along the way.
		return nil, newError(NotFound, base, request, "")
	}
}

// _resolve drives the plugin pipeline for one request, bounded by ctx's
// recursion guard (spec §4.3, §5).
func (r *Resolver) _resolve(info Info, ctx *Context) State {
	if !ctx.enter() {
		return Errored(newError(RecursionLimit, info.Base, info.Req.Target, ""))
	}
	defer ctx.leave()

	r.opts.Logger.Debugf("_resolve base=%s target=%q kind=%s", info.Base, info.Req.Target, info.Req.Kind)

	state := r.aliasPlugin(info, ctx)

	state = state.Then(func(info Info) State {
		return r.preferRelativePlugin(info, ctx)
	})

	state = state.Then(func(info Info) State {
		var probePath string
		if info.Req.Kind == Normal {
			probePath = path.Join(info.Base, r.opts.Modules[0], info.Req.Target)
		} else {
			probePath = info.NormalizedPath()
		}
		mf, err := r.nearestManifestFor(probePath)
		if err != nil {
			return Errored(err)
		}
		s := r.importsFieldPlugin(mf, info, ctx)
		return s.Then(func(info Info) State {
			return r.aliasFieldPlugin(mf, info, ctx)
		})
	})

	state = state.Then(func(info Info) State {
		switch info.Req.Kind {
		case AbsolutePosix, AbsoluteWin, Relative:
			s := r.resolveAsFile(info)
			return s.Then(func(info Info) State {
				return r.resolveAsDir(info, ctx)
			})
		default:
			return r.resolveAsModules(info, ctx)
		}
	})

	return state
}

// nearestManifestFor walks from p (or p's parent, if p is not itself a
// directory) toward the filesystem root looking for the enclosing manifest
// (spec §4.2's directory-ascent load, reused by several plugins).
func (r *Resolver) nearestManifestFor(p string) (*manifest.Manifest, error) {
	kind, err := r.fsStore.Entry(p)
	if err != nil {
		return nil, err
	}
	dir := p
	if kind != fsprobe.Directory {
		dir = path.Dir(p)
	}
	return r.manifests.Nearest(dir)
}

func (r *Resolver) resolveFileWithExt(p string, info Info) State {
	for _, ext := range r.opts.Extensions {
		candidate := p
		if ext != "" {
			candidate = p + "." + ext
		}
		kind, err := r.fsStore.Entry(candidate)
		if err != nil {
			return Errored(err)
		}
		if kind == fsprobe.File {
			return Succeeded(Result{Path: candidate, Query: info.Req.Query, Fragment: info.Req.Fragment})
		}
	}
	return Resolving(info)
}

// resolveAsFile treats info's normalized path as a candidate file, trying
// the bare path (unless extension enforcement is Enabled) then each
// configured extension in order (spec §4.4).
func (r *Resolver) resolveAsFile(info Info) State {
	p := info.NormalizedPath()
	if r.opts.EnforceExtension == Enabled {
		return r.resolveFileWithExt(p, info)
	}
	kind, err := r.fsStore.Entry(p)
	if err != nil {
		return Errored(err)
	}
	if kind == fsprobe.File {
		return Succeeded(Result{Path: p, Query: info.Req.Query, Fragment: info.Req.Fragment})
	}
	return r.resolveFileWithExt(p, info)
}

// resolveAsDir treats info's normalized path as a candidate directory,
// trying the manifest's main field(s) and then the configured main-file
// names (spec §4.4).
func (r *Resolver) resolveAsDir(info Info, ctx *Context) State {
	dir := info.NormalizedPath()
	kind, err := r.fsStore.Entry(dir)
	if err != nil {
		return Errored(err)
	}
	if kind != fsprobe.Directory {
		return Failed(info)
	}
	dirInfo := Info{Base: dir, Req: info.Req.WithTarget("")}

	mf, err := r.manifests.Load(dir)
	if err != nil {
		return Errored(err)
	}

	state := r.mainFieldPlugin(mf, dirInfo, ctx)
	return state.Then(func(info Info) State {
		return r.mainFilePlugin(info)
	})
}

// dirIsSkipped reports whether dir matches one of the supplemental
// SkipDirPatterns globs, pruning it from module-directory ascent.
func (r *Resolver) dirIsSkipped(dir string) bool {
	for _, pattern := range r.opts.SkipDirPatterns {
		if r.opts.Matcher.MatchGlob(pattern, dir) {
			return true
		}
	}
	return false
}

// resolveAsModules implements the node_modules vendored-directory ascent
// (spec §4.4 "Bare-specifier resolution"): look for a modules directory in
// the current directory, then the package inside it (consulting its
// exports/imports/main/alias fields), falling back to trying the parent
// directory when nothing is found at this level.
func (r *Resolver) resolveAsModules(info Info, ctx *Context) State {
	originalDir := info.Base
	modulesRoot := path.Join(originalDir, r.opts.Modules[0])

	isDir := false
	if !r.dirIsSkipped(originalDir) {
		kind, err := r.fsStore.Entry(modulesRoot)
		if err != nil {
			return Errored(err)
		}
		isDir = kind == fsprobe.Directory
	}

	var state State
	if isDir {
		moduleName := moduleNameFromTarget(info.Req.Target)
		modulePath := path.Join(modulesRoot, moduleName)

		entryKind, err := r.fsStore.Entry(modulePath)
		if err != nil {
			return Errored(err)
		}
		modulePathIsDir := entryKind == fsprobe.Directory

		var ownManifest *manifest.Manifest
		if modulePathIsDir {
			ownManifest, err = r.manifests.Load(modulePath)
			if err != nil {
				return Errored(err)
			}
		}
		resolveSelf := ownManifest != nil && ownManifest.Name() == moduleName

		moduleInfo := Info{Base: modulesRoot, Req: info.Req}

		if !modulePathIsDir && !resolveSelf {
			s := r.resolveAsFile(moduleInfo)
			if isTerminal(s) {
				state = s
			} else {
				state = Resolving(info)
			}
		} else {
			var inner State
			if ownManifest != nil {
				outOfModulesRoot := ownManifest.Dir == originalDir
				if !outOfModulesRoot || resolveSelf {
					inner = r.exportsFieldPlugin(ownManifest, moduleInfo, moduleName, ctx)
				} else {
					inner = Resolving(moduleInfo)
				}
				inner = inner.Then(func(info Info) State {
					return r.importsFieldPlugin(ownManifest, info, ctx)
				})
				inner = inner.Then(func(info Info) State {
					joined := path.Join(info.Base, info.Req.Target)
					mainInfo := Info{Base: joined, Req: info.Req.WithTarget(".")}
					return r.mainFieldPlugin(ownManifest, mainInfo, ctx)
				})
				inner = inner.Then(func(info Info) State {
					return r.aliasFieldPlugin(ownManifest, info, ctx)
				})
			} else {
				inner = Resolving(moduleInfo)
			}
			inner = inner.Then(func(info Info) State { return r.resolveAsFile(info) })
			inner = inner.Then(func(info Info) State { return r.resolveAsDir(info, ctx) })

			if inner.Status == StatusFailed {
				inner = Resolving(inner.Info)
			}
			state = inner
		}
	} else {
		state = Resolving(info)
	}

	// Ascend to the parent directory with the ORIGINAL request untouched —
	// not whatever the inner chain above left its Info holding, which may
	// have had its target consumed or cleared along the way.
	state = state.Then(func(_ Info) State {
		parent := path.Dir(originalDir)
		if parent != originalDir {
			return r._resolve(info.WithPath(parent), ctx)
		}
		return Resolving(info)
	})

	if state.Status == StatusResolving {
		return Failed(state.Info)
	}
	return state
}
