package resolver

import (
	"path"
	"testing"

	"github.com/pkg/errors"

	"github.com/shepherdwind/goresolver/internal/fsprobe"
	"github.com/shepherdwind/goresolver/internal/manifest"
)

// memFS is an in-memory fsprobe.FS used across the resolver tests, modeled
// on the mock-filesystem style esbuild's own resolver tests use.
type memFS struct {
	files map[string]string
	dirs  map[string]bool
}

func newMemFS() *memFS {
	return &memFS{files: make(map[string]string), dirs: make(map[string]bool)}
}

func (fs *memFS) addFile(p, content string) {
	fs.files[p] = content
	dir := path.Dir(p)
	for {
		fs.dirs[dir] = true
		parent := path.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func (fs *memFS) Stat(p string) (fsprobe.EntryKind, error) {
	if _, ok := fs.files[p]; ok {
		return fsprobe.File, nil
	}
	if fs.dirs[p] {
		return fsprobe.Directory, nil
	}
	return fsprobe.Missing, nil
}

func (fs *memFS) ReadFile(p string) ([]byte, error) {
	content, ok := fs.files[p]
	if !ok {
		return nil, errors.Errorf("no such file: %s", p)
	}
	return []byte(content), nil
}

func newTestFS() *memFS {
	fs := newMemFS()
	fs.addFile("/repo/package.json", `{"name":"repo-root","imports":{"#util":"./src/util.ts"}}`)
	fs.addFile("/repo/src/util.ts", "export const util = 1;")
	fs.addFile("/repo/node_modules/foo/package.json", `{"name":"foo","main":"./lib/index.js"}`)
	fs.addFile("/repo/node_modules/foo/lib/index.js", "module.exports = 1;")
	fs.addFile("/repo/node_modules/bar/package.json", `{
		"name":"bar",
		"exports": {".": "./dist/bar.js", "./feature": "./dist/feature.js"}
	}`)
	fs.addFile("/repo/node_modules/bar/dist/bar.js", "1")
	fs.addFile("/repo/node_modules/bar/dist/feature.js", "1")
	return fs
}

func newTestResolver(t *testing.T, fs fsprobe.FS, opts Options) *Resolver {
	t.Helper()
	r, err := NewResolver(fs, opts)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return r
}

func TestResolveBareModuleMainField(t *testing.T) {
	r := newTestResolver(t, newTestFS(), Options{Extensions: []string{".js"}})
	result, err := r.Resolve("/repo/src", "foo")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Path != "/repo/node_modules/foo/lib/index.js" {
		t.Fatalf("Path = %q", result.Path)
	}
}

func TestResolveExportsSubpath(t *testing.T) {
	r := newTestResolver(t, newTestFS(), Options{Extensions: []string{".js"}})

	result, err := r.Resolve("/repo/src", "bar")
	if err != nil {
		t.Fatalf("Resolve(bar): %v", err)
	}
	if result.Path != "/repo/node_modules/bar/dist/bar.js" {
		t.Fatalf("Path = %q", result.Path)
	}

	result, err = r.Resolve("/repo/src", "bar/feature")
	if err != nil {
		t.Fatalf("Resolve(bar/feature): %v", err)
	}
	if result.Path != "/repo/node_modules/bar/dist/feature.js" {
		t.Fatalf("Path = %q", result.Path)
	}
}

func TestResolveExportsRejectsUndeclaredSubpath(t *testing.T) {
	r := newTestResolver(t, newTestFS(), Options{Extensions: []string{".js"}})
	_, err := r.Resolve("/repo/src", "bar/secret")
	if err == nil {
		t.Fatal("expected error for undeclared subpath")
	}
	kind, ok := KindOf(err)
	if !ok || kind != PackagePathNotExported {
		t.Fatalf("kind = %v, ok = %v, want PackagePathNotExported", kind, ok)
	}
}

func TestResolveRelativeExtensionInference(t *testing.T) {
	r := newTestResolver(t, newTestFS(), Options{Extensions: []string{".ts", ".js"}})
	result, err := r.Resolve("/repo/src", "./util")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Path != "/repo/src/util.ts" {
		t.Fatalf("Path = %q", result.Path)
	}
}

func TestResolveAliasIgnore(t *testing.T) {
	opts := Options{
		Extensions: []string{".js"},
		Alias: []AliasEntry{
			{Key: "ignore-me", Value: AliasValue{Ignore: true}},
		},
	}
	r := newTestResolver(t, newTestFS(), opts)
	result, err := r.Resolve("/repo/src", "ignore-me")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !result.Ignored {
		t.Fatalf("result = %+v, want Ignored", result)
	}
}

func TestResolveAliasRewrite(t *testing.T) {
	opts := Options{
		Extensions: []string{".js"},
		Alias: []AliasEntry{
			{Key: "short", Value: AliasValue{Path: "foo"}},
		},
	}
	r := newTestResolver(t, newTestFS(), opts)
	result, err := r.Resolve("/repo/src", "short")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Path != "/repo/node_modules/foo/lib/index.js" {
		t.Fatalf("Path = %q", result.Path)
	}
}

func TestResolveInternalImports(t *testing.T) {
	r := newTestResolver(t, newTestFS(), Options{Extensions: []string{".ts"}})
	result, err := r.Resolve("/repo/src", "#util")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Path != "/repo/src/util.ts" {
		t.Fatalf("Path = %q", result.Path)
	}
}

func TestResolveQueryAndFragmentAreNotAppended(t *testing.T) {
	r := newTestResolver(t, newTestFS(), Options{Extensions: []string{".ts"}})
	result, err := r.Resolve("/repo/src", "./util.ts?raw#top")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Path != "/repo/src/util.ts" || result.Query != "?raw" || result.Fragment != "#top" {
		t.Fatalf("result = %+v", result)
	}
}

func TestResolveNotFound(t *testing.T) {
	r := newTestResolver(t, newTestFS(), Options{Extensions: []string{".js"}})
	_, err := r.Resolve("/repo/src", "totally-missing-package")
	if err == nil {
		t.Fatal("expected error")
	}
	kind, ok := KindOf(err)
	if !ok || kind != NotFound {
		t.Fatalf("kind = %v, ok = %v, want NotFound", kind, ok)
	}
}

func TestResolveRecursionLimit(t *testing.T) {
	opts := Options{
		Extensions:        []string{".js"},
		MaxRecursionDepth: 8,
		Alias: []AliasEntry{
			{Key: "a", Value: AliasValue{Path: "b"}},
			{Key: "b", Value: AliasValue{Path: "a"}},
		},
	}
	r := newTestResolver(t, newTestFS(), opts)
	_, err := r.Resolve("/repo/src", "a")
	if err == nil {
		t.Fatal("expected error")
	}
	kind, ok := KindOf(err)
	if !ok || kind != RecursionLimit {
		t.Fatalf("kind = %v, ok = %v, want RecursionLimit", kind, ok)
	}
}

func TestResolveSharedManifestCacheAcrossResolvers(t *testing.T) {
	fs := newTestFS()
	fsStore := fsprobe.NewStore(fs)
	shared := manifest.NewStore(fsStore, "package.json")

	r1 := newTestResolver(t, fs, Options{Extensions: []string{".js"}, ManifestCache: shared})
	r2 := newTestResolver(t, fs, Options{Extensions: []string{".js"}, ManifestCache: shared})

	for _, r := range []*Resolver{r1, r2} {
		result, err := r.Resolve("/repo/src", "foo")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if result.Path != "/repo/node_modules/foo/lib/index.js" {
			t.Fatalf("Path = %q", result.Path)
		}
	}
}
