package resolver

import "path"

// Info is the mutable-by-replacement record carried through the pipeline
// (spec §3: "ResolveInfo"). Base is always absolute; Target is always
// relative or empty.
type Info struct {
	Base string
	Req  Request
}

// NormalizedPath is Base when the target is empty, else Base joined with the
// target.
func (i Info) NormalizedPath() string {
	if i.Req.Target == "" {
		return i.Base
	}
	return path.Join(i.Base, i.Req.Target)
}

// JoinedPath appends the request's query and fragment to NormalizedPath.
func (i Info) JoinedPath() string {
	return i.NormalizedPath() + i.Req.Query + i.Req.Fragment
}

// WithPath returns a copy of i rooted at a new base path.
func (i Info) WithPath(p string) Info {
	return Info{Base: p, Req: i.Req}
}

// WithTarget returns a copy of i whose request target has been rewritten.
func (i Info) WithTarget(target string) Info {
	return Info{Base: i.Base, Req: i.Req.WithTarget(target)}
}

// Result is what a successful resolve call produces: either an absolute,
// lexically normalized path (with query/fragment returned alongside, not
// appended), or Ignored.
type Result struct {
	Ignored  bool   `json:"ignored,omitempty"`
	Path     string `json:"path,omitempty"`
	Query    string `json:"query,omitempty"`
	Fragment string `json:"fragment,omitempty"`
}

// Status is the tag of a pipeline State (spec §4.3).
type Status uint8

const (
	StatusResolving Status = iota
	StatusSuccess
	StatusFailed
	StatusError
)

// State is the fixed-shape result every plugin and engine step produces.
type State struct {
	Status Status
	Info   Info
	Result Result
	Err    error
}

func Resolving(info Info) State { return State{Status: StatusResolving, Info: info} }
func Succeeded(result Result) State {
	return State{Status: StatusSuccess, Result: result}
}
func Failed(info Info) State { return State{Status: StatusFailed, Info: info} }
func Errored(err error) State {
	return State{Status: StatusError, Err: err}
}

// Then applies op only when s is still Resolving; every other status
// short-circuits (spec §4.3: "State.then(op) applies op only when the state
// is Resolving; all other states short-circuit").
func (s State) Then(op func(Info) State) State {
	if s.Status == StatusResolving {
		return op(s.Info)
	}
	return s
}

// Context tracks the loop-guard across a single top-level resolve call (spec
// §5: "a loop-guard (maximum recursion depth, default 1024 — exceeding it
// yields an Error RecursionLimit)").
type Context struct {
	depth int
	max   int
}

func newContext(max int) *Context {
	if max <= 0 {
		max = 1024
	}
	return &Context{max: max}
}

// enter increments the recursion depth and reports whether it is still
// within the limit; false means the loop-guard tripped.
func (c *Context) enter() bool {
	c.depth++
	return c.depth <= c.max
}

func (c *Context) leave() {
	c.depth--
}
