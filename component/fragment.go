package component

import "github.com/delaneyj/slotparty/dom"

// Fragment creates, mounts, patches and destroys the contiguous set of
// nodes rendered by one component. Patch only touches nodes bound to slots
// set in dirty.
type Fragment interface {
	Create() error
	Mount(target *dom.Element, anchor dom.Node, cleanups *Cleanups) error
	Patch(ctx Context, dirty Dirty) error
	Destroy(detach bool)
}

// Factory builds the fragment for a nested block from the context it sees.
type Factory func(ctx Context) Fragment

// Cleanups collects release funcs (listener removal mostly) for whoever owns
// the fragment that was mounted.
type Cleanups struct {
	fns []func()
}

func (c *Cleanups) Add(fn func()) {
	if fn != nil {
		c.fns = append(c.fns, fn)
	}
}

// Listen attaches h to el and records the removal.
func (c *Cleanups) Listen(el *dom.Element, event string, h dom.Handler) {
	c.Add(dom.Listen(el, event, h))
}

func (c *Cleanups) Len() int { return len(c.fns) }

// Run calls every collected func once, in registration order.
func (c *Cleanups) Run() {
	fns := c.fns
	c.fns = nil
	for _, fn := range fns {
		fn()
	}
}

// Funcs adapts plain closures to a Fragment. Nil members do nothing.
type Funcs struct {
	CreateFn  func() error
	MountFn   func(target *dom.Element, anchor dom.Node, cleanups *Cleanups) error
	PatchFn   func(ctx Context, dirty Dirty) error
	DestroyFn func(detach bool)
}

func (f Funcs) Create() error {
	if f.CreateFn == nil {
		return nil
	}
	return f.CreateFn()
}

func (f Funcs) Mount(target *dom.Element, anchor dom.Node, cleanups *Cleanups) error {
	if f.MountFn == nil {
		return nil
	}
	return f.MountFn(target, anchor, cleanups)
}

func (f Funcs) Patch(ctx Context, dirty Dirty) error {
	if f.PatchFn == nil {
		return nil
	}
	return f.PatchFn(ctx, dirty)
}

func (f Funcs) Destroy(detach bool) {
	if f.DestroyFn != nil {
		f.DestroyFn(detach)
	}
}

// Noop renders nothing.
var Noop Fragment = Funcs{}

// Static renders nodes that never change after creation.
type Static struct {
	build func() []dom.Node
	nodes []dom.Node
}

func NewStatic(build func() []dom.Node) *Static {
	return &Static{build: build}
}

func (s *Static) Create() error {
	s.nodes = s.build()
	return nil
}

func (s *Static) Mount(target *dom.Element, anchor dom.Node, _ *Cleanups) error {
	for _, n := range s.nodes {
		if err := dom.Insert(target, n, anchor); err != nil {
			return err
		}
	}
	return nil
}

func (s *Static) Patch(Context, Dirty) error { return nil }

func (s *Static) Destroy(detach bool) {
	if detach {
		for _, n := range s.nodes {
			dom.Detach(n)
		}
	}
	s.nodes = nil
}
