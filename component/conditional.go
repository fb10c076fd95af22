package component

import (
	"fmt"

	"github.com/delaneyj/slotparty/dom"
)

// Conditional renders one of several mutually exclusive branches, chosen by
// a discriminant computed from the context. The branch fragment is kept and
// patched while the discriminant holds, and replaced when it changes. A
// discriminant with no entry in the table renders nothing.
type Conditional[K comparable] struct {
	selectFn func(ctx Context) K
	branches map[K]Factory
	ctx      Context

	key      K
	active   Fragment
	cleanups Cleanups
	anchor   *dom.Text
	target   *dom.Element
}

func NewConditional[K comparable](ctx Context, selectFn func(ctx Context) K, branches map[K]Factory) *Conditional[K] {
	return &Conditional[K]{
		selectFn: selectFn,
		branches: branches,
		ctx:      ctx,
	}
}

// Key is the discriminant of the branch currently rendered.
func (c *Conditional[K]) Key() K { return c.key }

func (c *Conditional[K]) Create() error {
	c.anchor = dom.Empty()
	c.key = c.selectFn(c.ctx)
	return c.build(c.ctx)
}

func (c *Conditional[K]) build(ctx Context) error {
	c.active = nil
	f, ok := c.branches[c.key]
	if !ok || f == nil {
		return nil
	}
	c.active = f(ctx)
	if err := c.active.Create(); err != nil {
		c.active = nil
		return fmt.Errorf("error while creating branch %v: %w", c.key, err)
	}
	return nil
}

func (c *Conditional[K]) Mount(target *dom.Element, anchor dom.Node, _ *Cleanups) error {
	c.target = target
	if err := dom.Insert(target, c.anchor, anchor); err != nil {
		return err
	}
	if c.active == nil {
		return nil
	}
	return c.active.Mount(target, c.anchor, &c.cleanups)
}

func (c *Conditional[K]) Patch(ctx Context, dirty Dirty) error {
	c.ctx = ctx
	key := c.selectFn(ctx)
	if key == c.key {
		if c.active == nil {
			return nil
		}
		return c.active.Patch(ctx, dirty)
	}

	c.release(true)
	c.key = key
	if err := c.build(ctx); err != nil {
		return err
	}
	if c.active == nil || c.target == nil {
		return nil
	}
	return c.active.Mount(c.target, c.anchor, &c.cleanups)
}

func (c *Conditional[K]) release(detach bool) {
	if c.active != nil {
		c.active.Destroy(detach)
		c.active = nil
	}
	c.cleanups.Run()
}

func (c *Conditional[K]) Destroy(detach bool) {
	c.release(detach)
	if detach && c.anchor != nil {
		dom.Detach(c.anchor)
	}
	c.target = nil
}
