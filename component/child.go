package component

import "github.com/delaneyj/slotparty/dom"

// Child embeds an instance of another component. props derives the child's
// props from the parent context; it gets a nil mask on creation and the
// parent's mask on every patch, and returning no props skips the update.
// A child that destroyed itself is left alone.
type Child struct {
	sched *Scheduler
	def   *Component
	props func(ctx Context, dirty Dirty) Props
	ctx   Context
	inst  *Instance
}

func NewChild(owner *Instance, def *Component, ctx Context, props func(ctx Context, dirty Dirty) Props) *Child {
	return &Child{
		sched: owner.sched,
		def:   def,
		props: props,
		ctx:   ctx,
	}
}

// Instance is nil until Create.
func (c *Child) Instance() *Instance { return c.inst }

func (c *Child) Create() error {
	var p Props
	if c.props != nil {
		p = c.props(c.ctx, nil)
	}
	inst, err := New(c.sched, c.def, p)
	if err != nil {
		return err
	}
	c.inst = inst
	return nil
}

func (c *Child) Mount(target *dom.Element, anchor dom.Node, _ *Cleanups) error {
	return c.inst.Mount(target, anchor)
}

func (c *Child) Patch(ctx Context, dirty Dirty) error {
	c.ctx = ctx
	if c.props == nil || c.inst == nil || c.inst.State() == StateDestroyed {
		return nil
	}
	p := c.props(ctx, dirty)
	if len(p) == 0 {
		return nil
	}
	return c.inst.SetProps(p)
}

func (c *Child) Destroy(detach bool) {
	if c.inst != nil {
		c.inst.Destroy(detach)
	}
}
