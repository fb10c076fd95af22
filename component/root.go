package component

import (
	"errors"
	"fmt"

	"github.com/delaneyj/slotparty/dom"
)

var ErrNoTarget = errors.New("root needs a target element")

type Options struct {
	Target *dom.Element
	Anchor dom.Node
	Props  Props
}

// Root is the handle to a top-level instance.
type Root struct {
	inst *Instance
}

// Mount creates def at opts.Target. The first flush runs on the scheduler's
// executor, like any other.
func Mount(s *Scheduler, def *Component, opts Options) (*Root, error) {
	if opts.Target == nil {
		return nil, ErrNoTarget
	}
	inst, err := New(s, def, opts.Props)
	if err != nil {
		return nil, fmt.Errorf("error while creating root: %w", err)
	}
	if err := inst.Mount(opts.Target, opts.Anchor); err != nil {
		inst.Destroy(true)
		return nil, fmt.Errorf("error while mounting root: %w", err)
	}
	return &Root{inst: inst}, nil
}

func (r *Root) Instance() *Instance { return r.inst }

// Destroy tears the whole tree down and detaches it from the target.
func (r *Root) Destroy() {
	r.inst.Destroy(true)
}
