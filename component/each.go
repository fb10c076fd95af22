package component

import (
	"fmt"

	"github.com/delaneyj/slotparty/dom"
)

type eachRow struct {
	fragment Fragment
	cleanups Cleanups
}

// Each renders one row per list item. Rows are matched to items by index:
// existing rows are patched, missing ones are created and mounted, surplus
// ones destroyed.
type Each struct {
	length func(ctx Context) int
	item   func(ctx Context, i int) Context
	row    Factory
	slots  []int
	ctx    Context

	rows   []*eachRow
	anchor *dom.Text
	target *dom.Element
}

// NewEach builds a list block over ctx. When slots is non-empty the list is
// only revisited if one of them is dirty.
func NewEach(ctx Context, length func(ctx Context) int, item func(ctx Context, i int) Context, row Factory, slots ...int) *Each {
	return &Each{
		length: length,
		item:   item,
		row:    row,
		slots:  slots,
		ctx:    ctx,
	}
}

func (e *Each) Len() int { return len(e.rows) }

func (e *Each) Create() error {
	e.anchor = dom.Empty()
	n := e.length(e.ctx)
	for i := 0; i < n; i++ {
		r := &eachRow{fragment: e.row(e.item(e.ctx, i))}
		if err := r.fragment.Create(); err != nil {
			return fmt.Errorf("error while creating row %d: %w", i, err)
		}
		e.rows = append(e.rows, r)
	}
	return nil
}

func (e *Each) Mount(target *dom.Element, anchor dom.Node, _ *Cleanups) error {
	e.target = target
	if err := dom.Insert(target, e.anchor, anchor); err != nil {
		return err
	}
	for _, r := range e.rows {
		if err := r.fragment.Mount(target, e.anchor, &r.cleanups); err != nil {
			return err
		}
	}
	return nil
}

func (e *Each) Patch(ctx Context, dirty Dirty) error {
	e.ctx = ctx
	if len(e.slots) > 0 && !dirty.Any(e.slots...) {
		return nil
	}

	n := e.length(ctx)
	for i := 0; i < n; i++ {
		child := e.item(ctx, i)
		if i < len(e.rows) {
			if err := e.rows[i].fragment.Patch(child, dirty); err != nil {
				return fmt.Errorf("error while patching row %d: %w", i, err)
			}
			continue
		}
		r := &eachRow{fragment: e.row(child)}
		if err := r.fragment.Create(); err != nil {
			return fmt.Errorf("error while creating row %d: %w", i, err)
		}
		e.rows = append(e.rows, r)
		if e.target == nil {
			continue
		}
		if err := r.fragment.Mount(e.target, e.anchor, &r.cleanups); err != nil {
			return err
		}
	}
	for _, r := range e.rows[n:] {
		r.fragment.Destroy(true)
		r.cleanups.Run()
	}
	clear(e.rows[n:])
	e.rows = e.rows[:n]
	return nil
}

func (e *Each) Destroy(detach bool) {
	for _, r := range e.rows {
		r.fragment.Destroy(detach)
		r.cleanups.Run()
	}
	e.rows = nil
	if detach && e.anchor != nil {
		dom.Detach(e.anchor)
	}
	e.target = nil
}
