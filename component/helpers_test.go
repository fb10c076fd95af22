package component_test

import (
	"fmt"
	"testing"

	"github.com/delaneyj/slotparty/component"
	"github.com/delaneyj/slotparty/dom"
	"github.com/delaneyj/slotparty/loop"
	"github.com/stretchr/testify/require"
)

type harness struct {
	q   *loop.Queue
	s   *component.Scheduler
	doc *dom.Document
}

func newHarness() *harness {
	q := loop.New()
	return &harness{
		q:   q,
		s:   component.NewScheduler(q),
		doc: dom.NewDocument(),
	}
}

func (h *harness) mount(t *testing.T, def *component.Component, props component.Props) *component.Root {
	t.Helper()
	root, err := component.Mount(h.s, def, component.Options{Target: h.doc.Body(), Props: props})
	require.NoError(t, err)
	return root
}

func (h *harness) run(t *testing.T) {
	t.Helper()
	require.NoError(t, h.q.RunPending())
}

// texts renders every slot into its own span and records each patch.
type texts struct {
	nodes   []*dom.Text
	patches []component.Dirty
	creates int
	destroy int
	onPatch func(ctx component.Context, dirty component.Dirty) error
}

func textComponent(name string, slots int, rec *texts) *component.Component {
	return &component.Component{
		Name:  name,
		Slots: slots,
		Instance: func(inst *component.Instance, props component.Props) (component.Context, error) {
			ctx := make(component.Context, slots)
			for i := range ctx {
				ctx[i] = "Loading..."
			}
			return ctx, nil
		},
		Fragment: func(ctx component.Context, _ *component.Instance) component.Fragment {
			var div *dom.Element
			return component.Funcs{
				CreateFn: func() error {
					rec.creates++
					div = dom.NewElement("div")
					rec.nodes = make([]*dom.Text, slots)
					for i := range rec.nodes {
						span := dom.NewElement("span")
						rec.nodes[i] = dom.NewText(fmt.Sprint(ctx[i]))
						dom.Append(span, rec.nodes[i])
						dom.Append(div, span)
					}
					return nil
				},
				MountFn: func(target *dom.Element, anchor dom.Node, _ *component.Cleanups) error {
					return dom.Insert(target, div, anchor)
				},
				PatchFn: func(ctx component.Context, dirty component.Dirty) error {
					rec.patches = append(rec.patches, dirty.Clone())
					for i, n := range rec.nodes {
						if dirty.Has(i) {
							n.SetData(fmt.Sprint(ctx[i]))
						}
					}
					if rec.onPatch != nil {
						return rec.onPatch(ctx, dirty)
					}
					return nil
				},
				DestroyFn: func(detach bool) {
					rec.destroy++
					if detach {
						dom.Detach(div)
					}
				},
			}
		},
	}
}
