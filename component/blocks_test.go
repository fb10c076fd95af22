package component_test

import (
	"errors"
	"testing"

	"github.com/delaneyj/slotparty/component"
	"github.com/delaneyj/slotparty/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type branchCounts struct {
	creates, destroys, patches map[string]int
}

func newBranchCounts() *branchCounts {
	return &branchCounts{
		creates:  map[string]int{},
		destroys: map[string]int{},
		patches:  map[string]int{},
	}
}

func (bc *branchCounts) total(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

func branch(name string, bc *branchCounts) component.Factory {
	return func(ctx component.Context) component.Fragment {
		var p *dom.Element
		return component.Funcs{
			CreateFn: func() error {
				bc.creates[name]++
				p = dom.NewElement("p")
				p.SetTextContent(name)
				return nil
			},
			MountFn: func(target *dom.Element, anchor dom.Node, _ *component.Cleanups) error {
				return dom.Insert(target, p, anchor)
			},
			PatchFn: func(component.Context, component.Dirty) error {
				bc.patches[name]++
				return nil
			},
			DestroyFn: func(detach bool) {
				bc.destroys[name]++
				if detach {
					dom.Detach(p)
				}
			},
		}
	}
}

func switcher(bc *branchCounts, main **dom.Element) *component.Component {
	return &component.Component{
		Name:  "switcher",
		Slots: 1,
		Instance: func(*component.Instance, component.Props) (component.Context, error) {
			return component.Context{"A"}, nil
		},
		Fragment: func(ctx component.Context, _ *component.Instance) component.Fragment {
			cond := component.NewConditional(ctx,
				func(ctx component.Context) string { return component.Get[string](ctx, 0) },
				map[string]component.Factory{
					"A": branch("A", bc),
					"B": branch("B", bc),
				},
			)
			return component.Funcs{
				CreateFn: func() error {
					*main = dom.NewElement("main")
					return cond.Create()
				},
				MountFn: func(target *dom.Element, anchor dom.Node, c *component.Cleanups) error {
					if err := dom.Insert(target, *main, anchor); err != nil {
						return err
					}
					return cond.Mount(*main, nil, c)
				},
				PatchFn: cond.Patch,
				DestroyFn: func(detach bool) {
					cond.Destroy(false)
					if detach {
						dom.Detach(*main)
					}
				},
			}
		},
	}
}

func TestConditionalSwapSequence(t *testing.T) {
	h := newHarness()
	bc := newBranchCounts()
	var main *dom.Element
	root := h.mount(t, switcher(bc, &main), nil)
	h.run(t)
	inst := root.Instance()

	step := func(key string) {
		if !inst.Set(0, key) {
			inst.Invalidate(0)
		}
		h.run(t)
	}

	// A -> A -> B -> B -> A
	step("A")
	assert.Equal(t, 1, bc.patches["A"], "an unchanged discriminant patches the active branch")
	step("B")
	step("B")
	assert.Equal(t, 1, bc.patches["B"])
	step("A")

	assert.Equal(t, 2, bc.creates["A"])
	assert.Equal(t, 1, bc.creates["B"])
	assert.Equal(t, 3, bc.total(bc.creates))
	assert.Equal(t, 1, bc.destroys["A"])
	assert.Equal(t, 1, bc.destroys["B"])
	assert.Equal(t, 2, bc.total(bc.destroys))
	assert.Equal(t, "A", main.TextContent())
}

func TestConditionalMissingBranchRendersNothing(t *testing.T) {
	h := newHarness()
	bc := newBranchCounts()
	var main *dom.Element
	root := h.mount(t, switcher(bc, &main), nil)
	h.run(t)

	root.Instance().Set(0, "missing")
	h.run(t)
	assert.Equal(t, "", main.TextContent())
	assert.Equal(t, 1, bc.destroys["A"])

	root.Instance().Set(0, "B")
	h.run(t)
	assert.Equal(t, "B", main.TextContent())

	root.Destroy()
	assert.Equal(t, 1, bc.destroys["B"])
	assert.Nil(t, main.Parent())
}

func listComponent(rows *int) *component.Component {
	return &component.Component{
		Name:  "list",
		Slots: 2,
		Instance: func(*component.Instance, component.Props) (component.Context, error) {
			return component.Context{[]string{"a", "b"}, "unrelated"}, nil
		},
		Fragment: func(ctx component.Context, _ *component.Instance) component.Fragment {
			var ul *dom.Element
			each := component.NewEach(ctx,
				func(ctx component.Context) int { return len(component.Get[[]string](ctx, 0)) },
				func(ctx component.Context, i int) component.Context {
					return component.Extend(ctx, component.Get[[]string](ctx, 0)[i])
				},
				func(ctx component.Context) component.Fragment {
					var li *dom.Element
					var txt *dom.Text
					return component.Funcs{
						CreateFn: func() error {
							li = dom.NewElement("li")
							txt = dom.NewText(component.Get[string](ctx, 2))
							dom.Append(li, txt)
							return nil
						},
						MountFn: func(target *dom.Element, anchor dom.Node, _ *component.Cleanups) error {
							return dom.Insert(target, li, anchor)
						},
						PatchFn: func(ctx component.Context, dirty component.Dirty) error {
							*rows++
							txt.SetData(component.Get[string](ctx, 2))
							return nil
						},
						DestroyFn: func(detach bool) {
							if detach {
								dom.Detach(li)
							}
						},
					}
				},
				0,
			)
			return component.Funcs{
				CreateFn: func() error {
					ul = dom.NewElement("ul")
					return each.Create()
				},
				MountFn: func(target *dom.Element, anchor dom.Node, c *component.Cleanups) error {
					if err := dom.Insert(target, ul, anchor); err != nil {
						return err
					}
					return each.Mount(ul, nil, c)
				},
				PatchFn: each.Patch,
				DestroyFn: func(detach bool) {
					each.Destroy(false)
					if detach {
						dom.Detach(ul)
					}
				},
			}
		},
	}
}

func TestEachGrowsAndShrinks(t *testing.T) {
	h := newHarness()
	patched := 0
	root := h.mount(t, listComponent(&patched), nil)
	h.run(t)
	inst := root.Instance()

	assert.Equal(t, "<body><ul><li>a</li><li>b</li></ul></body>", dom.HTML(h.doc.Body()))

	inst.Set(0, []string{"a", "x", "c"})
	h.run(t)
	assert.Equal(t, "<body><ul><li>a</li><li>x</li><li>c</li></ul></body>", dom.HTML(h.doc.Body()))
	assert.Equal(t, 2, patched)

	inst.Set(1, "other")
	h.run(t)
	assert.Equal(t, 2, patched, "rows are skipped when the list slot is clean")

	inst.Set(0, []string{"z"})
	h.run(t)
	assert.Equal(t, "<body><ul><li>z</li></ul></body>", dom.HTML(h.doc.Body()))

	root.Destroy()
	assert.Equal(t, "<body></body>", dom.HTML(h.doc.Body()))
}

func TestChildReceivesPropsInParentFlush(t *testing.T) {
	h := newHarness()
	rec := &texts{}
	childDef := textComponent("label", 1, rec)
	childDef.Props = map[string]int{"label": 0}
	childDestroyed := 0
	childDef.Instance = func(inst *component.Instance, props component.Props) (component.Context, error) {
		inst.OnDestroy(func() { childDestroyed++ })
		return component.Context{props["label"]}, nil
	}

	var child *component.Child
	parent := &component.Component{
		Name:  "parent",
		Slots: 2,
		Instance: func(*component.Instance, component.Props) (component.Context, error) {
			return component.Context{"hello", 0}, nil
		},
		Fragment: func(ctx component.Context, owner *component.Instance) component.Fragment {
			child = component.NewChild(owner, childDef, ctx, func(ctx component.Context, dirty component.Dirty) component.Props {
				if dirty != nil && !dirty.Has(0) {
					return nil
				}
				return component.Props{"label": ctx[0]}
			})
			return child
		},
	}

	root := h.mount(t, parent, nil)
	h.run(t)
	require.NotNil(t, child.Instance())
	assert.Equal(t, "hello", rec.nodes[0].Data())
	assert.Equal(t, component.StateMounted, child.Instance().State())

	flushes := h.s.Flushes()
	root.Instance().Set(0, "world")
	h.run(t)
	assert.Equal(t, "world", rec.nodes[0].Data())
	assert.Equal(t, flushes+1, h.s.Flushes())

	root.Instance().Set(1, 42)
	h.run(t)
	assert.Len(t, rec.patches, 1, "child untouched when its props are clean")

	root.Destroy()
	assert.Equal(t, 1, childDestroyed)
	assert.Equal(t, component.StateDestroyed, child.Instance().State())
	assert.Equal(t, "<body></body>", dom.HTML(h.doc.Body()))
}

func TestStaticFragment(t *testing.T) {
	h := newHarness()
	def := &component.Component{
		Name: "static",
		Fragment: func(component.Context, *component.Instance) component.Fragment {
			return component.NewStatic(func() []dom.Node {
				h3 := dom.NewElement("h3")
				h3.SetTextContent("Coming Soon")
				return []dom.Node{h3, dom.Space()}
			})
		},
	}
	root := h.mount(t, def, nil)
	assert.Equal(t, "<body><h3>Coming Soon</h3> </body>", dom.HTML(h.doc.Body()))
	root.Destroy()
	assert.Equal(t, "<body></body>", dom.HTML(h.doc.Body()))
}

func TestChildDestroyedByItselfIsSkipped(t *testing.T) {
	h := newHarness()
	rec := &texts{}
	childDef := textComponent("label", 1, rec)
	childDef.Props = map[string]int{"label": 0}

	var child *component.Child
	parentRec := &texts{}
	parent := &component.Component{
		Name:  "parent",
		Slots: 1,
		Instance: func(*component.Instance, component.Props) (component.Context, error) {
			return component.Context{"hello"}, nil
		},
		Fragment: func(ctx component.Context, owner *component.Instance) component.Fragment {
			child = component.NewChild(owner, childDef, ctx, func(ctx component.Context, _ component.Dirty) component.Props {
				return component.Props{"label": ctx[0]}
			})
			return component.Funcs{
				CreateFn: child.Create,
				MountFn:  child.Mount,
				PatchFn: func(ctx component.Context, dirty component.Dirty) error {
					parentRec.patches = append(parentRec.patches, dirty.Clone())
					return child.Patch(ctx, dirty)
				},
				DestroyFn: child.Destroy,
			}
		},
	}

	root := h.mount(t, parent, nil)
	h.run(t)
	child.Instance().Destroy(true)

	root.Instance().Set(0, "world")
	require.NoError(t, h.q.RunPending())
	assert.Len(t, parentRec.patches, 1)
	assert.Equal(t, component.StateDestroyed, child.Instance().State())
	assert.Equal(t, component.StateMounted, root.Instance().State())
	assert.Equal(t, "<body></body>", dom.HTML(h.doc.Body()))

	root.Destroy()
}

func TestConditionalDropsBranchThatFailedToCreate(t *testing.T) {
	bc := newBranchCounts()
	failedDestroys := 0
	boom := errors.New("boom")
	cond := component.NewConditional(component.Context{"A"},
		func(ctx component.Context) string { return component.Get[string](ctx, 0) },
		map[string]component.Factory{
			"A": branch("A", bc),
			"B": func(component.Context) component.Fragment {
				return component.Funcs{
					CreateFn:  func() error { return boom },
					DestroyFn: func(bool) { failedDestroys++ },
				}
			},
		},
	)
	div := dom.NewElement("div")
	require.NoError(t, cond.Create())
	require.NoError(t, cond.Mount(div, nil, &component.Cleanups{}))

	assert.ErrorIs(t, cond.Patch(component.Context{"B"}, component.AllDirty(1)), boom)
	assert.Equal(t, 1, bc.destroys["A"])

	cond.Destroy(true)
	assert.Zero(t, failedDestroys, "a branch that never got created is not destroyed")
	assert.Empty(t, div.Children())
}
