// Package dashboard is the system dashboard: a sidebar of views and a main
// panel that shows live process metrics or a placeholder per view.
package dashboard

import (
	"fmt"
	"time"

	"github.com/delaneyj/slotparty/component"
	"github.com/delaneyj/slotparty/dom"
	"github.com/delaneyj/slotparty/metrics"
	"github.com/rs/zerolog"
)

const (
	SlotCPU = iota
	SlotCPUDetails
	SlotRAM
	SlotRAMDetails
	SlotDisk
	SlotDiskDetails
	SlotView
	SlotViews
	SlotSelect
	slotCount
)

const Loading = "Loading..."

// EventViewChange carries the newly selected View.
const EventViewChange = "viewchange"

var querySlots = map[string]int{
	"cpu":          SlotCPU,
	"cpu_details":  SlotCPUDetails,
	"ram":          SlotRAM,
	"ram_details":  SlotRAMDetails,
	"disk":         SlotDisk,
	"disk_details": SlotDiskDetails,
}

const styles = `.dashboard{display:flex;height:100vh}
.sidebar{width:220px;background:#1e1e2e}
.nav-item{cursor:pointer;padding:8px 16px}
.nav-item.active{background:#313244}
.grid{display:grid;grid-template-columns:repeat(3,1fr);gap:16px}
.card{border-radius:8px;padding:16px;background:#181825}
.metric{font-size:2em}`

var scope = dom.ScopeClass(styles)

type Options struct {
	// Source is polled while the dashboard is mounted. Nil disables polling.
	Source       metrics.Source
	Submit       metrics.Submitter
	Interval     time.Duration
	FetchTimeout time.Duration
	// Log receives fetch failures. Nil discards them.
	Log *zerolog.Logger
}

// New describes the dashboard component. The "view" prop takes a View.
func New(opts Options) *component.Component {
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = time.Second
	}
	if opts.Log == nil {
		nop := zerolog.Nop()
		opts.Log = &nop
	}
	return &component.Component{
		Name:  "Dashboard",
		Slots: slotCount,
		Props: map[string]int{"view": SlotView},
		Instance: func(inst *component.Instance, props component.Props) (component.Context, error) {
			return instance(inst, props, opts)
		},
		Fragment: func(ctx component.Context, _ *component.Instance) component.Fragment {
			return &layout{ctx: ctx}
		},
	}
}

func instance(inst *component.Instance, props component.Props, opts Options) (component.Context, error) {
	view := ViewSystem
	if raw, ok := props["view"]; ok {
		v, ok := raw.(View)
		if !ok {
			return nil, fmt.Errorf("view prop must be a View, got %T", raw)
		}
		view = v
	}

	ctx := make(component.Context, slotCount)
	for _, slot := range querySlots {
		ctx[slot] = Loading
	}
	ctx[SlotView] = view
	ctx[SlotViews] = Views
	ctx[SlotSelect] = func(v View) {
		if inst.Set(SlotView, v) {
			inst.Dispatch(EventViewChange, v)
		}
	}

	if opts.Source == nil || opts.Submit == nil {
		return ctx, nil
	}
	inst.OnMount(func() func() {
		apply := func(results map[string]string) {
			for name, v := range results {
				if slot, ok := querySlots[name]; ok {
					inst.Set(slot, v)
				}
			}
		}
		p := metrics.NewPoller(opts.Submit, opts.Interval, apply, metrics.Queries(opts.Source),
			metrics.WithTimeout(opts.FetchTimeout),
			metrics.WithLogger(*opts.Log))
		return p.Start()
	})
	return ctx, nil
}

func viewName(v View) string {
	if int(v) < len(Views) {
		return Views[v].Name
	}
	return v.String()
}

type layout struct {
	ctx   component.Context
	root  *dom.Element
	title *dom.Text
	list  *dom.Element
	body  *dom.Element
	nav   *component.Each
	view  *component.Conditional[View]
}

func (l *layout) Create() error {
	l.root = dom.NewElement("div")
	l.root.SetAttr("class", "dashboard "+scope)

	style := dom.NewElement("style")
	style.SetTextContent(styles)
	dom.Append(l.root, style)

	aside := dom.NewElement("aside")
	aside.SetAttr("class", "sidebar")
	l.list = dom.NewElement("ul")
	dom.Append(aside, l.list)
	dom.Append(l.root, aside)

	main := dom.NewElement("main")
	h1 := dom.NewElement("h1")
	l.title = dom.NewText(viewName(component.Get[View](l.ctx, SlotView)))
	dom.Append(h1, l.title)
	dom.Append(main, h1)
	l.body = dom.NewElement("section")
	l.body.SetAttr("class", "content")
	dom.Append(main, l.body)
	dom.Append(l.root, main)

	l.nav = component.NewEach(l.ctx, navLen, navItem, newNavRow, SlotView, SlotViews)
	if err := l.nav.Create(); err != nil {
		return err
	}
	l.view = component.NewConditional(l.ctx, selectView, viewFragments)
	return l.view.Create()
}

func (l *layout) Mount(target *dom.Element, anchor dom.Node, cleanups *component.Cleanups) error {
	if err := l.nav.Mount(l.list, nil, cleanups); err != nil {
		return err
	}
	if err := l.view.Mount(l.body, nil, cleanups); err != nil {
		return err
	}
	return dom.Insert(target, l.root, anchor)
}

func (l *layout) Patch(ctx component.Context, dirty component.Dirty) error {
	l.ctx = ctx
	if dirty.Has(SlotView) {
		l.title.SetData(viewName(component.Get[View](ctx, SlotView)))
	}
	if err := l.nav.Patch(ctx, dirty); err != nil {
		return err
	}
	return l.view.Patch(ctx, dirty)
}

func (l *layout) Destroy(detach bool) {
	l.nav.Destroy(false)
	l.view.Destroy(false)
	if detach {
		dom.Detach(l.root)
	}
}

func selectView(ctx component.Context) View {
	return component.Get[View](ctx, SlotView)
}

func navLen(ctx component.Context) int {
	return len(component.Get[[]NavItem](ctx, SlotViews))
}

func navItem(ctx component.Context, i int) component.Context {
	return component.Extend(ctx, component.Get[[]NavItem](ctx, SlotViews)[i])
}

// navRow is one sidebar entry. Its context is the dashboard's plus the item.
type navRow struct {
	ctx component.Context
	li  *dom.Element
}

func newNavRow(ctx component.Context) component.Fragment {
	return &navRow{ctx: ctx}
}

func (r *navRow) item() NavItem {
	return component.Get[NavItem](r.ctx, slotCount)
}

func (r *navRow) class() string {
	if component.Get[View](r.ctx, SlotView) == r.item().View {
		return "nav-item active"
	}
	return "nav-item"
}

func (r *navRow) Create() error {
	item := r.item()
	r.li = dom.NewElement("li")
	r.li.SetAttr("class", r.class())
	r.li.SetAttr("data-view", item.ID)
	icon := dom.NewElement("span")
	icon.SetAttr("class", "icon")
	icon.SetTextContent(item.Icon)
	label := dom.NewElement("span")
	label.SetAttr("class", "label")
	label.SetTextContent(item.Name)
	dom.Append(r.li, icon)
	dom.Append(r.li, label)
	return nil
}

func (r *navRow) Mount(target *dom.Element, anchor dom.Node, cleanups *component.Cleanups) error {
	if err := dom.Insert(target, r.li, anchor); err != nil {
		return err
	}
	cleanups.Listen(r.li, "click", func(*dom.Event) {
		if sel := component.Get[func(View)](r.ctx, SlotSelect); sel != nil {
			sel(r.item().View)
		}
	})
	return nil
}

func (r *navRow) Patch(ctx component.Context, _ component.Dirty) error {
	r.ctx = ctx
	r.li.SetAttr("class", r.class())
	return nil
}

func (r *navRow) Destroy(detach bool) {
	if detach {
		dom.Detach(r.li)
	}
}
