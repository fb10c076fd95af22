package dashboard

import (
	"fmt"

	"github.com/delaneyj/slotparty/component"
	"github.com/delaneyj/slotparty/dom"
)

type metricCard struct {
	title   string
	value   int
	details int
}

var systemCards = []metricCard{
	{title: "CPU Usage", value: SlotCPU, details: SlotCPUDetails},
	{title: "Memory Usage", value: SlotRAM, details: SlotRAMDetails},
	{title: "Disk Usage", value: SlotDisk, details: SlotDiskDetails},
}

// systemPanel binds one text node per metric slot.
type systemPanel struct {
	ctx   component.Context
	grid  *dom.Element
	texts map[int]*dom.Text
}

func newSystemPanel(ctx component.Context) component.Fragment {
	return &systemPanel{ctx: ctx}
}

func (p *systemPanel) text(slot int) *dom.Text {
	t := dom.NewText(fmt.Sprint(p.ctx[slot]))
	p.texts[slot] = t
	return t
}

func (p *systemPanel) Create() error {
	p.texts = make(map[int]*dom.Text, len(systemCards)*2)
	p.grid = dom.NewElement("div")
	p.grid.SetAttr("class", "grid")
	for _, c := range systemCards {
		metric := dom.NewElement("div")
		metric.SetAttr("class", "metric")
		dom.Append(metric, p.text(c.value))
		details := dom.NewElement("pre")
		details.SetAttr("class", "details")
		dom.Append(details, p.text(c.details))
		dom.Append(p.grid, newCard(c.title, metric, details))
	}
	return nil
}

func (p *systemPanel) Mount(target *dom.Element, anchor dom.Node, _ *component.Cleanups) error {
	return dom.Insert(target, p.grid, anchor)
}

func (p *systemPanel) Patch(ctx component.Context, dirty component.Dirty) error {
	p.ctx = ctx
	for slot, t := range p.texts {
		if dirty.Has(slot) {
			t.SetData(fmt.Sprint(ctx[slot]))
		}
	}
	return nil
}

func (p *systemPanel) Destroy(detach bool) {
	if detach && p.grid != nil {
		dom.Detach(p.grid)
	}
	p.grid = nil
	p.texts = nil
}
