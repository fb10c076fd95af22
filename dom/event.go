package dom

import "slices"

type Event struct {
	Type    string
	Target  *Element
	Current *Element
	Detail  any
	stopped bool
}

func (ev *Event) StopPropagation() { ev.stopped = true }

type Handler func(ev *Event)

type listener struct {
	fn      Handler
	removed bool
}

// Listen attaches h to el and returns a func that removes it again.
func Listen(el *Element, event string, h Handler) (remove func()) {
	l := &listener{fn: h}
	if el.listeners == nil {
		el.listeners = map[string][]*listener{}
	}
	el.listeners[event] = append(el.listeners[event], l)
	return func() {
		if l.removed {
			return
		}
		l.removed = true
		ls := el.listeners[event]
		if i := slices.Index(ls, l); i >= 0 {
			el.listeners[event] = slices.Delete(ls, i, i+1)
		}
	}
}

// Listeners reports how many handlers are attached for event.
func (e *Element) Listeners(event string) int {
	return len(e.listeners[event])
}

// Dispatch runs the handlers for ev.Type on e and then on its ancestors.
func (e *Element) Dispatch(ev *Event) bool {
	if ev.Target == nil {
		ev.Target = e
	}
	handled := false
	for cur := e; cur != nil && !ev.stopped; cur = cur.parent {
		ls := slices.Clone(cur.listeners[ev.Type])
		ev.Current = cur
		for _, l := range ls {
			if l.removed {
				continue
			}
			l.fn(ev)
			handled = true
		}
	}
	return handled
}

// Click dispatches a bubbling click event on e.
func Click(e *Element) bool {
	return e.Dispatch(&Event{Type: "click"})
}
