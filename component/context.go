package component

import (
	"math"
	"reflect"
)

// Context holds every reactive value of one instance. Slot indices are
// fixed per component type.
type Context []any

// Props are the named inputs handed to a component at creation or by its parent.
type Props map[string]any

// Get reads slot as T, returning the zero value when the slot holds
// something else.
func Get[T any](ctx Context, slot int) T {
	v, _ := ctx[slot].(T)
	return v
}

// Extend copies ctx and appends vals, the way list rows see their parent's
// slots plus their own item.
func Extend(ctx Context, vals ...any) Context {
	out := make(Context, len(ctx), len(ctx)+len(vals))
	copy(out, ctx)
	return append(out, vals...)
}

// notEqual decides whether writing next over prev is a change. Pointers and
// values that cannot be compared always count as changed since their
// contents may have been mutated in place.
func notEqual(prev, next any) bool {
	if prev == nil || next == nil {
		return prev != nil || next != nil
	}
	pv, nv := reflect.ValueOf(prev), reflect.ValueOf(next)
	if pv.Type() != nv.Type() {
		return true
	}
	switch pv.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Func, reflect.Map, reflect.Slice:
		return true
	case reflect.Float32, reflect.Float64:
		a, b := pv.Float(), nv.Float()
		if math.IsNaN(a) {
			return !math.IsNaN(b)
		}
		return a != b
	}
	if !pv.Comparable() || !nv.Comparable() {
		return true
	}
	return prev != next
}
