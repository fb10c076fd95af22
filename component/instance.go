package component

import (
	"errors"
	"fmt"
	"slices"

	"github.com/delaneyj/slotparty/dom"
)

var (
	ErrOutsideInit    = errors.New("lifecycle hook registered outside component initialization")
	ErrSlotOutOfRange = errors.New("context slot out of range")
	ErrContextSize    = errors.New("context size does not match component slots")
	ErrDestroyed      = errors.New("instance is destroyed")
	ErrAlreadyMounted = errors.New("instance is already mounted")
	ErrUnknownProp    = errors.New("unknown prop")
)

// Component describes one component type. Instance builds the context for a
// new instance and is the only place lifecycle hooks may be registered.
// Fragment builds the renderer for that context; owner is only meant to be
// handed to nested blocks that create child instances.
type Component struct {
	Name  string
	Slots int
	// Props maps prop names to the slot they write.
	Props    map[string]int
	Instance func(inst *Instance, props Props) (Context, error)
	Fragment func(ctx Context, owner *Instance) Fragment
}

type State uint8

const (
	StateUnmounted State = iota
	StateMounted
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUnmounted:
		return "unmounted"
	case StateMounted:
		return "mounted"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

type callback struct {
	fn func(detail any)
}

type Instance struct {
	id    uint64
	def   *Component
	sched *Scheduler
	root  *dom.Element

	ctx      Context
	fragment Fragment
	dirty    Dirty
	queued   bool

	state        State
	initializing bool
	ready        bool
	skipBound    bool

	onMount      []func() func()
	onDestroy    []func()
	beforeUpdate []func()
	afterUpdate  []func()
	reactive     []func(Dirty)

	bound     map[int]func(any)
	callbacks map[string][]*callback
	cleanups  Cleanups
}

// New initialises an instance of def and creates its fragment's nodes. The
// nodes are not attached until Mount.
func New(s *Scheduler, def *Component, props Props) (*Instance, error) {
	s.nextID++
	inst := &Instance{
		id:    s.nextID,
		def:   def,
		sched: s,
		dirty: NewDirty(def.Slots),
		bound: map[int]func(any){},
	}

	ctx, err := inst.init(props)
	if err != nil {
		return nil, fmt.Errorf("error while initializing %s: %w", def.Name, err)
	}
	if len(ctx) != def.Slots {
		return nil, fmt.Errorf("%w: %s wants %d, got %d", ErrContextSize, def.Name, def.Slots, len(ctx))
	}
	inst.ctx = ctx

	all := AllDirty(def.Slots)
	for _, fn := range inst.reactive {
		fn(all)
	}
	inst.ready = true
	for _, fn := range inst.beforeUpdate {
		fn()
	}

	if def.Fragment != nil {
		inst.fragment = def.Fragment(ctx, inst)
	}
	if inst.fragment == nil {
		inst.fragment = Noop
	}
	if err := inst.fragment.Create(); err != nil {
		return nil, fmt.Errorf("error while creating %s: %w", def.Name, err)
	}
	return inst, nil
}

func (inst *Instance) init(props Props) (Context, error) {
	inst.initializing = true
	defer func() { inst.initializing = false }()

	if inst.def.Instance == nil {
		return make(Context, inst.def.Slots), nil
	}
	return inst.def.Instance(inst, props)
}

func (inst *Instance) ID() uint64            { return inst.id }
func (inst *Instance) Name() string          { return inst.def.Name }
func (inst *Instance) State() State          { return inst.state }
func (inst *Instance) Scheduler() *Scheduler { return inst.sched }
func (inst *Instance) Root() *dom.Element    { return inst.root }
func (inst *Instance) Context() Context      { return inst.ctx }
func (inst *Instance) Dirty() Dirty          { return inst.dirty.Clone() }
func (inst *Instance) Queued() bool          { return inst.queued }

// Mount attaches the fragment under target before anchor. Mount hooks run
// after the next flush, unless the instance is destroyed first.
func (inst *Instance) Mount(target *dom.Element, anchor dom.Node) error {
	switch inst.state {
	case StateDestroyed:
		return ErrDestroyed
	case StateMounted:
		return ErrAlreadyMounted
	}
	if err := inst.fragment.Mount(target, anchor, &inst.cleanups); err != nil {
		return fmt.Errorf("error while mounting %s: %w", inst.def.Name, err)
	}
	inst.root = target
	inst.state = StateMounted
	inst.sched.OnFlushComplete(func() {
		inst.runMountHooks()
		inst.sched.runAfterUpdate(inst)
	})
	return nil
}

func (inst *Instance) runMountHooks() {
	if inst.state != StateMounted {
		return
	}
	hooks := inst.onMount
	inst.onMount = nil
	for _, hook := range hooks {
		cleanup := hook()
		if cleanup == nil {
			continue
		}
		if inst.state == StateDestroyed {
			cleanup()
			return
		}
		inst.onDestroy = append(inst.onDestroy, cleanup)
	}
}

// Destroy runs the destroy hooks and tears down the fragment. Only the first
// call does anything, including calls made from inside destroy hooks.
func (inst *Instance) Destroy(detach bool) {
	if inst.state == StateDestroyed {
		return
	}
	inst.state = StateDestroyed

	hooks := inst.onDestroy
	inst.onDestroy = nil
	for _, fn := range hooks {
		fn()
	}
	if inst.fragment != nil {
		inst.fragment.Destroy(detach)
	}
	inst.cleanups.Run()

	inst.ctx = nil
	inst.fragment = nil
	inst.onMount = nil
	inst.beforeUpdate = nil
	inst.afterUpdate = nil
	inst.reactive = nil
	inst.bound = nil
	inst.callbacks = nil
}

// Set writes v into slot and marks it dirty when the value changed.
// Writes to a destroyed instance are ignored.
func (inst *Instance) Set(slot int, v any) bool {
	if inst.state == StateDestroyed || inst.ctx == nil {
		return false
	}
	inst.checkSlot(slot)
	if !notEqual(inst.ctx[slot], v) {
		return false
	}
	inst.ctx[slot] = v
	if !inst.skipBound {
		if fn := inst.bound[slot]; fn != nil {
			fn(v)
		}
	}
	if inst.ready {
		inst.sched.MarkDirty(inst, slot)
	}
	return true
}

// Invalidate marks slot dirty without writing, for values mutated in place.
func (inst *Instance) Invalidate(slot int) {
	if inst.ready {
		inst.sched.MarkDirty(inst, slot)
	}
}

// Bind registers setter to be told whenever slot changes from inside the
// instance. Updates pushed in through SetProps are not echoed back.
func (inst *Instance) Bind(slot int, setter func(any)) {
	if inst.state == StateDestroyed {
		return
	}
	inst.checkSlot(slot)
	inst.bound[slot] = setter
}

// SetProps writes named props into their slots.
func (inst *Instance) SetProps(props Props) error {
	if inst.state == StateDestroyed {
		return ErrDestroyed
	}
	for name := range props {
		if _, ok := inst.def.Props[name]; !ok {
			return fmt.Errorf("%w %q for %s", ErrUnknownProp, name, inst.def.Name)
		}
	}
	inst.skipBound = true
	defer func() { inst.skipBound = false }()
	for name, v := range props {
		inst.Set(inst.def.Props[name], v)
	}
	return nil
}

// On subscribes fn to component events named event.
func (inst *Instance) On(event string, fn func(detail any)) (off func()) {
	if inst.state == StateDestroyed {
		return func() {}
	}
	if inst.callbacks == nil {
		inst.callbacks = map[string][]*callback{}
	}
	cb := &callback{fn: fn}
	inst.callbacks[event] = append(inst.callbacks[event], cb)
	return func() {
		cbs := inst.callbacks[event]
		if i := slices.Index(cbs, cb); i >= 0 {
			inst.callbacks[event] = slices.Delete(cbs, i, i+1)
		}
	}
}

// Dispatch calls the subscribers of event and reports whether there were any.
func (inst *Instance) Dispatch(event string, detail any) bool {
	cbs := slices.Clone(inst.callbacks[event])
	for _, cb := range cbs {
		cb.fn(detail)
	}
	return len(cbs) > 0
}

func (inst *Instance) OnMount(fn func() func()) {
	inst.mustInit("OnMount")
	inst.onMount = append(inst.onMount, fn)
}

func (inst *Instance) OnDestroy(fn func()) {
	inst.mustInit("OnDestroy")
	inst.onDestroy = append(inst.onDestroy, fn)
}

func (inst *Instance) BeforeUpdate(fn func()) {
	inst.mustInit("BeforeUpdate")
	inst.beforeUpdate = append(inst.beforeUpdate, fn)
}

func (inst *Instance) AfterUpdate(fn func()) {
	inst.mustInit("AfterUpdate")
	inst.afterUpdate = append(inst.afterUpdate, fn)
}

// Reactive registers a statement that recomputes derived slots. It runs once
// with every bit set during initialization, then before each update with the
// slots dirtied since the previous one.
func (inst *Instance) Reactive(fn func(dirty Dirty)) {
	inst.mustInit("Reactive")
	inst.reactive = append(inst.reactive, fn)
}

func (inst *Instance) mustInit(hook string) {
	if !inst.initializing {
		panic(fmt.Errorf("%w: %s on %s", ErrOutsideInit, hook, inst.def.Name))
	}
}

func (inst *Instance) checkSlot(slot int) {
	if slot < 0 || slot >= inst.def.Slots {
		panic(fmt.Errorf("%w: %d of %s (%d slots)", ErrSlotOutOfRange, slot, inst.def.Name, inst.def.Slots))
	}
}
