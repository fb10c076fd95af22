package component

import (
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog"
)

var ErrRenderFailed = errors.New("render failed")

// Executor runs a task later on the same logical thread that owns the
// scheduler. loop.Queue is the usual implementation. A refused task is
// retried on the next MarkDirty.
type Executor interface {
	Schedule(task func() error) error
}

type Option func(*Scheduler)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) {
		s.log = l
	}
}

// Scheduler coalesces dirty instances into one flush per scheduled task.
// It is not safe for concurrent use; everything touching it runs on the
// goroutine that drains its Executor.
type Scheduler struct {
	exec Executor
	log  zerolog.Logger

	dirty  []*Instance
	cursor int

	flushing  bool
	scheduled bool

	afterUpdate []*Instance
	seen        mapset.Set[*Instance]
	callbacks   []func()

	nextID  uint64
	flushes int
}

func NewScheduler(exec Executor, opts ...Option) *Scheduler {
	s := &Scheduler{
		exec: exec,
		log:  zerolog.Nop(),
		seen: mapset.NewThreadUnsafeSet[*Instance](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MarkDirty flags slot of inst as changed and makes sure a flush will pick
// the instance up. Each instance is queued at most once between flushes.
func (s *Scheduler) MarkDirty(inst *Instance, slot int) {
	if inst.state == StateDestroyed {
		s.log.Debug().Str("component", inst.def.Name).Uint64("id", inst.id).Int("slot", slot).Msg("ignoring write to destroyed instance")
		return
	}
	inst.checkSlot(slot)
	if !inst.queued {
		inst.queued = true
		s.dirty = append(s.dirty, inst)
	}
	inst.dirty.Set(slot)
	s.schedule()
}

// OnFlushComplete queues fn to run once, after the dirty instances of the
// current (or next) flush have been updated.
func (s *Scheduler) OnFlushComplete(fn func()) {
	s.callbacks = append(s.callbacks, fn)
	s.schedule()
}

func (s *Scheduler) schedule() {
	if s.scheduled || s.flushing {
		return
	}
	if err := s.exec.Schedule(s.Flush); err != nil {
		s.log.Warn().Err(err).Int("pending", s.Pending()).Msg("flush not scheduled")
		return
	}
	s.scheduled = true
}

// Pending is the number of instances waiting in the current batch.
func (s *Scheduler) Pending() int { return len(s.dirty) - s.cursor }

func (s *Scheduler) Flushing() bool { return s.flushing }

// Flushes counts completed flushes.
func (s *Scheduler) Flushes() int { return s.flushes }

// Flush updates every dirty instance, runs after-update hooks and then the
// flush-complete callbacks, repeating while those dirty more instances.
// Calling Flush from inside a flush is a no-op: the running flush walks the
// pending list by index and sees anything appended to it.
//
// A failing patch aborts the flush and clears every queue; the batch is not
// retried.
func (s *Scheduler) Flush() error {
	if s.flushing {
		return nil
	}
	s.flushing = true

	completed := false
	defer func() {
		if !completed {
			s.abort()
		}
	}()

	updated, passes := 0, 0
	for {
		passes++
		for s.cursor < len(s.dirty) {
			inst := s.dirty[s.cursor]
			s.cursor++
			ok, err := s.update(inst)
			if err != nil {
				s.log.Error().Err(err).Str("component", inst.def.Name).Uint64("id", inst.id).Msg("flush aborted")
				return fmt.Errorf("%w: component %s #%d: %w", ErrRenderFailed, inst.def.Name, inst.id, err)
			}
			if ok {
				updated++
			}
		}
		clear(s.dirty)
		s.dirty = s.dirty[:0]
		s.cursor = 0

		for i := 0; i < len(s.afterUpdate); i++ {
			s.runAfterUpdate(s.afterUpdate[i])
		}
		clear(s.afterUpdate)
		s.afterUpdate = s.afterUpdate[:0]

		for i := 0; i < len(s.callbacks); i++ {
			s.callbacks[i]()
		}
		clear(s.callbacks)
		s.callbacks = s.callbacks[:0]

		if len(s.dirty) == 0 {
			break
		}
	}

	s.seen.Clear()
	s.flushing = false
	s.scheduled = false
	s.flushes++
	completed = true

	s.log.Trace().Int("updated", updated).Int("passes", passes).Msg("flush")
	return nil
}

func (s *Scheduler) update(inst *Instance) (bool, error) {
	if inst.state == StateDestroyed || inst.fragment == nil {
		inst.queued = false
		return false, nil
	}

	// reactive statements still see the instance as queued, so their writes
	// land in the mask being flushed
	for _, fn := range inst.reactive {
		fn(inst.dirty)
	}
	for _, fn := range inst.beforeUpdate {
		fn()
	}
	if inst.fragment == nil {
		return false, nil
	}

	dirty := inst.dirty
	inst.dirty = NewDirty(inst.def.Slots)
	inst.queued = false

	if err := inst.fragment.Patch(inst.ctx, dirty); err != nil {
		return false, err
	}
	s.afterUpdate = append(s.afterUpdate, inst)
	return true, nil
}

// runAfterUpdate runs the hooks of inst at most once per flush.
func (s *Scheduler) runAfterUpdate(inst *Instance) {
	if !s.seen.Add(inst) {
		return
	}
	if inst.state != StateMounted {
		return
	}
	for _, fn := range inst.afterUpdate {
		fn()
	}
}

func (s *Scheduler) abort() {
	for _, inst := range s.dirty {
		if inst.queued {
			inst.queued = false
			inst.dirty.Reset()
		}
	}
	s.dirty = nil
	s.cursor = 0
	s.afterUpdate = nil
	s.callbacks = nil
	s.seen.Clear()
	s.flushing = false
	s.scheduled = false
}
