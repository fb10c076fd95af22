package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Query is one named fetch whose result lands in one display slot.
type Query struct {
	Name  string
	Fetch func(ctx context.Context) (string, error)
}

// Queries lists the Source calls in display order.
func Queries(src Source) []Query {
	return []Query{
		{Name: "cpu", Fetch: src.CPUInfo},
		{Name: "cpu_details", Fetch: src.CPUDetails},
		{Name: "ram", Fetch: src.RAMInfo},
		{Name: "ram_details", Fetch: src.RAMDetails},
		{Name: "disk", Fetch: src.DiskInfo},
		{Name: "disk_details", Fetch: src.DiskDetails},
	}
}

// Submitter hands work to the goroutine that owns the UI.
type Submitter interface {
	Submit(task func() error) error
}

// Apply receives the successful results of one poll, on the UI goroutine.
type Apply func(results map[string]string)

type Poller struct {
	queries  []Query
	interval time.Duration
	timeout  time.Duration
	submit   Submitter
	apply    Apply
	log      zerolog.Logger
}

type PollerOption func(*Poller)

func WithTimeout(d time.Duration) PollerOption {
	return func(p *Poller) { p.timeout = d }
}

func WithLogger(l zerolog.Logger) PollerOption {
	return func(p *Poller) { p.log = l }
}

func NewPoller(submit Submitter, interval time.Duration, apply Apply, queries []Query, opts ...PollerOption) *Poller {
	p := &Poller{
		queries:  queries,
		interval: interval,
		timeout:  time.Second,
		submit:   submit,
		apply:    apply,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Poll runs every query once and submits the successful results as a single
// task. Failed queries are logged and left out, so their slots keep the last
// value they had.
func (p *Poller) Poll(ctx context.Context) error {
	results := make(map[string]string, len(p.queries))
	for _, q := range p.queries {
		qctx, cancel := context.WithTimeout(ctx, p.timeout)
		v, err := q.Fetch(qctx)
		cancel()
		if err != nil {
			p.log.Warn().Err(err).Str("query", q.Name).Msg("error updating metrics")
			continue
		}
		results[q.Name] = v
	}
	if len(results) == 0 || ctx.Err() != nil {
		return nil
	}
	return p.submit.Submit(func() error {
		p.apply(results)
		return nil
	})
}

// Start polls right away and then on every interval until the returned stop
// func is called. stop waits for an in-flight poll and is safe to call twice.
func (p *Poller) Start() (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			if err := p.Poll(ctx); err != nil {
				p.log.Debug().Err(err).Msg("poller stopped")
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}
}
