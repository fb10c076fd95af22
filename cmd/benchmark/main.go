package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/delaneyj/slotparty/component"
	"github.com/delaneyj/slotparty/dom"
	"github.com/delaneyj/slotparty/loop"
	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/olekukonko/tablewriter"
)

var (
	ww    = []int{1, 10, 100, 1_000}
	hh    = []int{1, 10, 100}
	iters = 100

	rowCounts = []int{10, 100, 1_000, 10_000}
	repeats   = 5
)

func main() {
	profile := flag.String("cpuprofile", "", "write a cpu profile to this file")
	flag.Parse()

	if *profile != "" {
		f, err := os.Create(*profile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	log.Printf("warming up")
	benchmarkPropagate(false)

	benchmarkPropagate(true)
	benchmarkRows()
}

// chain is a component whose slot 0 feeds every other slot through a
// reactive statement, with one text node per slot.
func chain(slots int) *component.Component {
	return &component.Component{
		Name:  "Chain",
		Slots: slots,
		Instance: func(inst *component.Instance, props component.Props) (component.Context, error) {
			ctx := make(component.Context, slots)
			for i := range ctx {
				ctx[i] = i
			}
			inst.Reactive(func(dirty component.Dirty) {
				if !dirty.Has(0) {
					return
				}
				base := ctx[0].(int)
				for i := 1; i < slots; i++ {
					inst.Set(i, base+i)
				}
			})
			return ctx, nil
		},
		Fragment: func(ctx component.Context, _ *component.Instance) component.Fragment {
			var div *dom.Element
			nodes := make([]*dom.Text, slots)
			return component.Funcs{
				CreateFn: func() error {
					div = dom.NewElement("div")
					for i := range nodes {
						nodes[i] = dom.NewText(strconv.Itoa(ctx[i].(int)))
						dom.Append(div, nodes[i])
					}
					return nil
				},
				MountFn: func(target *dom.Element, anchor dom.Node, _ *component.Cleanups) error {
					return dom.Insert(target, div, anchor)
				},
				PatchFn: func(ctx component.Context, dirty component.Dirty) error {
					for i, n := range nodes {
						if dirty.Has(i) {
							n.SetData(strconv.Itoa(ctx[i].(int)))
						}
					}
					return nil
				},
				DestroyFn: func(detach bool) {
					if detach {
						dom.Detach(div)
					}
				},
			}
		},
	}
}

func benchmarkPropagate(shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Slot propagation")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			q := loop.New()
			s := component.NewScheduler(q)
			doc := dom.NewDocument()
			def := chain(h)
			roots := make([]*component.Root, w)
			for i := range roots {
				root, err := component.Mount(s, def, component.Options{Target: doc.Body()})
				if err != nil {
					log.Fatal(err)
				}
				roots[i] = root
			}
			if err := q.RunPending(); err != nil {
				log.Fatal(err)
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				for _, root := range roots {
					root.Instance().Set(0, i+1)
				}
				if err := q.RunPending(); err != nil {
					log.Fatal(err)
				}
				tach.AddTime(time.Since(start))
			}
			for _, root := range roots {
				root.Destroy()
			}

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("propagate: %d * %d", w, h),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				},
			})
		}
	}

	if shouldRender {
		tbl.Render()
	}
}

const slotRows = 0

var rowsComponent = &component.Component{
	Name:  "Rows",
	Slots: 1,
	Instance: func(inst *component.Instance, props component.Props) (component.Context, error) {
		return component.Context{0}, nil
	},
	Fragment: func(ctx component.Context, _ *component.Instance) component.Fragment {
		return component.NewEach(ctx,
			func(ctx component.Context) int { return component.Get[int](ctx, slotRows) },
			func(ctx component.Context, i int) component.Context { return component.Extend(ctx, i) },
			func(ctx component.Context) component.Fragment {
				return component.NewStatic(func() []dom.Node {
					li := dom.NewElement("li")
					li.SetTextContent(strconv.Itoa(component.Get[int](ctx, 1)))
					return []dom.Node{li}
				})
			},
			slotRows,
		)
	},
}

// benchmarkRows mounts and tears down list rows through the flush.
func benchmarkRows() {
	log.Print("Starting row benchmark, please wait...")
	defer log.Print("Finished row benchmark")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"rows", "repeats", "best", "rows/sec", "flushes"})

	for _, n := range rowCounts {
		q := loop.New()
		s := component.NewScheduler(q)
		doc := dom.NewDocument()
		root, err := component.Mount(s, rowsComponent, component.Options{Target: doc.Body()})
		if err != nil {
			log.Fatal(err)
		}
		if err := q.RunPending(); err != nil {
			log.Fatal(err)
		}

		best := time.Hour
		for i := 0; i < repeats; i++ {
			start := time.Now()
			root.Instance().Set(slotRows, n)
			if err := q.RunPending(); err != nil {
				log.Fatal(err)
			}
			root.Instance().Set(slotRows, 0)
			if err := q.RunPending(); err != nil {
				log.Fatal(err)
			}
			if d := time.Since(start); d < best {
				best = d
			}
		}
		flushes := s.Flushes()
		root.Destroy()

		rate := float64(2*n) / best.Seconds()
		table.Append([]string{
			humanize.Comma(int64(n)),
			fmt.Sprint(repeats),
			fmt.Sprint(best),
			humanize.Comma(int64(rate)),
			fmt.Sprint(flushes),
		})
	}
	table.Render()
}
