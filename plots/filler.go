package plots

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"go-hep.org/x/hep/hbook"
	"golang.org/x/sync/errgroup"

	"github.com/decibelcooper/mtopcorr/event"
	"github.com/decibelcooper/mtopcorr/sample"
	"github.com/decibelcooper/mtopcorr/sequence"
)

// Source supplies the events of one input.
type Source interface {
	Name() string
	Entries() int64
	Scan(ctx context.Context, beg, end int64, fn func(idx int64, rec *event.Record) error) error
}

// Hists holds the histograms of one sample, one per registered plot.
type Hists struct {
	Sample *sample.Sample
	Plots  []Plot
	H      []*hbook.H1D

	// NaN counts the NaN values of each plot, which are not filled.
	NaN    []int64
	Events int64
}

// NewHists returns empty histograms of every plot in reg for s.
func NewHists(reg *Registry, s *sample.Sample) *Hists {
	hs := &Hists{
		Sample: s,
		Plots:  reg.Plots(),
		H:      make([]*hbook.H1D, reg.Len()),
		NaN:    make([]int64, reg.Len()),
	}
	for i, p := range hs.Plots {
		h := hbook.NewH1D(p.Binning.N, p.Binning.Low, p.Binning.High)
		h.Ann["name"] = p.Name + "_" + s.Name
		h.Ann["title"] = p.Title
		hs.H[i] = h
	}
	return hs
}

// Get returns the histogram of the plot called name.
func (hs *Hists) Get(name string) *hbook.H1D {
	for i, p := range hs.Plots {
		if p.Name == name {
			return hs.H[i]
		}
	}
	return nil
}

type fillOp struct {
	plot int
	x, w float64
}

func (hs *Hists) apply(ops []fillOp) {
	for _, op := range ops {
		if math.IsNaN(op.x) {
			hs.NaN[op.plot]++
			continue
		}
		hs.H[op.plot].Fill(op.x, op.w)
	}
	hs.Events++
}

// Filler runs the analysis sequence on every event of a sample and fills
// the registered plots, weighting each event by the sample's weight.
//
// Events are split into Workers contiguous shards processed concurrently;
// histograms are written by a single goroutine in the order batches
// arrive. Entries are identical for any number of workers. Bin sums are
// exact with equal event weights; otherwise they agree up to floating-point
// summation order.
type Filler struct {
	Registry *Registry
	Runner   *sequence.Runner
	Workers  int
	Logger   *slog.Logger

	// Progress, if set, is called once per processed event.
	Progress func()
}

func (fl *Filler) logger() *slog.Logger {
	if fl.Logger == nil {
		return slog.Default()
	}
	return fl.Logger
}

// Fill processes every event of srcs and returns the histograms of s.
// A malformed event aborts the fill with an error wrapping
// event.ErrMalformed.
func (fl *Filler) Fill(ctx context.Context, s *sample.Sample, srcs ...Source) (*Hists, error) {
	hs := NewHists(fl.Registry, s)
	for _, src := range srcs {
		fl.logger().Info("filling", "sample", s.Name, "input", src.Name(), "events", src.Entries())
		if err := fl.fill(ctx, hs, src); err != nil {
			return nil, fmt.Errorf("sample %q: %w", s.Name, err)
		}
	}
	for i, p := range hs.Plots {
		if hs.NaN[i] > 0 {
			fl.logger().Debug("skipped undefined values", "sample", s.Name, "plot", p.Name, "count", hs.NaN[i])
		}
	}
	return hs, nil
}

func (fl *Filler) fill(ctx context.Context, hs *Hists, src Source) error {
	var (
		ops     = make(chan []fillOp, 256)
		g, gctx = errgroup.WithContext(ctx)
		plots   = fl.Registry.Plots()
	)

	for _, shard := range shards(src.Entries(), fl.Workers) {
		beg, end := shard[0], shard[1]
		g.Go(func() error {
			var vals []float64
			return src.Scan(gctx, beg, end, func(idx int64, rec *event.Record) error {
				f, err := fl.Runner.Run(idx, rec)
				if err != nil {
					return err
				}
				w := hs.Sample.EventWeight(rec)

				var batch []fillOp
				for i, p := range plots {
					vals = p.Attribute.Values(vals[:0], rec, f)
					for _, x := range vals {
						batch = append(batch, fillOp{plot: i, x: x, w: w})
					}
				}

				select {
				case ops <- batch:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
		})
	}

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
		close(ops)
	}()

	for batch := range ops {
		hs.apply(batch)
		if fl.Progress != nil {
			fl.Progress()
		}
	}
	return <-done
}

// shards splits [0, n) into at most workers contiguous ranges.
func shards(n int64, workers int) [][2]int64 {
	if workers < 1 {
		workers = 1
	}
	if int64(workers) > n {
		workers = int(n)
	}
	if workers == 0 {
		return nil
	}

	var (
		out  = make([][2]int64, 0, workers)
		size = n / int64(workers)
		rem  = n % int64(workers)
		beg  int64
	)
	for i := 0; i < workers; i++ {
		end := beg + size
		if int64(i) < rem {
			end++
		}
		out = append(out, [2]int64{beg, end})
		beg = end
	}
	return out
}
