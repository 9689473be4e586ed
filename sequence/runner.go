package sequence

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/decibelcooper/mtopcorr/event"
)

// Runner applies an ordered list of stages to events. A Runner holds no
// per-event state and may be shared by concurrent workers.
type Runner struct {
	stages []Stage
	stats  []stageStats
	logger *slog.Logger
}

type stageStats struct {
	processed   atomic.Int64
	noCandidate atomic.Int64
	failed      atomic.Int64
}

// StageStats counts the outcomes of one stage.
type StageStats struct {
	Name        string
	Processed   int64
	NoCandidate int64
	Failed      int64
}

// NewRunner returns a Runner applying stages in order. A nil logger selects
// slog.Default().
func NewRunner(logger *slog.Logger, stages ...Stage) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		stages: stages,
		stats:  make([]stageStats, len(stages)),
		logger: logger,
	}
}

// Stages returns the stages of the runner.
func (r *Runner) Stages() []Stage { return r.stages }

// Run validates rec and derives a fresh Features from it.
//
// A malformed record aborts with an error wrapping event.ErrMalformed.
// Stage failures do not: the failing stage's features are reset to their
// sentinels, the failure is logged and counted, and the next stage runs.
func (r *Runner) Run(idx int64, rec *event.Record) (*event.Features, error) {
	if err := rec.Validate(idx); err != nil {
		return nil, err
	}

	f := event.NewFeatures()
	for i, stage := range r.stages {
		st := &r.stats[i]
		st.processed.Add(1)

		err := runStage(stage, rec, f)
		switch {
		case err == nil:
		case errors.Is(err, event.ErrNoCandidate):
			st.noCandidate.Add(1)
			r.logger.Debug("no candidate", "event", idx, "stage", stage.Name())
		default:
			st.failed.Add(1)
			if c, ok := stage.(Clearer); ok {
				c.Clear(f)
			}
			r.logger.Warn("stage failed", "event", idx, "stage", stage.Name(), "error", err)
		}
	}
	return f, nil
}

func runStage(stage Stage, rec *event.Record, f *event.Features) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = fmt.Errorf("%w: %v", event.ErrMissingData, e)
		}
	}()
	return stage.Process(rec, f)
}

// Stats returns the per-stage counters accumulated so far.
func (r *Runner) Stats() []StageStats {
	out := make([]StageStats, len(r.stages))
	for i, stage := range r.stages {
		out[i] = StageStats{
			Name:        stage.Name(),
			Processed:   r.stats[i].processed.Load(),
			NoCandidate: r.stats[i].noCandidate.Load(),
			Failed:      r.stats[i].failed.Load(),
		}
	}
	return out
}

// LogStats writes the per-stage counters to the runner's logger.
func (r *Runner) LogStats() {
	for _, s := range r.Stats() {
		r.logger.Info("stage summary",
			"stage", s.Name,
			"processed", s.Processed,
			"no_candidate", s.NoCandidate,
			"failed", s.Failed,
		)
	}
}
