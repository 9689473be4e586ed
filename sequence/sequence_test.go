package sequence

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decibelcooper/mtopcorr/event"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func jets(pts ...float64) event.Jets {
	j := event.Jets{N: len(pts), Pt: pts}
	for i := range pts {
		j.Eta = append(j.Eta, 0.1*float64(i))
		j.Phi = append(j.Phi, 0.2*float64(i))
		j.Mass = append(j.Mass, 10*float64(i+1))
	}
	return j
}

// constituents builds constituents owned by the given jets, with distinct
// directions.
func constituents(jetIndex ...int32) event.Constituents {
	c := event.Constituents{N: len(jetIndex), JetIndex: jetIndex}
	for i := range jetIndex {
		x := float64(i)
		c.Pt = append(c.Pt, 10+x)
		c.Eta = append(c.Eta, 0.05*x*x-0.3)
		c.Phi = append(c.Phi, 0.3*x-1)
		c.Mass = append(c.Mass, 0.14)
		c.PdgID = append(c.PdgID, 211)
	}
	return c
}

func scenarioEvent() *event.Record {
	return &event.Record{
		Truth: event.Particles{
			N: 1, Pt: []float64{500}, Eta: []float64{0}, Phi: []float64{0},
			Mass: []float64{172}, PdgID: []int32{6},
		},
		Jets: event.Jets{
			N: 1, Pt: []float64{480}, Eta: []float64{0.01}, Phi: []float64{0.02},
			Mass: []float64{170},
		},
		Constituents: constituents(0, 0),
	}
}

func TestJetSelector(t *testing.T) {
	for _, tc := range []struct {
		name string
		pts  []float64
		want int
	}{
		{"no jets", nil, -1},
		{"one jet", []float64{30}, 0},
		{"one jet at zero pt", []float64{0}, 0},
		{"leading second", []float64{30, 50, 40}, 1},
		{"tie keeps first", []float64{50, 20, 50}, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := &event.Record{Jets: jets(tc.pts...)}
			f := event.NewFeatures()
			err := (&JetSelector{}).Process(rec, f)
			assert.Equal(t, tc.want, f.LeadingJetIndex)
			if tc.want < 0 {
				assert.ErrorIs(t, err, event.ErrNoCandidate)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMatcher(t *testing.T) {
	t.Run("scenario", func(t *testing.T) {
		f := event.NewFeatures()
		require.NoError(t, (&Matcher{PdgID: TopPdgID}).Process(scenarioEvent(), f))
		assert.InDelta(t, 0.0224, f.MinMatchDeltaR, 1e-4)
		assert.Equal(t, 170., f.MatchedJetMass)
	})

	t.Run("no top", func(t *testing.T) {
		rec := scenarioEvent()
		rec.Truth.PdgID[0] = 5
		f := event.NewFeatures()
		err := (&Matcher{PdgID: TopPdgID}).Process(rec, f)
		assert.ErrorIs(t, err, event.ErrNoCandidate)
		assert.True(t, math.IsNaN(f.MatchedJetMass))
		assert.Equal(t, event.NoMatchDeltaR, f.MinMatchDeltaR)
	})

	t.Run("no jets", func(t *testing.T) {
		rec := scenarioEvent()
		rec.Jets = event.Jets{}
		f := event.NewFeatures()
		err := (&Matcher{PdgID: TopPdgID}).Process(rec, f)
		assert.ErrorIs(t, err, event.ErrNoCandidate)
		assert.True(t, math.IsNaN(f.MatchedJetMass))
	})

	t.Run("global best over anti-top", func(t *testing.T) {
		rec := &event.Record{
			Truth: event.Particles{
				N:     3,
				Pt:    []float64{400, 100, 300},
				Eta:   []float64{1.5, 0, -1},
				Phi:   []float64{2, 0, -2},
				Mass:  []float64{172, 4.8, 172},
				PdgID: []int32{6, 5, -6},
			},
			Jets: event.Jets{
				N:    3,
				Pt:   []float64{350, 410, 90},
				Eta:  []float64{-1.05, 1.2, 0},
				Phi:  []float64{-2.0, 2.1, 0},
				Mass: []float64{165, 180, 12},
			},
		}
		f := event.NewFeatures()
		require.NoError(t, (&Matcher{PdgID: TopPdgID}).Process(rec, f))
		assert.Equal(t, 165., f.MatchedJetMass)
		assert.InDelta(t, 0.05, f.MinMatchDeltaR, 1e-9)
	})

	t.Run("tie keeps first pair", func(t *testing.T) {
		rec := &event.Record{
			Truth: event.Particles{
				N: 1, Pt: []float64{1}, Eta: []float64{0}, Phi: []float64{0},
				Mass: []float64{172}, PdgID: []int32{6},
			},
			Jets: event.Jets{
				N: 2, Pt: []float64{1, 2}, Eta: []float64{0.1, -0.1}, Phi: []float64{0, 0},
				Mass: []float64{150, 160},
			},
		}
		f := event.NewFeatures()
		require.NoError(t, (&Matcher{PdgID: TopPdgID}).Process(rec, f))
		assert.Equal(t, 150., f.MatchedJetMass)
	})
}

// naiveTriplets is the capped triple loop the iterator replaces, with the cap
// checked on entry to every level.
func naiveTriplets(jetIndex []int32, jet int32, max int) []Triplet {
	var out []Triplet
	n := len(jetIndex)
	for i := 0; i < n; i++ {
		if len(out) >= max {
			break
		}
		if jetIndex[i] != jet {
			continue
		}
		for j := 0; j < n; j++ {
			if len(out) >= max {
				break
			}
			if jetIndex[j] != jet || i == j {
				continue
			}
			for k := 0; k < n; k++ {
				if len(out) >= max {
					break
				}
				if jetIndex[k] != jet || i == k || j == k {
					continue
				}
				out = append(out, Triplet{i, j, k})
			}
		}
	}
	return out
}

func collect(it *TripletIter) []Triplet {
	var out []Triplet
	for t, ok := it.Next(); ok; t, ok = it.Next() {
		out = append(out, t)
	}
	return out
}

func TestTripletIterPermutations(t *testing.T) {
	got := collect(NewTripletIter([]int{0, 1, 2}, 10))
	assert.Equal(t, []Triplet{
		{0, 1, 2}, {0, 2, 1},
		{1, 0, 2}, {1, 2, 0},
		{2, 0, 1}, {2, 1, 0},
	}, got)
}

func TestTripletIterSmall(t *testing.T) {
	assert.Empty(t, collect(NewTripletIter(nil, 10)))
	assert.Empty(t, collect(NewTripletIter([]int{4}, 10)))
	assert.Empty(t, collect(NewTripletIter([]int{4, 7}, 10)))
	assert.Empty(t, collect(NewTripletIter([]int{1, 2, 3}, 0)))
}

func TestTripletIterExhausted(t *testing.T) {
	it := NewTripletIter([]int{0, 1, 2, 3}, 5)
	assert.Len(t, collect(it), 5)
	assert.Equal(t, 5, it.Count())

	_, ok := it.Next()
	assert.False(t, ok)
	_, ok = it.Next()
	assert.False(t, ok)
	assert.Equal(t, 5, it.Count())
}

func TestTripletIterMatchesNaiveLoop(t *testing.T) {
	layouts := [][]int32{
		{0, 0, 0},
		{0, 1, 0, 0, 1},
		{1, 0, 2, 0, 0, 1, 0},
		{0, 0, 0, 0, 0, 0},
		{1, 1, 1, 0},
		{0, 0, 1, 1, 0, 0, 0, 2, 0},
	}
	for _, layout := range layouts {
		for _, max := range []int{1, 3, 6, 10, 24, 1000} {
			c := &Correlator{JetIndex: 0, MaxTriplets: max}
			members := c.Members(&event.Constituents{N: len(layout), JetIndex: layout})

			got := collect(NewTripletIter(members, max))
			want := naiveTriplets(layout, 0, max)
			assert.Equal(t, want, got, "layout=%v max=%d", layout, max)
		}
	}
}

func TestCorrelator(t *testing.T) {
	t.Run("three constituents", func(t *testing.T) {
		rec := &event.Record{Jets: jets(100), Constituents: constituents(0, 0, 0)}
		f := event.NewFeatures()
		require.NoError(t, (&Correlator{MaxTriplets: 10}).Process(rec, f))
		require.Len(t, f.TripletDeltaRSums, 6)

		// the sum of a triplet does not depend on its ordering
		for _, v := range f.TripletDeltaRSums {
			assert.InDelta(t, f.TripletDeltaRSums[0], v, 1e-12)
		}
		want := TripletSum(&rec.Constituents, Triplet{0, 1, 2})
		assert.Equal(t, want, f.TripletDeltaRSums[0])
	})

	t.Run("default cap", func(t *testing.T) {
		rec := &event.Record{Jets: jets(100), Constituents: constituents(0, 0, 0, 0, 0, 0)}
		f := event.NewFeatures()
		require.NoError(t, (&Correlator{}).Process(rec, f))
		assert.Len(t, f.TripletDeltaRSums, DefaultMaxTriplets)
	})

	t.Run("other jets ignored", func(t *testing.T) {
		rec := &event.Record{Jets: jets(100, 200), Constituents: constituents(1, 0, 1, 1, 0)}
		f := event.NewFeatures()
		require.NoError(t, (&Correlator{JetIndex: 0}).Process(rec, f))
		assert.Empty(t, f.TripletDeltaRSums)

		require.NoError(t, (&Correlator{JetIndex: 1}).Process(rec, f))
		assert.Len(t, f.TripletDeltaRSums, 6)
	})

	t.Run("identical kinematics are distinct", func(t *testing.T) {
		cons := event.Constituents{
			N:        3,
			Pt:       []float64{5, 5, 5},
			Eta:      []float64{0.2, 0.2, 0.2},
			Phi:      []float64{1, 1, 1},
			Mass:     []float64{0, 0, 0},
			PdgID:    []int32{22, 22, 22},
			JetIndex: []int32{0, 0, 0},
		}
		f := event.NewFeatures()
		require.NoError(t, (&Correlator{}).Process(&event.Record{Constituents: cons}, f))
		assert.Equal(t, []float64{0, 0, 0, 0, 0, 0}, f.TripletDeltaRSums)
	})
}

func TestRunnerScenario(t *testing.T) {
	r := NewRunner(discard(), Default()...)
	f, err := r.Run(0, scenarioEvent())
	require.NoError(t, err)

	assert.InDelta(t, 0.0224, f.MinMatchDeltaR, 1e-4)
	assert.Equal(t, 170., f.MatchedJetMass)
	assert.Equal(t, 0, f.LeadingJetIndex)
	assert.Empty(t, f.TripletDeltaRSums)
}

func TestRunnerEmptyEvent(t *testing.T) {
	r := NewRunner(discard(), Default()...)
	f, err := r.Run(0, &event.Record{})
	require.NoError(t, err)
	assert.True(t, f.Equal(event.NewFeatures()))

	stats := r.Stats()
	require.Len(t, stats, 3)
	assert.Equal(t, int64(1), stats[0].NoCandidate)
	assert.Equal(t, int64(1), stats[1].NoCandidate)
	for _, s := range stats {
		assert.Equal(t, int64(1), s.Processed)
		assert.Zero(t, s.Failed)
	}
}

func TestRunnerIdempotent(t *testing.T) {
	rec := &event.Record{
		Truth:        scenarioEvent().Truth,
		Jets:         jets(120, 300, 80),
		Constituents: constituents(0, 0, 1, 0, 0, 2),
	}
	r := NewRunner(discard(), Default()...)

	f1, err := r.Run(7, rec)
	require.NoError(t, err)
	f2, err := r.Run(7, rec)
	require.NoError(t, err)

	assert.True(t, f1.Equal(f2))
	assert.Equal(t, 1, f1.LeadingJetIndex)
	assert.Len(t, f1.TripletDeltaRSums, 10)
}

type panicStage struct{}

func (panicStage) Name() string { return "panic" }

func (panicStage) Process(rec *event.Record, f *event.Features) error {
	f.LeadingJetIndex = 3
	_ = rec.Jets.Pt[5]
	return nil
}

func (panicStage) Clear(f *event.Features) {
	f.LeadingJetIndex = event.NoJet
}

type failStage struct{ err error }

func (s failStage) Name() string { return "fail" }

func (s failStage) Process(*event.Record, *event.Features) error { return s.err }

func TestRunnerIsolatesStageFailures(t *testing.T) {
	stages := append([]Stage{panicStage{}, failStage{errors.New("boom")}}, Default()[2])
	r := NewRunner(discard(), stages...)

	rec := &event.Record{Jets: jets(100), Constituents: constituents(0, 0, 0)}
	f, err := r.Run(1, rec)
	require.NoError(t, err)

	assert.Equal(t, event.NoJet, f.LeadingJetIndex)
	assert.Len(t, f.TripletDeltaRSums, 6)

	stats := r.Stats()
	assert.Equal(t, int64(1), stats[0].Failed)
	assert.Equal(t, int64(1), stats[1].Failed)
	assert.Zero(t, stats[2].Failed)
}

func TestRunStageRecoversMissingData(t *testing.T) {
	err := runStage(panicStage{}, &event.Record{}, event.NewFeatures())
	assert.ErrorIs(t, err, event.ErrMissingData)
}

func TestRunnerMalformed(t *testing.T) {
	rec := scenarioEvent()
	rec.Constituents.JetIndex = rec.Constituents.JetIndex[:1]

	r := NewRunner(discard(), Default()...)
	f, err := r.Run(12, rec)
	assert.Nil(t, f)
	require.ErrorIs(t, err, event.ErrMalformed)
	assert.Contains(t, err.Error(), "event 12")
	assert.Contains(t, err.Error(), "cons.jetIndex")
}
