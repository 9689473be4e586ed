// Package plots holds the registry of plotted quantities and fills their
// histograms from event features.
package plots

import (
	"fmt"
	"math"

	"github.com/decibelcooper/mtopcorr/event"
)

// Binning is a fixed-width histogram binning.
type Binning struct {
	N    int
	Low  float64
	High float64
}

// Attribute extracts the values of a plotted quantity from one event.
// Values appends them to dst and returns the result; one histogram entry is
// filled per value.
type Attribute interface {
	Values(dst []float64, rec *event.Record, f *event.Features) []float64
}

// Scalar is an Attribute with exactly one value per event.
type Scalar func(rec *event.Record, f *event.Features) float64

func (fn Scalar) Values(dst []float64, rec *event.Record, f *event.Features) []float64 {
	return append(dst, fn(rec, f))
}

// Vector is an Attribute with any number of values per event.
type Vector func(rec *event.Record, f *event.Features) []float64

func (fn Vector) Values(dst []float64, rec *event.Record, f *event.Features) []float64 {
	return append(dst, fn(rec, f)...)
}

// Plot describes one histogrammed quantity.
type Plot struct {
	Name string

	// XLabel and YLabel are the plain-text axis labels drawn on images.
	// Title is the x axis in ROOT TLatex markup, stored with the
	// histogram in .root output.
	XLabel    string
	YLabel    string
	Title     string
	Attribute Attribute
	Binning   Binning
}

// Registry is an ordered set of plots with unique names.
type Registry struct {
	plots []Plot
	index map[string]int
}

// NewRegistry returns a registry holding plots.
func NewRegistry(plots ...Plot) (*Registry, error) {
	r := &Registry{index: make(map[string]int)}
	for _, p := range plots {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends p to the registry.
func (r *Registry) Register(p Plot) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("plot has no name")
	case p.Attribute == nil:
		return fmt.Errorf("plot %q has no attribute", p.Name)
	case p.Binning.N <= 0 || !(p.Binning.Low < p.Binning.High):
		return fmt.Errorf("plot %q has invalid binning %v", p.Name, p.Binning)
	}
	if _, dup := r.index[p.Name]; dup {
		return fmt.Errorf("duplicate plot %q", p.Name)
	}
	r.index[p.Name] = len(r.plots)
	r.plots = append(r.plots, p)
	return nil
}

// Plots returns the registered plots in registration order.
func (r *Registry) Plots() []Plot { return r.plots }

// Len returns the number of registered plots.
func (r *Registry) Len() int { return len(r.plots) }

// Lookup returns the plot called name.
func (r *Registry) Lookup(name string) (Plot, bool) {
	i, ok := r.index[name]
	if !ok {
		return Plot{}, false
	}
	return r.plots[i], true
}

func jetAt(jets *event.Jets, i int, v []float64) float64 {
	if i < 0 || i >= jets.N {
		return math.NaN()
	}
	return v[i]
}

// Default returns the plots of the top-mass correlator analysis.
func Default() []Plot {
	return []Plot{
		{
			Name: "nAK8", Title: "Number of AK8 jets",
			XLabel: "Number of AK8 jets", YLabel: "Number of Events",
			Attribute: Scalar(func(rec *event.Record, _ *event.Features) float64 {
				return float64(rec.Jets.N)
			}),
			Binning: Binning{11, -0.5, 10.5},
		},
		{
			Name: "index_ptmax", Title: "Index of AK8 jet with largest p_{T}",
			XLabel: "Index of AK8 jet with largest pT", YLabel: "Number of Events",
			Attribute: Scalar(func(_ *event.Record, f *event.Features) float64 {
				return float64(f.LeadingJetIndex)
			}),
			Binning: Binning{11, -0.5, 10.5},
		},
		{
			Name: "mjet_matched", Title: "matched m_{jet} [GeV]",
			XLabel: "matched jet mass [GeV]", YLabel: "Number of Events",
			Attribute: Scalar(func(_ *event.Record, f *event.Features) float64 {
				return f.MatchedJetMass
			}),
			Binning: Binning{25, 0, 500},
		},
		{
			Name: "minDR_matched", Title: "#Delta R(top, AK8)",
			XLabel: "ΔR(top, AK8)", YLabel: "Number of Events",
			Attribute: Scalar(func(_ *event.Record, f *event.Features) float64 {
				return f.MinMatchDeltaR
			}),
			Binning: Binning{25, 0, 7},
		},
		{
			Name: "mjet", Title: "m_{jet} [GeV]",
			XLabel: "jet mass [GeV]", YLabel: "Number of Events",
			Attribute: Scalar(func(rec *event.Record, _ *event.Features) float64 {
				return jetAt(&rec.Jets, 0, rec.Jets.Mass)
			}),
			Binning: Binning{25, 0, 500},
		},
		{
			Name: "ptjet", Title: "Leading AK8 jet p_{T} [GeV]",
			XLabel: "Leading AK8 jet pT [GeV]", YLabel: "Number of Events",
			Attribute: Scalar(func(rec *event.Record, _ *event.Features) float64 {
				return jetAt(&rec.Jets, 0, rec.Jets.Pt)
			}),
			Binning: Binning{25, 0, 500},
		},
		{
			Name: "triplet_deltaR", Title: "#Sigma #Delta R of constituent triplets",
			XLabel: "ΣΔR of constituent triplets", YLabel: "Number of Triplets",
			Attribute: Vector(func(_ *event.Record, f *event.Features) []float64 {
				return f.TripletDeltaRSums
			}),
			Binning: Binning{10, 0, 10},
		},
	}
}
