package event

import (
	"math"
)

const (
	// NoMatchDeltaR is reported as the minimum match distance when no
	// truth particle/jet pair was compared.
	NoMatchDeltaR = 1000.

	// NoJet is reported as the leading jet index of an event without jets.
	NoJet = -1
)

// Features are the quantities derived from one Record by the analysis
// stages. A fresh Features is created for every event.
type Features struct {
	MatchedJetMass    float64
	MinMatchDeltaR    float64
	LeadingJetIndex   int
	TripletDeltaRSums []float64
}

// NewFeatures returns Features holding the sentinel value of every field.
func NewFeatures() *Features {
	f := &Features{}
	f.Reset()
	return f
}

// Reset puts every field back to its sentinel value.
func (f *Features) Reset() {
	f.ResetMatch()
	f.LeadingJetIndex = NoJet
	f.TripletDeltaRSums = nil
}

// ResetMatch puts the truth-matching fields back to their sentinels.
func (f *Features) ResetMatch() {
	f.MatchedJetMass = math.NaN()
	f.MinMatchDeltaR = NoMatchDeltaR
}

// MatchedMass returns the mass of the jet matched to a truth particle, and
// whether a match was found.
func (f *Features) MatchedMass() (float64, bool) {
	if math.IsNaN(f.MatchedJetMass) {
		return 0, false
	}
	return f.MatchedJetMass, true
}

// MatchDeltaR returns the distance of the best truth/jet match, and whether
// a match was found.
func (f *Features) MatchDeltaR() (float64, bool) {
	if f.MinMatchDeltaR >= NoMatchDeltaR {
		return 0, false
	}
	return f.MinMatchDeltaR, true
}

// LeadingJet returns the index of the highest-pt jet, and whether the event
// has any jet.
func (f *Features) LeadingJet() (int, bool) {
	if f.LeadingJetIndex < 0 {
		return 0, false
	}
	return f.LeadingJetIndex, true
}

// Equal reports whether f and o hold the same values. NaN fields compare
// equal to each other.
func (f *Features) Equal(o *Features) bool {
	same := func(a, b float64) bool {
		return a == b || (math.IsNaN(a) && math.IsNaN(b))
	}
	if !same(f.MatchedJetMass, o.MatchedJetMass) ||
		!same(f.MinMatchDeltaR, o.MinMatchDeltaR) ||
		f.LeadingJetIndex != o.LeadingJetIndex ||
		len(f.TripletDeltaRSums) != len(o.TripletDeltaRSums) {
		return false
	}
	for i, v := range f.TripletDeltaRSums {
		if !same(v, o.TripletDeltaRSums[i]) {
			return false
		}
	}
	return true
}
