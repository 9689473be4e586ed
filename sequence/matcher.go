package sequence

import (
	"math"

	"github.com/decibelcooper/mtopcorr/event"
)

// TopPdgID is the particle code of the top quark.
const TopPdgID = 6

// Matcher matches truth particles of one species to reconstructed jets.
//
// The match is global: the single (particle, jet) pair with the smallest
// DeltaR over all particles of the species wins, and the first pair found
// wins ties. Matcher fills MinMatchDeltaR and MatchedJetMass.
type Matcher struct {
	// PdgID is compared against the absolute value of the truth pdgId.
	PdgID int32
}

func (m *Matcher) Name() string { return "match" }

func (m *Matcher) Process(rec *event.Record, f *event.Features) error {
	var (
		minDR = event.NoMatchDeltaR
		mass  = math.NaN()
		found = false
	)

	for i := 0; i < rec.Truth.N; i++ {
		pdg := rec.Truth.PdgID[i]
		if pdg != m.PdgID && pdg != -m.PdgID {
			continue
		}

		truth := rec.Truth.P4(i)
		for j := 0; j < rec.Jets.N; j++ {
			jet := rec.Jets.P4(j)
			if dr := event.DeltaRP4(&truth, &jet); dr < minDR {
				minDR = dr
				mass = jet.M()
				found = true
			}
		}
	}

	f.MinMatchDeltaR = minDR
	f.MatchedJetMass = mass
	if !found {
		return event.ErrNoCandidate
	}
	return nil
}

func (m *Matcher) Clear(f *event.Features) {
	f.ResetMatch()
}
