package sequence

import (
	"math"

	"github.com/decibelcooper/mtopcorr/event"
)

// JetSelector finds the jet with the highest transverse momentum. The first
// jet reaching the maximum wins.
type JetSelector struct{}

func (s *JetSelector) Name() string { return "leading-jet" }

func (s *JetSelector) Process(rec *event.Record, f *event.Features) error {
	f.LeadingJetIndex = LeadingJet(&rec.Jets)
	if f.LeadingJetIndex == event.NoJet {
		return event.ErrNoCandidate
	}
	return nil
}

func (s *JetSelector) Clear(f *event.Features) {
	f.LeadingJetIndex = event.NoJet
}

// LeadingJet returns the index of the highest-pt jet, or event.NoJet.
func LeadingJet(jets *event.Jets) int {
	var (
		ptMax = math.Inf(-1)
		index = event.NoJet
	)
	for i := 0; i < jets.N; i++ {
		if jets.Pt[i] > ptMax {
			ptMax = jets.Pt[i]
			index = i
		}
	}
	return index
}
