// Package sequence implements the analysis stages that derive event features
// and the Runner applying them, in order, to each event.
package sequence

import (
	"github.com/decibelcooper/mtopcorr/event"
)

// Stage derives features from a Record. Process reads the record and the
// features filled by earlier stages and writes its own fields of f. A stage
// keeps no state between events.
type Stage interface {
	Name() string
	Process(rec *event.Record, f *event.Features) error
}

// Clearer is implemented by stages that can put the fields they own back to
// their sentinels. The Runner calls Clear when Process fails.
type Clearer interface {
	Clear(f *event.Features)
}

// Default returns the stages of the top-mass correlator analysis: match to
// the top quark, find the leading jet, compute triplet correlators.
func Default() []Stage {
	return []Stage{
		&Matcher{PdgID: TopPdgID},
		&JetSelector{},
		&Correlator{JetIndex: 0, MaxTriplets: DefaultMaxTriplets},
	}
}
