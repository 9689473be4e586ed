package sequence

import (
	"github.com/decibelcooper/mtopcorr/event"
)

// DefaultMaxTriplets is the number of triplets a Correlator accepts per
// event when MaxTriplets is not set.
const DefaultMaxTriplets = 10

// Triplet holds the constituent indices of an ordered triplet.
type Triplet struct {
	I, J, K int
}

// TripletIter enumerates ordered triplets of distinct members in
// lexicographic order of their positions, and stops after max triplets.
// A TripletIter cannot be restarted.
type TripletIter struct {
	members []int
	max     int
	n       int
	a, b, c int
	done    bool
}

// NewTripletIter returns an iterator over the triplets of members, which
// holds constituent indices in increasing order.
func NewTripletIter(members []int, max int) *TripletIter {
	return &TripletIter{
		members: members,
		max:     max,
		c:       -1,
		done:    len(members) < 3 || max <= 0,
	}
}

// Next returns the next triplet, or false once the triplets are exhausted
// or max triplets were returned.
func (it *TripletIter) Next() (Triplet, bool) {
	if it.done {
		return Triplet{}, false
	}

	n := len(it.members)
	for {
		it.c++
		if it.c >= n {
			it.c = -1
			it.b++
			if it.b >= n {
				it.b = 0
				it.a++
				if it.a >= n {
					it.done = true
					return Triplet{}, false
				}
			}
			continue
		}
		if it.a == it.b || it.c == it.a || it.c == it.b {
			continue
		}

		it.n++
		if it.n >= it.max {
			it.done = true
		}
		return Triplet{it.members[it.a], it.members[it.b], it.members[it.c]}, true
	}
}

// Count returns the number of triplets returned so far.
func (it *TripletIter) Count() int { return it.n }

// Correlator computes, for the constituents of one jet, the sum of the three
// pairwise DeltaR values of each ordered triplet of distinct constituents.
// Triplets are taken in index order and enumeration stops after MaxTriplets.
//
// Correlator always uses the jet at JetIndex, not the leading jet found by
// JetSelector.
type Correlator struct {
	JetIndex int

	// MaxTriplets caps the number of triplets per event. Zero or less
	// selects DefaultMaxTriplets.
	MaxTriplets int
}

func (c *Correlator) Name() string { return "correlator" }

func (c *Correlator) maxTriplets() int {
	if c.MaxTriplets <= 0 {
		return DefaultMaxTriplets
	}
	return c.MaxTriplets
}

// Members returns the indices of the constituents belonging to the jet.
func (c *Correlator) Members(cons *event.Constituents) []int {
	var members []int
	for i := 0; i < cons.N; i++ {
		if int(cons.JetIndex[i]) == c.JetIndex {
			members = append(members, i)
		}
	}
	return members
}

func (c *Correlator) Process(rec *event.Record, f *event.Features) error {
	var (
		cons = &rec.Constituents
		it   = NewTripletIter(c.Members(cons), c.maxTriplets())
		sums []float64
	)
	for t, ok := it.Next(); ok; t, ok = it.Next() {
		sums = append(sums, TripletSum(cons, t))
	}
	f.TripletDeltaRSums = sums
	return nil
}

func (c *Correlator) Clear(f *event.Features) {
	f.TripletDeltaRSums = nil
}

// TripletSum returns dR(i,j) + dR(i,k) + dR(j,k) for the constituents of t.
func TripletSum(cons *event.Constituents, t Triplet) float64 {
	p1 := cons.P4(t.I)
	p2 := cons.P4(t.J)
	p3 := cons.P4(t.K)
	return event.DeltaRP4(&p1, &p2) + event.DeltaRP4(&p1, &p3) + event.DeltaRP4(&p2, &p3)
}
