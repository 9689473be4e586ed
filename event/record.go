// Package event holds the per-event view over truth particles, jets and jet
// constituents, the features derived from it, and the angular geometry
// shared by every analysis stage.
package event

import (
	"go-hep.org/x/hep/fmom"
)

// Particles are the generator-level truth particles of an event, stored as
// parallel arrays of length N.
type Particles struct {
	N     int
	Pt    []float64
	Eta   []float64
	Phi   []float64
	Mass  []float64
	PdgID []int32
}

// P4 returns the 4-vector of truth particle i.
func (p *Particles) P4(i int) fmom.PtEtaPhiM {
	return fmom.NewPtEtaPhiM(p.Pt[i], p.Eta[i], p.Phi[i], p.Mass[i])
}

// Jets are the reconstructed jets of an event.
type Jets struct {
	N    int
	Pt   []float64
	Eta  []float64
	Phi  []float64
	Mass []float64
}

// P4 returns the 4-vector of jet i.
func (j *Jets) P4(i int) fmom.PtEtaPhiM {
	return fmom.NewPtEtaPhiM(j.Pt[i], j.Eta[i], j.Phi[i], j.Mass[i])
}

// Constituents are the particles clustered into jets. JetIndex maps each
// constituent to its owning jet.
type Constituents struct {
	N        int
	Pt       []float64
	Eta      []float64
	Phi      []float64
	Mass     []float64
	PdgID    []int32
	JetIndex []int32
}

// P4 returns the 4-vector of constituent i.
func (c *Constituents) P4(i int) fmom.PtEtaPhiM {
	return fmom.NewPtEtaPhiM(c.Pt[i], c.Eta[i], c.Phi[i], c.Mass[i])
}

// Record is a read-only snapshot of one event. A Record is owned by the
// reader that produced it and must not be modified while stages run.
type Record struct {
	Truth        Particles
	Jets         Jets
	Constituents Constituents
}

// Validate checks that every count is non-negative and that every parallel
// array matches its count. idx is the event index reported in the error.
func (r *Record) Validate(idx int64) error {
	check := func(field string, n, length int) error {
		if n < 0 || length != n {
			return &PreconditionError{Event: idx, Field: field, Count: n, Len: length}
		}
		return nil
	}

	truth := []struct {
		name string
		n    int
	}{
		{"truth.pt", len(r.Truth.Pt)},
		{"truth.eta", len(r.Truth.Eta)},
		{"truth.phi", len(r.Truth.Phi)},
		{"truth.mass", len(r.Truth.Mass)},
		{"truth.pdgId", len(r.Truth.PdgID)},
	}
	for _, v := range truth {
		if err := check(v.name, r.Truth.N, v.n); err != nil {
			return err
		}
	}

	jets := []struct {
		name string
		n    int
	}{
		{"jet.pt", len(r.Jets.Pt)},
		{"jet.eta", len(r.Jets.Eta)},
		{"jet.phi", len(r.Jets.Phi)},
		{"jet.mass", len(r.Jets.Mass)},
	}
	for _, v := range jets {
		if err := check(v.name, r.Jets.N, v.n); err != nil {
			return err
		}
	}

	cons := []struct {
		name string
		n    int
	}{
		{"cons.pt", len(r.Constituents.Pt)},
		{"cons.eta", len(r.Constituents.Eta)},
		{"cons.phi", len(r.Constituents.Phi)},
		{"cons.mass", len(r.Constituents.Mass)},
		{"cons.pdgId", len(r.Constituents.PdgID)},
		{"cons.jetIndex", len(r.Constituents.JetIndex)},
	}
	for _, v := range cons {
		if err := check(v.name, r.Constituents.N, v.n); err != nil {
			return err
		}
	}

	return nil
}
