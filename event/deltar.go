package event

import (
	"math"

	"go-hep.org/x/hep/fmom"
)

// DeltaPhi returns phi1-phi2 wrapped into (-pi, pi].
func DeltaPhi(phi1, phi2 float64) float64 {
	dphi := math.Mod(phi1-phi2, 2*math.Pi)
	switch {
	case dphi > math.Pi:
		dphi -= 2 * math.Pi
	case dphi <= -math.Pi:
		dphi += 2 * math.Pi
	}
	return dphi
}

// DeltaR returns the separation sqrt(deta^2 + dphi^2) of two directions in
// (eta, phi) space.
func DeltaR(eta1, phi1, eta2, phi2 float64) float64 {
	return math.Hypot(eta1-eta2, DeltaPhi(phi1, phi2))
}

// DeltaRP4 returns the DeltaR between two 4-vectors.
func DeltaRP4(p1, p2 fmom.P4) float64 {
	return DeltaR(p1.Eta(), p1.Phi(), p2.Eta(), p2.Phi())
}
