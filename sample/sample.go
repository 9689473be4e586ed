// Package sample describes the simulated samples of an analysis run and the
// run configuration they are loaded from.
package sample

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gonum.org/v1/plot/plotutil"

	"github.com/decibelcooper/mtopcorr/event"
)

// WeightFunc returns the weight of one event of a sample.
type WeightFunc func(rec *event.Record) float64

// Constant returns a WeightFunc giving every event the weight w.
func Constant(w float64) WeightFunc {
	return func(*event.Record) float64 { return w }
}

// Sample is one simulated sample: the files holding its events, how to draw
// it and how to weight its events.
type Sample struct {
	Name   string
	Files  []string
	Tree   string
	Color  color.Color
	Weight WeightFunc
}

// New returns a sample with unit weight and the i-th default colour.
func New(i int, name string, files ...string) *Sample {
	return &Sample{
		Name:   name,
		Files:  files,
		Tree:   DefaultTree,
		Color:  plotutil.Color(i),
		Weight: Constant(1),
	}
}

// EventWeight returns the weight of rec in s. A sample without a WeightFunc
// weights every event by 1.
func (s *Sample) EventWeight(rec *event.Record) float64 {
	if s.Weight == nil {
		return 1
	}
	return s.Weight(rec)
}

// ParseColor parses a "#rrggbb" or "#rrggbbaa" colour.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
