package mtopcorr

import (
	"math"
	"strconv"

	"gonum.org/v1/plot"
)

// PreciseTicks places labelled major ticks on round values and unlabelled
// minor ticks between them.
type PreciseTicks struct {
	NSuggestedTicks int
}

func (t PreciseTicks) Ticks(min, max float64) []plot.Tick {
	if t.NSuggestedTicks < 2 {
		t.NSuggestedTicks = 4
	}
	if max <= min {
		return []plot.Tick{{Value: min, Label: formatFloatTick(min, -1)}}
	}

	majorMult, majorDelta := majorStep(min, max, t.NSuggestedTicks)

	var (
		ticks  []plot.Tick
		labels []float64
		val    = math.Floor(min/majorDelta) * majorDelta
	)
	for ; val <= max; val += majorDelta {
		if val >= min {
			labels = append(labels, val)
		}
	}
	top := math.Max(math.Abs(min), math.Abs(max))
	prec := int(math.Ceil(math.Log10(top)) - math.Floor(math.Log10(majorDelta)))
	for _, v := range labels {
		v = round(v, prec)
		ticks = append(ticks, plot.Tick{Value: v, Label: formatFloatTick(v, -1)})
	}

	minorDelta := majorDelta / 2
	switch majorMult {
	case 3, 6:
		minorDelta = majorDelta / 3
	case 5:
		minorDelta = majorDelta / 5
	}
	for val = math.Floor(min/minorDelta) * minorDelta; val <= max; val += minorDelta {
		if val < min || hasTick(ticks, val) {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: val})
	}
	return ticks
}

// majorStep returns the spacing of major ticks, as a multiple of a power of
// ten, giving about n ticks over [min, max].
func majorStep(min, max float64, n int) (int, float64) {
	tens := math.Pow10(int(math.Floor(math.Log10(max - min))))
	steps := (max - min) / tens
	for steps < float64(n)-1 {
		tens /= 10
		steps = (max - min) / tens
	}

	mult := int(steps / float64(n-1))
	switch mult {
	case 7:
		mult = 6
	case 9:
		mult = 8
	}
	return mult, float64(mult) * tens
}

func hasTick(ticks []plot.Tick, v float64) bool {
	for _, t := range ticks {
		if t.Value == v {
			return true
		}
	}
	return false
}

// LogTicks places a labelled tick on every power of ten in range and
// unlabelled ticks on its multiples.
type LogTicks struct{}

func (LogTicks) Ticks(min, max float64) []plot.Tick {
	if min <= 0 {
		min = math.SmallestNonzeroFloat64
	}
	if max <= min {
		return nil
	}

	var ticks []plot.Tick
	for exp := math.Floor(math.Log10(min)); exp <= math.Ceil(math.Log10(max)); exp++ {
		base := math.Pow10(int(exp))
		for mult := 1; mult < 10; mult++ {
			v := float64(mult) * base
			if v < min || v > max {
				continue
			}
			tick := plot.Tick{Value: v}
			if mult == 1 {
				tick.Label = formatFloatTick(v, -1)
			}
			ticks = append(ticks, tick)
		}
	}
	return ticks
}

// LogScale is a logarithmic axis scale. Non-positive values, such as empty
// histogram bins, are drawn at Floor instead of being undefined.
type LogScale struct {
	Floor float64
}

func (s LogScale) floor() float64 {
	if s.Floor <= 0 {
		return 1e-3
	}
	return s.Floor
}

func (s LogScale) Normalize(min, max, x float64) float64 {
	fl := s.floor()
	min = math.Max(min, fl)
	max = math.Max(max, min*10)
	x = math.Max(x, fl)
	logMin := math.Log(min)
	return (math.Log(x) - logMin) / (math.Log(max) - logMin)
}

func round(x float64, prec int) float64 {
	if x == 0 {
		// Make sure zero is returned
		// without the negative bit set.
		return 0
	}
	if prec >= 0 && x == math.Trunc(x) {
		return x
	}
	pow := math.Pow10(prec)
	intermed := x * pow
	if math.IsInf(intermed, 0) {
		return x
	}
	if x < 0 {
		x = math.Ceil(intermed - 0.5)
	} else {
		x = math.Floor(intermed + 0.5)
	}
	if x == 0 {
		return 0
	}
	return x / pow
}

func formatFloatTick(v float64, prec int) string {
	return strconv.FormatFloat(v, 'g', prec, 64)
}
