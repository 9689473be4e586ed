package sample

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decibelcooper/mtopcorr/event"
)

const testConfig = `
lumi: 137.6
era: UL2017
workers: 4
formats: [png]
analysis:
  max_triplets: 20
branches:
  truth_mass: m
samples:
  - name: TTbar
    files: [a.root, b.root]
    color: "#1f77b4"
  - name: TTbar_mt171p5
    files: [c.root]
    tree: Friends
    weight: 0.5
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(testConfig))
	require.NoError(t, err)

	assert.Equal(t, 137.6, cfg.Lumi)
	assert.Equal(t, "UL2017", cfg.Era)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, []string{"png"}, cfg.Formats)
	assert.Equal(t, DefaultSelection, cfg.Selection)
	assert.Equal(t, DefaultPlotDirectory, cfg.PlotDirectory)

	assert.Equal(t, int32(6), cfg.Analysis.PdgID)
	assert.Equal(t, 0, cfg.Analysis.JetIndex)
	assert.Equal(t, 20, cfg.Analysis.MaxTriplets)

	assert.Equal(t, "PFJetAK8", cfg.Branches.Jet)
	assert.Equal(t, "m", cfg.Branches.TruthMass)

	samples, err := cfg.BuildSamples()
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, "TTbar", samples[0].Name)
	assert.Equal(t, []string{"a.root", "b.root"}, samples[0].Files)
	assert.Equal(t, DefaultTree, samples[0].Tree)
	assert.Equal(t, color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}, samples[0].Color)
	assert.Equal(t, 1., samples[0].EventWeight(&event.Record{}))

	assert.Equal(t, "Friends", samples[1].Tree)
	assert.Equal(t, 0.5, samples[1].EventWeight(&event.Record{}))
	assert.NotNil(t, samples[1].Color)
}

func TestParseConfigErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		raw  string
		msg  string
	}{
		{"bad yaml", "lumi: [", "could not parse config"},
		{"workers", "workers: 0", "invalid worker count"},
		{"cap", "analysis: {max_triplets: -1}", "invalid triplet cap"},
		{"unnamed", "samples: [{files: [a.root]}]", "has no name"},
		{"no files", "samples: [{name: x}]", "no input files"},
		{"duplicate", "samples: [{name: x, files: [a]}, {name: x, files: [b]}]", "duplicate sample"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tc.raw))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(fname, []byte(testConfig), 0o644))

	cfg, err := LoadConfig(fname)
	require.NoError(t, err)
	assert.Len(t, cfg.Samples, 2)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBuildSamplesBadColor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Samples = []SampleConfig{{Name: "x", Files: []string{"a"}, Color: "blue"}}
	_, err := cfg.BuildSamples()
	assert.ErrorContains(t, err, "invalid colour")
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff000080")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, A: 128}, c)

	c, err = ParseColor("00ff00")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{G: 255, A: 255}, c)

	_, err = ParseColor("#zzzzzz")
	assert.Error(t, err)
}

func TestEventWeight(t *testing.T) {
	s := &Sample{Name: "bare"}
	assert.Equal(t, 1., s.EventWeight(&event.Record{}))

	s.Weight = func(rec *event.Record) float64 { return float64(rec.Jets.N) }
	assert.Equal(t, 3., s.EventWeight(&event.Record{Jets: event.Jets{N: 3}}))
}
