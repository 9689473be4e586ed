// Package render draws filled histograms into image, vector and ROOT files.
package render

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot/vg"

	"github.com/decibelcooper/mtopcorr"
	"github.com/decibelcooper/mtopcorr/plots"
)

// Options control where and how plots are drawn.
type Options struct {
	// Dir is the directory the linear plots are written to. Log plots go to
	// its "_log" sub-directory; both then into Selection.
	Dir       string
	Selection string

	// Formats are file extensions: any image format gonum/plot can save
	// (png, pdf, svg, eps, ...) or "root" for a ROOT file of histograms.
	Formats []string

	// Lumi is the integrated luminosity in fb^-1 shown in the header.
	Lumi float64

	Width, Height vg.Length
}

func (o *Options) size() (vg.Length, vg.Length) {
	w, h := o.Width, o.Height
	if w == 0 {
		w = 6 * vg.Inch
	}
	if h == 0 {
		h = 4 * vg.Inch
	}
	return w, h
}

// OutputDir returns the directory of the linear or log plots.
func (o *Options) OutputDir(log bool) string {
	sub := ""
	if log {
		sub = "_log"
	}
	return filepath.Join(o.Dir, sub, o.Selection)
}

// Header returns the text drawn above every plot.
func Header(lumi float64) string {
	return fmt.Sprintf("CMS Simulation    L=%3.1f/fb (13 TeV)", lumi)
}

// Draw draws every plot of hists, one histogram per sample, once with a
// linear and once with a log y axis. Plots with no entries in any sample
// are skipped. It returns the number of plots drawn per axis scale.
func Draw(hists []*plots.Hists, opts Options, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(hists) == 0 {
		return 0, nil
	}

	drawn := 0
	for _, log := range []bool{false, true} {
		dir := opts.OutputDir(log)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return drawn, fmt.Errorf("could not create plot directory: %w", err)
		}

		drawn = 0
		for i, p := range hists[0].Plots {
			if empty(hists, i) {
				logger.Debug("skipping empty plot", "plot", p.Name)
				continue
			}
			if err := drawPlot(dir, hists, i, log, &opts); err != nil {
				return drawn, fmt.Errorf("plot %q: %w", p.Name, err)
			}
			drawn++
		}
		logger.Info("plots written", "dir", dir, "plots", drawn)
	}
	return drawn, nil
}

func empty(hists []*plots.Hists, i int) bool {
	for _, hs := range hists {
		h := hs.H[i]
		for bin := 0; bin < h.Len(); bin++ {
			if h.Value(bin) > 0 {
				return false
			}
		}
	}
	return true
}

func drawPlot(dir string, hists []*plots.Hists, i int, log bool, opts *Options) error {
	pl := hists[0].Plots[i]

	p := hplot.New()
	p.Title.Text = Header(opts.Lumi)
	p.X.Label.Text = pl.XLabel
	p.Y.Label.Text = pl.YLabel
	p.X.Tick.Marker = mtopcorr.PreciseTicks{NSuggestedTicks: 5}
	p.Legend.Top = true

	for _, hs := range hists {
		c := hs.Sample.Color
		if c == nil {
			c = color.Black
		}
		h := hplot.NewH1D(hs.H[i])
		h.FillColor = c
		h.LineStyle.Color = c
		h.Infos.Style = hplot.HInfoNone
		h.LogY = log

		p.Add(h)
		p.Legend.Add(hs.Sample.Name, h)
	}

	if log {
		p.Y.Scale = mtopcorr.LogScale{Floor: 0.03}
		p.Y.Tick.Marker = mtopcorr.LogTicks{}
		p.Y.Min = 0.03
	} else {
		p.Y.Tick.Marker = mtopcorr.PreciseTicks{NSuggestedTicks: 5}
		p.Y.Min = 0.001
	}

	w, h := opts.size()
	for _, format := range opts.Formats {
		fname := filepath.Join(dir, pl.Name+"."+format)
		if format == "root" {
			if err := writeROOT(fname, hists, i); err != nil {
				return err
			}
			continue
		}
		if err := p.Save(w, h, fname); err != nil {
			return fmt.Errorf("could not save %q: %w", fname, err)
		}
	}
	return nil
}

// writeROOT stores the histogram of plot i of every sample in fname, keyed
// by sample name.
func writeROOT(fname string, hists []*plots.Hists, i int) error {
	f, err := groot.Create(fname)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", fname, err)
	}
	for _, hs := range hists {
		if err := f.Put(hs.Sample.Name, rhist.NewH1DFrom(hs.H[i])); err != nil {
			f.Close()
			return fmt.Errorf("could not write %q to %q: %w", hs.Sample.Name, fname, err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("could not close %q: %w", fname, err)
	}
	return nil
}
