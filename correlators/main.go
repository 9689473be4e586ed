package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/profile"
	"github.com/schollz/progressbar/v3"

	"github.com/decibelcooper/mtopcorr"
	"github.com/decibelcooper/mtopcorr/plots"
	"github.com/decibelcooper/mtopcorr/reader"
	"github.com/decibelcooper/mtopcorr/render"
	"github.com/decibelcooper/mtopcorr/sample"
	"github.com/decibelcooper/mtopcorr/sequence"
)

var (
	configFile    = flag.String("config", "", "YAML run configuration")
	plotDir       = flag.String("plotdir", "", "root output directory")
	plotDirectory = flag.String("plot_directory", "", "output sub-directory (default "+sample.DefaultPlotDirectory+")")
	selection     = flag.String("selection", "", "selection label (default "+sample.DefaultSelection+")")
	era           = flag.String("era", "", "data-taking era (default "+sample.DefaultEra+")")
	lumi          = flag.Float64("lumi", 0, "integrated luminosity in fb^-1 shown on the plots")
	tree          = flag.String("tree", sample.DefaultTree, "name of the event tree")
	formats       = flag.String("formats", "", "comma separated output formats (default png,pdf,root)")
	workers       = flag.Int("workers", 0, "number of concurrent event workers")
	pdgID         = flag.Int("pdgid", 0, "truth particle code matched to jets")
	jetIndex      = flag.Int("jetindex", -1, "index of the jet whose constituents are correlated")
	maxTriplets   = flag.Int("maxtriplets", 0, "maximum number of constituent triplets per event")
	doProfile     = flag.Bool("profile", false, "write a CPU profile")

	logLevel mtopcorr.LevelFlag
	samples  mtopcorr.SampleFlags
)

func init() {
	flag.Var(&logLevel, "loglevel", "log level, one of "+strings.Join(mtopcorr.Levels, ", "))
	flag.Var(&samples, "sample", "sample as name=file[,file...]; may be repeated")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] [<nanoaod-input-files>...]

Input files given as arguments form a single sample named TTbar.

options:
`,
	)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		printUsage()
		log.Fatal(err)
	}
	if len(cfg.Samples) == 0 {
		printUsage()
		log.Fatal("Invalid arguments: no input samples")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel.Level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = withProfile(*doProfile, "", func() error {
		return run(ctx, cfg, logger)
	})
	if err != nil {
		logger.Error("run aborted", "error", err)
		stop()
		os.Exit(1)
	}
}

// withProfile calls fn, writing a CPU profile into dir (a temporary
// directory if empty) when enabled. The profile is stopped before
// withProfile returns, also when fn fails.
func withProfile(enabled bool, dir string, fn func() error) error {
	if enabled {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(dir)).Stop()
	}
	return fn()
}

// loadConfig reads the configuration file, if any, and applies the command
// line on top of it.
func loadConfig() (sample.Config, error) {
	cfg := sample.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = sample.LoadConfig(*configFile); err != nil {
			return cfg, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "plotdir":
			cfg.PlotDir = *plotDir
		case "plot_directory":
			cfg.PlotDirectory = *plotDirectory
		case "selection":
			cfg.Selection = *selection
		case "era":
			cfg.Era = *era
		case "lumi":
			cfg.Lumi = *lumi
		case "formats":
			cfg.Formats = strings.Split(*formats, ",")
		case "workers":
			cfg.Workers = *workers
		case "pdgid":
			cfg.Analysis.PdgID = int32(*pdgID)
		case "jetindex":
			cfg.Analysis.JetIndex = *jetIndex
		case "maxtriplets":
			cfg.Analysis.MaxTriplets = *maxTriplets
		}
	})

	for _, s := range samples.Samples {
		cfg.Samples = append(cfg.Samples, sample.SampleConfig{Name: s.Name, Files: s.Files, Tree: *tree})
	}
	if flag.NArg() > 0 {
		cfg.Samples = append(cfg.Samples, sample.SampleConfig{Name: "TTbar", Files: flag.Args(), Tree: *tree})
	}

	return cfg, cfg.Validate()
}

func run(ctx context.Context, cfg sample.Config, logger *slog.Logger) error {
	smpls, err := cfg.BuildSamples()
	if err != nil {
		return err
	}

	reg, err := plots.NewRegistry(plots.Default()...)
	if err != nil {
		return err
	}

	runner := sequence.NewRunner(logger,
		&sequence.Matcher{PdgID: cfg.Analysis.PdgID},
		&sequence.JetSelector{},
		&sequence.Correlator{JetIndex: cfg.Analysis.JetIndex, MaxTriplets: cfg.Analysis.MaxTriplets},
	)

	branches := reader.Branches{
		Truth:        cfg.Branches.Truth,
		Jet:          cfg.Branches.Jet,
		Constituents: cfg.Branches.Constituents,
		TruthMass:    cfg.Branches.TruthMass,
	}

	var hists []*plots.Hists
	for _, s := range smpls {
		var (
			srcs  []plots.Source
			total int64
		)
		for _, fname := range s.Files {
			t, err := reader.Open(fname, s.Tree, branches, logger)
			if err != nil {
				return err
			}
			srcs = append(srcs, t)
			total += t.Entries()
		}

		bar := progressbar.NewOptions64(total,
			progressbar.OptionSetDescription(s.Name),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
		filler := &plots.Filler{
			Registry: reg,
			Runner:   runner,
			Workers:  cfg.Workers,
			Logger:   logger,
			Progress: func() { bar.Add(1) },
		}

		hs, err := filler.Fill(ctx, s, srcs...)
		bar.Finish()
		if err != nil {
			return err
		}
		logger.Info("sample filled", "sample", s.Name, "events", hs.Events)
		hists = append(hists, hs)
	}
	runner.LogStats()

	opts := render.Options{
		Dir:       filepath.Join(cfg.PlotDir, "analysisPlots", cfg.PlotDirectory, cfg.Era),
		Selection: cfg.Selection,
		Formats:   cfg.Formats,
		Lumi:      cfg.Lumi,
	}
	if _, err := render.Draw(hists, opts, logger); err != nil {
		return err
	}

	logger.Info("Done", "prefix", cfg.Selection, "plot_directory", cfg.PlotDirectory)
	return nil
}
