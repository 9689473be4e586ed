package sample

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTree          = "Events"
	DefaultLumi          = 60.
	DefaultEra           = "UL2018"
	DefaultPlotDirectory = "MTopCorrelations_v1"
	DefaultSelection     = "nAK82p-ptAK8"
)

// Config is the configuration of one analysis run.
type Config struct {
	// Lumi is the integrated luminosity in fb^-1 shown on the plots.
	Lumi float64 `yaml:"lumi"`
	Era  string  `yaml:"era"`

	// PlotDir is the root output directory; PlotDirectory and Selection
	// name the sub-directories the plots are written to.
	PlotDir       string `yaml:"plot_dir"`
	PlotDirectory string `yaml:"plot_directory"`
	Selection     string `yaml:"selection"`

	Formats []string `yaml:"formats"`
	Workers int      `yaml:"workers"`

	Analysis AnalysisConfig `yaml:"analysis"`
	Branches BranchConfig   `yaml:"branches"`
	Samples  []SampleConfig `yaml:"samples"`
}

// AnalysisConfig configures the analysis stages.
type AnalysisConfig struct {
	PdgID       int32 `yaml:"pdg_id"`
	JetIndex    int   `yaml:"jet_index"`
	MaxTriplets int   `yaml:"max_triplets"`
}

// BranchConfig names the tree branches holding each collection. Each name
// is the prefix of the collection's branches, so Jet "PFJetAK8" reads
// nPFJetAK8, PFJetAK8_pt and so on.
type BranchConfig struct {
	Truth        string `yaml:"truth"`
	Jet          string `yaml:"jet"`
	Constituents string `yaml:"constituents"`

	// TruthMass is the suffix of the truth mass branch.
	TruthMass string `yaml:"truth_mass"`
}

// SampleConfig describes one sample in the configuration file.
type SampleConfig struct {
	Name   string   `yaml:"name"`
	Files  []string `yaml:"files"`
	Tree   string   `yaml:"tree"`
	Color  string   `yaml:"color"`
	Weight *float64 `yaml:"weight"`
}

// DefaultConfig returns the configuration of the top-mass correlator
// analysis, without samples.
func DefaultConfig() Config {
	return Config{
		Lumi:          DefaultLumi,
		Era:           DefaultEra,
		PlotDir:       "plots",
		PlotDirectory: DefaultPlotDirectory,
		Selection:     DefaultSelection,
		Formats:       []string{"png", "pdf", "root"},
		Workers:       1,
		Analysis: AnalysisConfig{
			PdgID:       6,
			JetIndex:    0,
			MaxTriplets: 10,
		},
		Branches: BranchConfig{
			Truth:        "GenPart",
			Jet:          "PFJetAK8",
			Constituents: "PFJetAK8_cons",
			TruthMass:    "mass",
		},
	}
}

// LoadConfig reads a YAML configuration file. Fields absent from the file
// keep their DefaultConfig values.
func LoadConfig(fname string) (Config, error) {
	raw, err := os.ReadFile(fname)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config: %w", err)
	}
	return ParseConfig(raw)
}

// ParseConfig parses a YAML configuration on top of DefaultConfig.
func ParseConfig(raw []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("could not parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values no run can use.
func (cfg *Config) Validate() error {
	if cfg.Workers < 1 {
		return fmt.Errorf("invalid worker count %d", cfg.Workers)
	}
	if cfg.Analysis.MaxTriplets < 0 {
		return fmt.Errorf("invalid triplet cap %d", cfg.Analysis.MaxTriplets)
	}
	seen := make(map[string]bool)
	for i, s := range cfg.Samples {
		if s.Name == "" {
			return fmt.Errorf("sample %d has no name", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate sample %q", s.Name)
		}
		seen[s.Name] = true
		if len(s.Files) == 0 {
			return fmt.Errorf("sample %q has no input files", s.Name)
		}
	}
	return nil
}

// BuildSamples returns the samples described by the configuration.
func (cfg *Config) BuildSamples() ([]*Sample, error) {
	var samples []*Sample
	for i, sc := range cfg.Samples {
		s := New(i, sc.Name, sc.Files...)
		if sc.Tree != "" {
			s.Tree = sc.Tree
		}
		if sc.Color != "" {
			c, err := ParseColor(sc.Color)
			if err != nil {
				return nil, fmt.Errorf("sample %q: %w", sc.Name, err)
			}
			s.Color = c
		}
		if sc.Weight != nil {
			s.Weight = Constant(*sc.Weight)
		}
		samples = append(samples, s)
	}
	return samples, nil
}
