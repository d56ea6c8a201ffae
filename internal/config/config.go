package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/qecbench/montesweep/internal/slurm"
	"github.com/qecbench/montesweep/internal/sweep"
)

type Config struct {
	Simulator Simulator `yaml:"simulator"`
	Sweeps    []Sweep   `yaml:"sweeps"`
	Slurm     Slurm     `yaml:"slurm"`
	Local     Local     `yaml:"local"`
	Results   Results   `yaml:"results"`
}

type Simulator struct {
	Binary    string   `yaml:"binary"`
	ExtraArgs []string `yaml:"extra_args"`
}

type Sweep struct {
	Name            string    `yaml:"name"`
	Di              []int     `yaml:"di"`
	Dj              []int     `yaml:"dj"`
	T               []int     `yaml:"t"`
	NoiseRates      []float64 `yaml:"noise_rates"`
	ErasureAxis     bool      `yaml:"erasure_axis"`
	Decoder         string    `yaml:"decoder"`
	ErrorModel      string    `yaml:"error_model"`
	DecoderArgs     []string  `yaml:"decoder_args"`
	RuntimeStatsLog string    `yaml:"runtime_stats_log"`
	Stopping        Stopping  `yaml:"stopping"`
	AllowUnbounded  bool      `yaml:"allow_unbounded"`
}

type Stopping struct {
	MinErrorCases     int   `yaml:"min_error_cases"`
	MaxTrials         int64 `yaml:"max_trials"`
	TimeBudgetSeconds int   `yaml:"time_budget_seconds"`
}

type Slurm struct {
	CPUsPerTask int    `yaml:"cpus_per_task"`
	MemPerTask  string `yaml:"mem_per_task"`
	Time        string `yaml:"time"`
	Partition   string `yaml:"partition"`
}

type Local struct {
	Workers      int  `yaml:"workers"`
	ReservedCPUs int  `yaml:"reserved_cpus"`
	KeepGoing    bool `yaml:"keep_going"`
}

type Results struct {
	Dir     string `yaml:"dir"`
	JobsDir string `yaml:"jobs_dir"`
}

// Axes returns the sweep's axis vectors for expansion.
func (s *Sweep) Axes() sweep.Axes {
	return sweep.Axes{Di: s.Di, Dj: s.Dj, T: s.T, Rates: s.NoiseRates}
}

// Criteria returns the sweep's stopping bounds.
func (s *Sweep) Criteria() sweep.Criteria {
	return sweep.Criteria{
		MinErrorCases: s.Stopping.MinErrorCases,
		MaxTrials:     s.Stopping.MaxTrials,
		TimeBudget:    time.Duration(s.Stopping.TimeBudgetSeconds) * time.Second,
	}
}

// Resources returns the per-job cluster resource directives.
func (c *Config) Resources() slurm.Resources {
	return slurm.Resources{
		CPUsPerTask: c.Slurm.CPUsPerTask,
		MemPerTask:  c.Slurm.MemPerTask,
		Time:        c.Slurm.Time,
		Partition:   c.Slurm.Partition,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Simulator.Binary == "" {
		return fmt.Errorf("simulator binary is required")
	}
	if len(cfg.Sweeps) == 0 {
		return fmt.Errorf("no sweeps defined")
	}
	seen := make(map[string]bool)
	for i := range cfg.Sweeps {
		s := &cfg.Sweeps[i]
		if s.Name == "" {
			return fmt.Errorf("sweep %d: name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("sweep %q: duplicate name", s.Name)
		}
		seen[s.Name] = true
		if len(s.Di) == 0 {
			return fmt.Errorf("sweep %q: di axis is required", s.Name)
		}
		if len(s.Dj) != 0 && len(s.Dj) != len(s.Di) {
			return fmt.Errorf("sweep %q: dj axis length %d, want %d", s.Name, len(s.Dj), len(s.Di))
		}
		if len(s.T) != 0 && len(s.T) != len(s.Di) {
			return fmt.Errorf("sweep %q: t axis length %d, want %d", s.Name, len(s.T), len(s.Di))
		}
		if len(s.NoiseRates) == 0 {
			return fmt.Errorf("sweep %q: noise_rates axis is required", s.Name)
		}
		if s.Decoder == "" {
			return fmt.Errorf("sweep %q: decoder is required", s.Name)
		}
		if err := s.Criteria().Validate(s.AllowUnbounded); err != nil {
			return fmt.Errorf("sweep %q: %w", s.Name, err)
		}
	}
	if cfg.Slurm.CPUsPerTask < 1 {
		cfg.Slurm.CPUsPerTask = 1
	}
	if cfg.Slurm.MemPerTask == "" {
		cfg.Slurm.MemPerTask = "4G"
	}
	if cfg.Slurm.Time == "" {
		cfg.Slurm.Time = "01:00:00"
	}
	if cfg.Local.ReservedCPUs == 0 {
		cfg.Local.ReservedCPUs = 2
	}
	if cfg.Results.Dir == "" {
		cfg.Results.Dir = "results"
	}
	if cfg.Results.JobsDir == "" {
		cfg.Results.JobsDir = "jobs"
	}
	return nil
}
