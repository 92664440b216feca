package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/flocksim/flocksim/sim"
	"github.com/flocksim/flocksim/sim/sweep"
	"github.com/flocksim/flocksim/sim/trace"
)

// FileConfig is the YAML accepted by --config. Every section is optional and
// omitted fields keep their defaults. Unknown keys are rejected so typos fail
// loudly.
type FileConfig struct {
	Arena          sim.Arena        `yaml:"arena"`
	Environment    string           `yaml:"environment"`
	EnvFile        string           `yaml:"env_file"`
	Params         sim.FlockParams  `yaml:"params"`
	Gains          sim.Gains        `yaml:"gains"`
	Seeds          []int64          `yaml:"seeds"`
	Steps          int              `yaml:"steps"`
	SampleEvery    int              `yaml:"sample_every"`
	CoverageRadius int              `yaml:"coverage_radius"`
	TraceLevel     trace.TraceLevel `yaml:"trace_level"`
	Sweep          SweepConfig      `yaml:"sweep"`
}

// SweepConfig is the sweep section of FileConfig.
type SweepConfig struct {
	Strategy   sweep.Strategy `yaml:"strategy"`
	Candidates int            `yaml:"candidates"`
	Levels     int            `yaml:"levels"`
	Bounds     sweep.Bounds   `yaml:"bounds"`
	SweepSeed  int64          `yaml:"sweep_seed"`
	Workers    int            `yaml:"workers"`
	Objective  string         `yaml:"objective"`
	Out        string         `yaml:"out"`
	Manifest   string         `yaml:"manifest"`
}

// defaultFileConfig returns the configuration used when no file is given.
func defaultFileConfig() FileConfig {
	rc := sim.DefaultRunConfig()
	return FileConfig{
		Arena:          rc.Arena,
		Environment:    sim.EnvDenseCafeteria,
		Params:         rc.Params,
		Seeds:          append([]int64(nil), sweep.DefaultSeeds...),
		Steps:          rc.Steps,
		SampleEvery:    rc.SampleEvery,
		CoverageRadius: rc.CoverageRadius,
		TraceLevel:     rc.TraceLevel,
		Sweep: SweepConfig{
			Strategy:   sweep.StrategyRandom,
			Candidates: 2000,
			Levels:     5,
			Bounds:     sweep.DefaultBounds(),
			SweepSeed:  1,
		},
	}
}

// loadFileConfig decodes path on top of the defaults with strict field checking.
func loadFileConfig(path string) (FileConfig, error) {
	cfg := defaultFileConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// environment resolves the obstacle layout: an env file wins over a preset name.
func (c FileConfig) environment() (*sim.Environment, error) {
	if c.EnvFile != "" {
		return loadEnvFile(c.EnvFile, c.Arena)
	}
	return sim.LookupEnvironment(c.Environment, c.Arena)
}

// runConfig builds the base run for env. Gains and Seed are set per run.
func (c FileConfig) runConfig(env *sim.Environment) sim.RunConfig {
	return sim.RunConfig{
		Arena:          c.Arena,
		Params:         c.Params,
		Gains:          c.Gains,
		Env:            env,
		Steps:          c.Steps,
		SampleEvery:    c.SampleEvery,
		CoverageRadius: c.CoverageRadius,
		TraceLevel:     c.TraceLevel,
	}
}
