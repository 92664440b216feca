package sweep

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flocksim/flocksim/sim"
)

// Manifest records how a sweep was run and what it found.
type Manifest struct {
	RunID       string       `yaml:"run_id"`
	CreatedAt   time.Time    `yaml:"created_at"`
	Strategy    Strategy     `yaml:"strategy"`
	Candidates  int          `yaml:"candidates"`
	Bounds      Bounds       `yaml:"bounds"`
	SweepSeed   int64        `yaml:"sweep_seed"`
	Seeds       []int64      `yaml:"seeds"`
	Workers     int          `yaml:"workers"`
	Environment string       `yaml:"environment"`
	Steps       int          `yaml:"steps"`
	NumBoids    int          `yaml:"num_boids"`
	Objective   string       `yaml:"objective"`
	Results     string       `yaml:"results"`
	Best        ManifestBest `yaml:"best"`
	WallTime    string       `yaml:"wall_time"`
}

// ManifestBest is the winning candidate.
type ManifestBest struct {
	Index   int       `yaml:"index"`
	Gains   sim.Gains `yaml:"gains"`
	Average float64   `yaml:"average"`
	Score   float64   `yaml:"score"`
}

// NewManifest fills the run-derived fields of a manifest from r.
func NewManifest(r *Report) *Manifest {
	best := r.Best()
	return &Manifest{
		RunID:      r.RunID,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
		Candidates: len(r.Results),
		Seeds:      r.Seeds,
		Workers:    r.Workers,
		Best: ManifestBest{
			Index:   best.Candidate.Index,
			Gains:   best.Candidate.Gains,
			Average: best.Coverage.Mean,
			Score:   best.Score,
		},
		WallTime: r.WallTime.Round(time.Millisecond).String(),
	}
}

// Save writes the manifest as YAML.
func (m *Manifest) Save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// LoadManifest reads a manifest, rejecting unknown fields.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}
