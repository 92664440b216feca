package sim

import (
	"fmt"
	"math"

	"github.com/flocksim/flocksim/sim/trace"
)

// Arena is the rectangular world the flock lives in, in pixels.
type Arena struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// DefaultArena matches the 800x600 window the environments were laid out for.
func DefaultArena() Arena {
	return Arena{Width: 800, Height: 600}
}

// Pixels returns the total pixel count of the arena.
func (a Arena) Pixels() int { return a.Width * a.Height }

// InBounds reports whether pixel (x, y) lies inside the arena.
func (a Arena) InBounds(x, y int) bool {
	return x >= 0 && x < a.Width && y >= 0 && y < a.Height
}

// Gains weights the three Reynolds rules.
type Gains struct {
	Cohesion   float64 `yaml:"k_coh"`
	Alignment  float64 `yaml:"k_ali"`
	Separation float64 `yaml:"k_col"`
}

// Array returns the gains in CSV column order (k_coh, k_ali, k_col).
func (g Gains) Array() [3]float64 {
	return [3]float64{g.Cohesion, g.Alignment, g.Separation}
}

func (g Gains) String() string {
	return fmt.Sprintf("k_coh=%.4f k_ali=%.4f k_col=%.4f", g.Cohesion, g.Alignment, g.Separation)
}

// Validate checks that every gain is finite and non-negative.
func (g Gains) Validate() error {
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"k_coh", g.Cohesion},
		{"k_ali", g.Alignment},
		{"k_col", g.Separation},
	} {
		if math.IsNaN(f.val) || math.IsInf(f.val, 0) {
			return fmt.Errorf("gains.%s must be a finite number, got %f", f.name, f.val)
		}
		if f.val < 0 {
			return fmt.Errorf("gains.%s must be non-negative, got %f", f.name, f.val)
		}
	}
	return nil
}

// BoundaryPolicy decides what happens to a boid that moves past an arena edge.
type BoundaryPolicy string

const (
	// BoundaryClamp pins the boid to the edge and reflects the crossing velocity component.
	BoundaryClamp BoundaryPolicy = "clamp"
	// BoundaryWrap wraps the boid to the opposite edge.
	BoundaryWrap BoundaryPolicy = "wrap"
	// BoundaryNone lets the boid leave the arena; only the wall force pushes back.
	BoundaryNone BoundaryPolicy = "none"
)

// UpdateOrder decides whether boids see each other's state from this step or the last.
type UpdateOrder string

const (
	// UpdateSequential moves boids in index order, in place.
	UpdateSequential UpdateOrder = "sequential"
	// UpdateSynchronous computes every acceleration from the same snapshot before moving anyone.
	UpdateSynchronous UpdateOrder = "synchronous"
)

var (
	validBoundaries = map[BoundaryPolicy]bool{BoundaryClamp: true, BoundaryWrap: true, BoundaryNone: true}
	validOrders     = map[UpdateOrder]bool{UpdateSequential: true, UpdateSynchronous: true}
)

// FlockParams holds the fixed physical parameters of the flock.
type FlockParams struct {
	NumBoids       int            `yaml:"num_boids"`
	NeighborRadius float64        `yaml:"neighbor_radius"`
	AvoidRadius    float64        `yaml:"avoid_radius"`
	MaxSpeed       float64        `yaml:"max_speed"`
	MaxAccel       float64        `yaml:"max_accel"`
	FOVDegrees     float64        `yaml:"fov_degrees"`
	WallGain       float64        `yaml:"k_wall"`
	ObstacleMargin float64        `yaml:"obstacle_margin"`
	ObstacleGain   float64        `yaml:"obstacle_gain"`
	SpawnMargin    float64        `yaml:"spawn_margin"`
	Epsilon        float64        `yaml:"epsilon"`
	Boundary       BoundaryPolicy `yaml:"boundary"`
	Update         UpdateOrder    `yaml:"update"`
}

// DefaultFlockParams returns the parameters the default gain ranges were tuned for.
func DefaultFlockParams() FlockParams {
	return FlockParams{
		NumBoids:       100,
		NeighborRadius: 50,
		AvoidRadius:    20,
		MaxSpeed:       5,
		MaxAccel:       0.5,
		FOVDegrees:     150,
		WallGain:       10,
		ObstacleMargin: 40,
		ObstacleGain:   500,
		SpawnMargin:    50,
		Epsilon:        1e-10,
		Boundary:       BoundaryClamp,
		Update:         UpdateSequential,
	}
}

// Validate checks parameter ranges. Arena is needed to bound the spawn margin.
func (p FlockParams) Validate(arena Arena) error {
	if p.NumBoids <= 0 {
		return fmt.Errorf("params.num_boids must be positive, got %d", p.NumBoids)
	}
	positive := []struct {
		name string
		val  float64
	}{
		{"neighbor_radius", p.NeighborRadius},
		{"max_speed", p.MaxSpeed},
		{"max_accel", p.MaxAccel},
		{"fov_degrees", p.FOVDegrees},
		{"epsilon", p.Epsilon},
	}
	for _, f := range positive {
		if err := validateFinitePositive("params."+f.name, f.val); err != nil {
			return err
		}
	}
	nonNegative := []struct {
		name string
		val  float64
	}{
		{"avoid_radius", p.AvoidRadius},
		{"k_wall", p.WallGain},
		{"obstacle_margin", p.ObstacleMargin},
		{"obstacle_gain", p.ObstacleGain},
		{"spawn_margin", p.SpawnMargin},
	}
	for _, f := range nonNegative {
		if math.IsNaN(f.val) || math.IsInf(f.val, 0) || f.val < 0 {
			return fmt.Errorf("params.%s must be a finite non-negative number, got %f", f.name, f.val)
		}
	}
	if p.FOVDegrees > 360 {
		return fmt.Errorf("params.fov_degrees must be at most 360, got %f", p.FOVDegrees)
	}
	if 2*p.SpawnMargin >= float64(arena.Width) || 2*p.SpawnMargin >= float64(arena.Height) {
		return fmt.Errorf("params.spawn_margin %.1f leaves no spawn area in a %dx%d arena", p.SpawnMargin, arena.Width, arena.Height)
	}
	if !validBoundaries[p.Boundary] {
		return fmt.Errorf("params.boundary: unknown policy %q; valid: clamp, wrap, none", p.Boundary)
	}
	if !validOrders[p.Update] {
		return fmt.Errorf("params.update: unknown order %q; valid: sequential, synchronous", p.Update)
	}
	return nil
}

// RunConfig fully determines one simulation run.
type RunConfig struct {
	Arena          Arena
	Params         FlockParams
	Gains          Gains
	Env            *Environment
	Seed           int64
	Steps          int
	SampleEvery    int
	CoverageRadius int
	TraceLevel     trace.TraceLevel
}

// DefaultRunConfig returns a run on the open arena with zero gains.
// Steps defaults to 60 seconds at 60 frames per second.
func DefaultRunConfig() RunConfig {
	arena := DefaultArena()
	return RunConfig{
		Arena:          arena,
		Params:         DefaultFlockParams(),
		Env:            OpenEnvironment(),
		Seed:           27,
		Steps:          3600,
		SampleEvery:    60,
		CoverageRadius: 2,
		TraceLevel:     trace.TraceLevelTimeline,
	}
}

// Validate checks every field of the run configuration.
func (c RunConfig) Validate() error {
	if c.Arena.Width <= 0 || c.Arena.Height <= 0 {
		return fmt.Errorf("arena must have positive dimensions, got %dx%d", c.Arena.Width, c.Arena.Height)
	}
	if err := c.Params.Validate(c.Arena); err != nil {
		return err
	}
	if err := c.Gains.Validate(); err != nil {
		return err
	}
	if c.Env == nil {
		return fmt.Errorf("environment is required")
	}
	if c.Steps < 0 {
		return fmt.Errorf("steps must be non-negative, got %d", c.Steps)
	}
	if c.SampleEvery <= 0 {
		return fmt.Errorf("sample_every must be positive, got %d", c.SampleEvery)
	}
	if c.CoverageRadius < 0 {
		return fmt.Errorf("coverage_radius must be non-negative, got %d", c.CoverageRadius)
	}
	if !trace.IsValidTraceLevel(string(c.TraceLevel)) {
		return fmt.Errorf("unknown trace level %q; valid: none, timeline, flock", c.TraceLevel)
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}
