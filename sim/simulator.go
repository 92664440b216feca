// sim/simulator.go
package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flocksim/flocksim/sim/trace"
)

// ErrNoFreeSpace is returned when boids cannot be placed outside obstacles.
var ErrNoFreeSpace = errors.New("no obstacle-free spawn position found")

// spawnAttemptsPerBoid bounds rejection sampling during spawn.
const spawnAttemptsPerBoid = 1000

// Simulator is the core object that holds the flock, the coverage grid and the step loop.
type Simulator struct {
	Config RunConfig
	Flock  []Boid
	Grid   *CoverageGrid
	Trace  *trace.SimulationTrace // nil when tracing is disabled
	// StepCount is the number of completed steps.
	StepCount int

	rng      *PartitionedRNG
	steer    steering
	scratch  []Vec2 // per-boid accelerations for synchronous updates
	snapshot []Boid // flock copy for synchronous updates
}

// NewSimulator validates cfg, builds the coverage grid and spawns the flock.
func NewSimulator(cfg RunConfig) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run config: %w", err)
	}
	if err := cfg.Env.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{
		Config: cfg,
		Grid:   NewCoverageGrid(cfg.Arena, cfg.Env.Obstacles, cfg.CoverageRadius),
		rng:    NewPartitionedRNG(NewSimulationKey(cfg.Seed)),
		steer:  newSteering(cfg),
	}
	if cfg.TraceLevel.Enabled() {
		s.Trace = trace.NewSimulationTrace(cfg.TraceLevel)
	}
	if err := s.spawn(); err != nil {
		return nil, err
	}
	if cfg.Params.Update == UpdateSynchronous {
		s.scratch = make([]Vec2, len(s.Flock))
		s.snapshot = make([]Boid, len(s.Flock))
	}
	return s, nil
}

// spawn places NumBoids boids uniformly inside the spawn margin, rejecting
// positions inside obstacles, each heading in a uniform direction at max speed.
func (s *Simulator) spawn() error {
	p := s.Config.Params
	rng := s.rng.ForSubsystem(SubsystemSpawn)
	w, h := float64(s.Config.Arena.Width), float64(s.Config.Arena.Height)
	s.Flock = make([]Boid, 0, p.NumBoids)
	budget := p.NumBoids * spawnAttemptsPerBoid
	for len(s.Flock) < p.NumBoids {
		if budget == 0 {
			return fmt.Errorf("%w: placed %d of %d boids in %q", ErrNoFreeSpace, len(s.Flock), p.NumBoids, s.Config.Env.Name)
		}
		budget--
		pos := V(uniform(rng, p.SpawnMargin, w-p.SpawnMargin), uniform(rng, p.SpawnMargin, h-p.SpawnMargin))
		if insideAny(s.Config.Env.Obstacles, pos) {
			continue
		}
		heading := uniform(rng, 0, 2*math.Pi)
		s.Flock = append(s.Flock, Boid{Pos: pos, Vel: FromAngle(heading).Scale(p.MaxSpeed)})
	}
	return nil
}

// Step advances the flock by one frame and stamps coverage for every boid.
func (s *Simulator) Step() {
	p := s.Config.Params
	switch p.Update {
	case UpdateSynchronous:
		copy(s.snapshot, s.Flock)
		for i := range s.snapshot {
			s.scratch[i] = Blend(s.steer.ComputeForces(s.snapshot, i).Priority(), p.MaxAccel)
		}
		for i := range s.Flock {
			s.move(i, s.scratch[i])
		}
	default:
		for i := range s.Flock {
			s.move(i, Blend(s.steer.ComputeForces(s.Flock, i).Priority(), p.MaxAccel))
		}
	}
	s.StepCount++
	if s.StepCount%s.Config.SampleEvery == 0 {
		s.sample()
	}
}

func (s *Simulator) move(i int, acc Vec2) {
	b := &s.Flock[i]
	integrate(b, acc, s.Config.Params.MaxSpeed)
	applyBoundary(b, s.Config.Arena, s.Config.Params.Boundary)
	s.Grid.Stamp(b.Pos)
}

func (s *Simulator) sample() {
	if s.Trace == nil {
		return
	}
	s.Trace.RecordSample(trace.Sample{
		Step:    s.StepCount,
		Visited: s.Grid.Visited(),
		Percent: s.Grid.CoveragePct(),
	})
	if s.Trace.Level == trace.TraceLevelFlock {
		s.Trace.RecordFlock(s.flockRecord())
	}
}

// flockRecord measures the centroid, spread, polarization and mean speed of the flock.
func (s *Simulator) flockRecord() trace.FlockRecord {
	n := float64(len(s.Flock))
	var centroid, heading Vec2
	var speed float64
	for _, b := range s.Flock {
		centroid = centroid.Add(b.Pos)
		heading = heading.Add(b.Vel.Normalize())
		speed += b.Vel.Len()
	}
	centroid = centroid.Div(n)
	var ss float64
	for _, b := range s.Flock {
		d := b.Pos.Dist(centroid)
		ss += d * d
	}
	return trace.FlockRecord{
		Step:         s.StepCount,
		CentroidX:    centroid.X,
		CentroidY:    centroid.Y,
		Spread:       math.Sqrt(ss / n),
		Polarization: heading.Div(n).Len(),
		MeanSpeed:    speed / n,
	}
}

// Run executes Config.Steps steps and returns the result. ctx is checked at
// every sample boundary; a cancelled run returns ctx.Err().
func (s *Simulator) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	if s.StepCount == 0 {
		s.sample()
	}
	logrus.Debugf("[seed %d] running %d steps with %d boids, %s", s.Config.Seed, s.Config.Steps, len(s.Flock), s.Config.Gains)
	for s.StepCount < s.Config.Steps {
		if s.StepCount%s.Config.SampleEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		s.Step()
	}
	if s.StepCount%s.Config.SampleEvery != 0 {
		s.sample()
	}
	res := s.Result()
	res.WallTime = time.Since(start)
	logrus.Debugf("[seed %d] finished: coverage %.2f%% in %v", s.Config.Seed, res.CoveragePct, res.WallTime)
	return res, nil
}

// Result snapshots the metrics of the run so far.
func (s *Simulator) Result() *RunResult {
	u, _ := s.Grid.Uniformity(s.Config.Params.Epsilon)
	return &RunResult{
		Seed:            s.Config.Seed,
		Gains:           s.Config.Gains,
		Steps:           s.StepCount,
		Visited:         s.Grid.Visited(),
		CoveragePct:     s.Grid.CoveragePct(),
		FreeCoveragePct: s.Grid.FreeCoveragePct(),
		Uniformity:      u,
		Trace:           s.Trace,
		Grid:            s.Grid,
	}
}

// RunOnce builds a simulator for cfg and runs it to completion.
func RunOnce(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	s, err := NewSimulator(cfg)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}
