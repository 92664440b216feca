package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flocksim/flocksim/sim/trace"
)

func TestRunOnce_SameSeedIsDeterministic(t *testing.T) {
	// GIVEN two runs with identical configuration
	a, err := RunOnce(context.Background(), smallConfig(27))
	require.NoError(t, err)
	b, err := RunOnce(context.Background(), smallConfig(27))
	require.NoError(t, err)

	// THEN every metric and every visit count matches
	assert.Equal(t, a.Visited, b.Visited)
	assert.Equal(t, a.CoveragePct, b.CoveragePct)
	assert.Equal(t, a.Uniformity, b.Uniformity)
	assert.Equal(t, a.Grid.Counts(), b.Grid.Counts())
	assert.Equal(t, a.Trace.Samples, b.Trace.Samples)
}

func TestNewSimulator_DifferentSeedsSpawnDifferently(t *testing.T) {
	a, err := NewSimulator(smallConfig(27))
	require.NoError(t, err)
	b, err := NewSimulator(smallConfig(729))
	require.NoError(t, err)
	assert.NotEqual(t, a.Flock, b.Flock)
}

func TestNewSimulator_SpawnRespectsMarginAndObstacles(t *testing.T) {
	cfg := DefaultRunConfig()
	env, err := LookupEnvironment(EnvDenseCafeteria, cfg.Arena)
	require.NoError(t, err)
	cfg.Env = env

	s, err := NewSimulator(cfg)
	require.NoError(t, err)

	require.Len(t, s.Flock, cfg.Params.NumBoids)
	m := cfg.Params.SpawnMargin
	for i, b := range s.Flock {
		assert.GreaterOrEqual(t, b.Pos.X, m, "boid %d", i)
		assert.Less(t, b.Pos.X, float64(cfg.Arena.Width)-m, "boid %d", i)
		assert.GreaterOrEqual(t, b.Pos.Y, m, "boid %d", i)
		assert.Less(t, b.Pos.Y, float64(cfg.Arena.Height)-m, "boid %d", i)
		assert.False(t, insideAny(env.Obstacles, b.Pos), "boid %d spawned inside an obstacle", i)
		assert.InDelta(t, cfg.Params.MaxSpeed, b.Vel.Len(), 1e-9, "boid %d", i)
	}
}

func TestNewSimulator_NoFreeSpace(t *testing.T) {
	cfg := smallConfig(1)
	cfg.Params.NumBoids = 3
	cfg.Env = &Environment{Name: "blocked", Obstacles: []Obstacle{Circle(V(100, 75), 1000)}}

	_, err := NewSimulator(cfg)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoFreeSpace))
}

func TestNewSimulator_InvalidConfig(t *testing.T) {
	cfg := smallConfig(1)
	cfg.SampleEvery = 0
	_, err := NewSimulator(cfg)
	assert.Error(t, err)

	cfg = smallConfig(1)
	cfg.Env = &Environment{Name: "bad", Obstacles: []Obstacle{Circle(V(10, 10), -1)}}
	_, err = NewSimulator(cfg)
	assert.Error(t, err)
}

func TestStep_Invariants(t *testing.T) {
	for _, order := range []UpdateOrder{UpdateSequential, UpdateSynchronous} {
		t.Run(string(order), func(t *testing.T) {
			// GIVEN a crowded clamp-bounded arena with strong gains
			cfg := smallConfig(4913)
			cfg.Params.NumBoids = 40
			cfg.Params.Update = order
			cfg.Gains = Gains{Cohesion: 0.5, Alignment: 0.1, Separation: 0.5}
			s, err := NewSimulator(cfg)
			require.NoError(t, err)

			w, h := float64(cfg.Arena.Width), float64(cfg.Arena.Height)
			for step := 0; step < 200; step++ {
				s.Step()
				for i, b := range s.Flock {
					// THEN speed never exceeds the cap and clamping keeps boids inside
					require.LessOrEqual(t, b.Vel.Len(), cfg.Params.MaxSpeed+1e-9, "step %d boid %d", step, i)
					require.True(t, b.Pos.X >= 0 && b.Pos.X <= w && b.Pos.Y >= 0 && b.Pos.Y <= h,
						"step %d boid %d escaped to %v", step, i, b.Pos)
				}
			}
			assert.Equal(t, 200, s.StepCount)
			assert.Greater(t, s.Grid.Visited(), 0)
		})
	}
}

func TestStep_UpdateOrder(t *testing.T) {
	// GIVEN two boids where boid 1 follows boid 0, and boid 0 cannot see boid 1
	stepWith := func(order UpdateOrder) []Boid {
		cfg := smallConfig(1)
		cfg.Params.NumBoids = 2
		cfg.Params.Update = order
		s, err := NewSimulator(cfg)
		require.NoError(t, err)
		s.Flock[0] = Boid{Pos: V(100, 75), Vel: V(0, 5)}
		s.Flock[1] = Boid{Pos: V(130, 75), Vel: V(-5, 0)}
		s.Step()
		return append([]Boid(nil), s.Flock...)
	}

	// WHEN one step runs in each mode
	seq := stepWith(UpdateSequential)
	syn := stepWith(UpdateSynchronous)

	// THEN boid 0 moves identically since it updates first in both modes
	assert.Equal(t, seq[0], syn[0])
	assert.Equal(t, V(100, 80), seq[0].Pos)

	// THEN boid 1 steers toward boid 0's new position only when updates are sequential
	assert.NotEqual(t, seq[1].Vel, syn[1].Vel)
	assert.Greater(t, seq[1].Vel.Y, syn[1].Vel.Y)
}

func TestStep_WrapKeepsBoidsInArena(t *testing.T) {
	cfg := smallConfig(3)
	cfg.Params.Boundary = BoundaryWrap
	cfg.Params.WallGain = 0
	s, err := NewSimulator(cfg)
	require.NoError(t, err)

	w, h := float64(cfg.Arena.Width), float64(cfg.Arena.Height)
	for step := 0; step < 300; step++ {
		s.Step()
		for _, b := range s.Flock {
			require.True(t, b.Pos.X >= 0 && b.Pos.X <= w && b.Pos.Y >= 0 && b.Pos.Y <= h)
		}
	}
}

func TestRun_TimelineSampling(t *testing.T) {
	tests := []struct {
		name  string
		steps int
		want  []int
	}{
		{"steps divisible by interval", 120, []int{0, 30, 60, 90, 120}},
		{"final partial interval is sampled", 100, []int{0, 30, 60, 90, 100}},
		{"zero steps", 0, []int{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig(27)
			cfg.Steps = tt.steps
			res, err := RunOnce(context.Background(), cfg)
			require.NoError(t, err)

			var steps []int
			prev := -1
			for _, s := range res.Trace.Samples {
				steps = append(steps, s.Step)
				// THEN coverage never decreases
				assert.GreaterOrEqual(t, s.Visited, prev)
				prev = s.Visited
			}
			assert.Equal(t, tt.want, steps)
			assert.Equal(t, tt.steps, res.Steps)
			assert.Equal(t, res.Visited, res.Trace.Samples[len(res.Trace.Samples)-1].Visited)
		})
	}
}

func TestRun_FlockTrace(t *testing.T) {
	cfg := smallConfig(27)
	cfg.TraceLevel = trace.TraceLevelFlock
	res, err := RunOnce(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, res.Trace.Flock, len(res.Trace.Samples))
	for _, r := range res.Trace.Flock {
		assert.GreaterOrEqual(t, r.Polarization, 0.0)
		assert.LessOrEqual(t, r.Polarization, 1.0+1e-9)
		assert.LessOrEqual(t, r.MeanSpeed, cfg.Params.MaxSpeed+1e-9)
	}
}

func TestRun_TimelineTraceSkipsFlockRecords(t *testing.T) {
	res, err := RunOnce(context.Background(), smallConfig(27))
	require.NoError(t, err)

	assert.NotEmpty(t, res.Trace.Samples)
	assert.Empty(t, res.Trace.Flock)
}

func TestRun_TraceDisabled(t *testing.T) {
	cfg := smallConfig(27)
	cfg.TraceLevel = trace.TraceLevelNone
	res, err := RunOnce(context.Background(), cfg)
	require.NoError(t, err)

	assert.Nil(t, res.Trace)
	assert.Equal(t, 0, res.Summary().Samples)
	assert.Greater(t, res.CoveragePct, 0.0)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunOnce(ctx, smallConfig(27))

	assert.True(t, errors.Is(err, context.Canceled))
}
