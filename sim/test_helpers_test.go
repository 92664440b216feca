package sim

import "github.com/flocksim/flocksim/sim/trace"

// smallConfig returns a fast run on a small open arena.
func smallConfig(seed int64) RunConfig {
	params := DefaultFlockParams()
	params.NumBoids = 10
	params.SpawnMargin = 10
	return RunConfig{
		Arena:          Arena{Width: 200, Height: 150},
		Params:         params,
		Gains:          Gains{Cohesion: 0.2, Alignment: 0.05, Separation: 0.1},
		Env:            OpenEnvironment(),
		Seed:           seed,
		Steps:          120,
		SampleEvery:    30,
		CoverageRadius: 2,
		TraceLevel:     trace.TraceLevelTimeline,
	}
}

// steeringFor builds the steering constants for cfg.
func steeringFor(cfg RunConfig) *steering {
	s := newSteering(cfg)
	return &s
}
