// Package sim provides the core boids simulation and coverage accounting for flocksim.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - boid.go: steering terms (separation, alignment, cohesion, wall, obstacle)
//     and the priority-budget blend that turns them into one acceleration
//   - coverage.go: the per-pixel visit grid and its uniformity statistics
//   - simulator.go: spawn, the step loop, sampling and RunResult
//
// # Architecture
//
// The sim package defines the domain types; supporting code lives in
// sub-packages:
//   - sim/trace/: coverage timeline and flock-shape recording
//   - sim/envfile/: JSON obstacle layouts validated by JSON Schema
//   - sim/sweep/: parallel gain search over many seeded runs
//   - sim/objective/: Lua expressions that score sweep candidates
//   - sim/report/: uniformity logs, timelines and heatmaps on disk
//
// # Determinism
//
// A RunConfig fully determines a run. All randomness flows through
// PartitionedRNG keyed by RunConfig.Seed; there is no global random state,
// so any number of runs may execute concurrently.
package sim
