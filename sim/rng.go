package sim

import (
	"hash/fnv"
	"math/rand"
)

// SimulationKey is the master seed of one run. The same key and RunConfig
// always yield the same flock, the same trajectories and the same coverage.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// RNG subsystems.
const (
	// SubsystemSpawn draws initial positions and headings from the master
	// seed itself, so "seed 27" names one starting flock in every tool.
	SubsystemSpawn = "spawn"
	// SubsystemSweep draws random sweep candidates.
	SubsystemSweep = "sweep"
	// SubsystemLayout jitters randomized obstacle layouts.
	SubsystemLayout = "layout"
)

// PartitionedRNG hands out one independent stream per subsystem.
// Spawn uses the key as-is; every other stream is seeded with
// key XOR fnv1a64(name). Not safe for concurrent use; each run owns one.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the stream for name, creating it on first use.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	seed := int64(p.key)
	if name != SubsystemSpawn {
		seed ^= fnv1a64(name)
	}
	rng := rand.New(rand.NewSource(seed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
