package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func draw(r *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = r.Float64()
	}
	return out
}

func TestPartitionedRNG_SameKeySameStream(t *testing.T) {
	a := NewPartitionedRNG(NewSimulationKey(42)).ForSubsystem(SubsystemSweep)
	b := NewPartitionedRNG(NewSimulationKey(42)).ForSubsystem(SubsystemSweep)
	assert.Equal(t, draw(a, 5), draw(b, 5))
}

func TestPartitionedRNG_SubsystemsAreIsolated(t *testing.T) {
	// GIVEN one RNG that drains spawn first and a fresh one
	used := NewPartitionedRNG(NewSimulationKey(42))
	draw(used.ForSubsystem(SubsystemSpawn), 100)
	fresh := NewPartitionedRNG(NewSimulationKey(42))

	// THEN the layout stream is untouched
	assert.Equal(t, draw(fresh.ForSubsystem(SubsystemLayout), 3), draw(used.ForSubsystem(SubsystemLayout), 3))
	// AND named streams differ from each other
	sweep := draw(NewPartitionedRNG(NewSimulationKey(42)).ForSubsystem(SubsystemSweep), 3)
	layout := draw(NewPartitionedRNG(NewSimulationKey(42)).ForSubsystem(SubsystemLayout), 3)
	assert.NotEqual(t, sweep, layout)
}

func TestPartitionedRNG_SpawnUsesMasterSeed(t *testing.T) {
	for _, seed := range []int64{0, 27, -1, math.MinInt64} {
		spawn := NewPartitionedRNG(NewSimulationKey(seed)).ForSubsystem(SubsystemSpawn)
		direct := rand.New(rand.NewSource(seed))
		assert.Equal(t, draw(direct, 4), draw(spawn, 4), "seed %d", seed)
	}
}

func TestPartitionedRNG_CachesInstance(t *testing.T) {
	p := NewPartitionedRNG(NewSimulationKey(7))
	assert.Empty(t, p.subsystems)
	assert.Same(t, p.ForSubsystem(SubsystemSpawn), p.ForSubsystem(SubsystemSpawn))
	assert.Len(t, p.subsystems, 1)
	assert.Equal(t, SimulationKey(7), p.Key())
}

func TestFnv1a64_SubsystemNamesDoNotCollide(t *testing.T) {
	seen := map[int64]string{}
	for _, name := range []string{SubsystemSpawn, SubsystemSweep, SubsystemLayout, ""} {
		h := fnv1a64(name)
		_, dup := seen[h]
		assert.False(t, dup, "collision for %q", name)
		seen[h] = name
	}
}

func BenchmarkPartitionedRNG_ForSubsystem_CacheHit(b *testing.B) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	rng.ForSubsystem(SubsystemSpawn)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rng.ForSubsystem(SubsystemSpawn)
	}
}
