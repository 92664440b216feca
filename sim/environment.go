package sim

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
)

// ErrUnknownEnvironment is returned when no preset matches a requested name.
var ErrUnknownEnvironment = errors.New("unknown environment")

// Environment is a named, immutable obstacle layout.
type Environment struct {
	Name      string
	Obstacles []Obstacle
}

// Validate checks every obstacle of the environment.
func (e *Environment) Validate() error {
	for i, o := range e.Obstacles {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("environment %q obstacle[%d]: %w", e.Name, i, err)
		}
	}
	return nil
}

// Slug returns the name lower-cased with spaces as underscores, for file names.
func (e *Environment) Slug() string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(e.Name)), " ", "_")
}

// Preset names.
const (
	EnvDenseCafeteria = "dense-cafeteria"
	EnvCafeteria      = "cafeteria"
	EnvNarrowCorridor = "narrow-corridor"
	EnvOpen           = "open"
)

// denseLayoutSeed keeps the dense cafeteria identical across runs and seeds.
const denseLayoutSeed = 100

type presetBuilder struct {
	title string
	build func(arena Arena) []Obstacle
}

var presets = map[string]presetBuilder{
	EnvDenseCafeteria: {"Dense Cafeteria", denseCafeteriaObstacles},
	EnvCafeteria:      {"Cafeteria", cafeteriaObstacles},
	EnvNarrowCorridor: {"Narrow Corridor", narrowCorridorObstacles},
	EnvOpen:           {"No Obstacles", func(Arena) []Obstacle { return nil }},
}

// EnvironmentNames lists the preset names in a stable order.
func EnvironmentNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupEnvironment builds the named preset for the given arena.
func LookupEnvironment(name string, arena Arena) (*Environment, error) {
	p, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w %q; valid: %s", ErrUnknownEnvironment, name, strings.Join(EnvironmentNames(), ", "))
	}
	return &Environment{Name: p.title, Obstacles: p.build(arena)}, nil
}

// OpenEnvironment returns the obstacle-free preset.
func OpenEnvironment() *Environment {
	return &Environment{Name: presets[EnvOpen].title}
}

// TableWithChairs places a circular table at center and numChairs square chairs
// evenly around it at chairDistance.
func TableWithChairs(center Vec2, tableRadius float64, numChairs int, chairSize, chairDistance float64) []Obstacle {
	obs := make([]Obstacle, 0, numChairs+1)
	obs = append(obs, Circle(center, tableRadius))
	step := 2 * math.Pi / float64(numChairs)
	for i := 0; i < numChairs; i++ {
		obs = append(obs, Square(center.Add(FromAngle(float64(i)*step).Scale(chairDistance)), chairSize))
	}
	return obs
}

func cafeteriaObstacles(Arena) []Obstacle {
	obs := TableWithChairs(V(200, 200), 40, 8, 10, 60)
	return append(obs, TableWithChairs(V(600, 400), 30, 8, 10, 50)...)
}

func denseCafeteriaObstacles(Arena) []Obstacle {
	const (
		jitter        = 40.0
		tableRadius   = 30.0
		chairSize     = 8.0
		chairDistance = 45.0
		minChairs     = 4
		maxChairs     = 8
	)
	rng := NewPartitionedRNG(NewSimulationKey(denseLayoutSeed)).ForSubsystem(SubsystemLayout)
	var obs []Obstacle
	for _, y := range []float64{150, 300, 450} {
		for _, x := range []float64{150, 300, 450, 600} {
			center := V(x+uniform(rng, -jitter, jitter), y+uniform(rng, -jitter, jitter))
			chairs := minChairs + rng.Intn(maxChairs-minChairs+1)
			obs = append(obs, TableWithChairs(center, tableRadius, chairs, chairSize, chairDistance)...)
		}
	}
	return obs
}

func narrowCorridorObstacles(arena Arena) []Obstacle {
	const (
		corridorWidth = 60.0
		blockWidth    = 100.0
		blockSize     = 100.0
		blockOffset   = 135.0
	)
	cx, cy := float64(arena.Width/2), float64(arena.Height/2)
	height := float64(arena.Height/2) - corridorWidth/2
	return []Obstacle{
		Rectangle(V(cx, cy-corridorWidth/2-blockOffset), blockWidth, height, blockSize),
		Rectangle(V(cx, cy+corridorWidth/2+blockOffset), blockWidth, height, blockSize),
	}
}

// uniform draws from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}
