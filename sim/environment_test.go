package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentNames_Sorted(t *testing.T) {
	assert.Equal(t, []string{"cafeteria", "dense-cafeteria", "narrow-corridor", "open"}, EnvironmentNames())
}

func TestLookupEnvironment_Unknown(t *testing.T) {
	_, err := LookupEnvironment("moon-base", DefaultArena())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownEnvironment))
	assert.Contains(t, err.Error(), "narrow-corridor")
}

func TestLookupEnvironment_Cafeteria(t *testing.T) {
	env, err := LookupEnvironment(EnvCafeteria, DefaultArena())
	require.NoError(t, err)

	// THEN two tables with eight chairs each
	assert.Equal(t, "Cafeteria", env.Name)
	assert.Len(t, env.Obstacles, 18)
	assert.NoError(t, env.Validate())
}

func TestLookupEnvironment_DenseCafeteria_DeterministicLayout(t *testing.T) {
	a, err := LookupEnvironment(EnvDenseCafeteria, DefaultArena())
	require.NoError(t, err)
	b, err := LookupEnvironment(EnvDenseCafeteria, DefaultArena())
	require.NoError(t, err)

	// THEN the jittered layout is identical on every build
	assert.Equal(t, a.Obstacles, b.Obstacles)

	// THEN twelve tables with 4-8 chairs each
	tables := 0
	for _, o := range a.Obstacles {
		if o.Shape == ShapeCircle {
			tables++
			assert.InDelta(t, 30.0, o.Size, 0)
		}
	}
	assert.Equal(t, 12, tables)
	chairs := len(a.Obstacles) - tables
	assert.GreaterOrEqual(t, chairs, 12*4)
	assert.LessOrEqual(t, chairs, 12*8)
}

func TestLookupEnvironment_NarrowCorridor_GapIsOpen(t *testing.T) {
	env, err := LookupEnvironment(EnvNarrowCorridor, DefaultArena())
	require.NoError(t, err)
	require.Len(t, env.Obstacles, 2)

	assert.False(t, insideAny(env.Obstacles, V(400, 300)), "corridor center must be free")
	assert.False(t, insideAny(env.Obstacles, V(400, 271)), "gap spans y in (270, 330)")
	assert.True(t, insideAny(env.Obstacles, V(400, 100)))
	assert.True(t, insideAny(env.Obstacles, V(400, 500)))
	assert.False(t, insideAny(env.Obstacles, V(200, 100)), "left of the blocks is free")
}

func TestTableWithChairs_FirstChairOnXAxis(t *testing.T) {
	obs := TableWithChairs(V(100, 100), 20, 4, 5, 30)
	require.Len(t, obs, 5)
	assert.Equal(t, ShapeCircle, obs[0].Shape)
	assert.InDelta(t, 130.0, obs[1].Center.X, 1e-9)
	assert.InDelta(t, 100.0, obs[1].Center.Y, 1e-9)
	assert.InDelta(t, 130.0, obs[2].Center.Y, 1e-9)
}

func TestEnvironment_Slug(t *testing.T) {
	assert.Equal(t, "dense_cafeteria", (&Environment{Name: "Dense Cafeteria"}).Slug())
	assert.Equal(t, "no_obstacles", OpenEnvironment().Slug())
}
