package envfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flocksim/flocksim/sim"
	"github.com/flocksim/flocksim/sim/internal/testutil"
)

func TestLoad_Valid(t *testing.T) {
	// GIVEN a file with one of each shape
	path := testutil.WriteFixture(t, "lab.json", `{
  "name": "Lab",
  "obstacles": [
    {"shape": "circle", "x": 200, "y": 200, "size": 40},
    {"shape": "square", "x": 100, "y": 500, "size": 10},
    {"shape": "rectangle", "x": 400, "y": 100, "width": 100, "height": 200},
    {"shape": "rectangle", "x": 600, "y": 300, "width": 20, "height": 20, "size": 80}
  ]
}`)

	// WHEN it is loaded
	env, err := Load(path, sim.DefaultArena())

	// THEN every obstacle is converted
	require.NoError(t, err)
	assert.Equal(t, "Lab", env.Name)
	require.Len(t, env.Obstacles, 4)
	assert.Equal(t, sim.Circle(sim.V(200, 200), 40), env.Obstacles[0])
	assert.Equal(t, sim.Square(sim.V(100, 500), 10), env.Obstacles[1])
	// THEN a rectangle without size avoids by half its longer side
	assert.Equal(t, sim.Rectangle(sim.V(400, 100), 100, 200, 100), env.Obstacles[2])
	assert.Equal(t, 80.0, env.Obstacles[3].Size)
}

func TestParse_EmptyObstacleList(t *testing.T) {
	env, err := Parse([]byte(`{"name": "Empty", "obstacles": []}`), sim.DefaultArena())
	require.NoError(t, err)
	assert.Empty(t, env.Obstacles)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"not JSON", `{"name":`, "parsing JSON"},
		{"missing name", `{"obstacles": []}`, "schema validation"},
		{"unknown shape", `{"name": "x", "obstacles": [{"shape": "hexagon", "x": 1, "y": 1, "size": 1}]}`, "schema validation"},
		{"circle without size", `{"name": "x", "obstacles": [{"shape": "circle", "x": 1, "y": 1}]}`, "schema validation"},
		{"rectangle without height", `{"name": "x", "obstacles": [{"shape": "rectangle", "x": 1, "y": 1, "width": 5}]}`, "schema validation"},
		{"negative size", `{"name": "x", "obstacles": [{"shape": "square", "x": 1, "y": 1, "size": -3}]}`, "schema validation"},
		{"unknown field", `{"name": "x", "obstacles": [], "color": "red"}`, "schema validation"},
		{"outside the arena", `{"name": "x", "obstacles": [{"shape": "circle", "x": 5000, "y": 1, "size": 10}]}`, "outside"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), sim.DefaultArena())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), sim.DefaultArena())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
