package report

import (
	"context"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flocksim/flocksim/sim"
	"github.com/flocksim/flocksim/sim/trace"
)

func runs(t *testing.T, env *sim.Environment, level trace.TraceLevel, seeds ...int64) []*sim.RunResult {
	t.Helper()
	var out []*sim.RunResult
	for _, s := range seeds {
		cfg := sim.DefaultRunConfig()
		cfg.Arena = sim.Arena{Width: 200, Height: 150}
		cfg.Params.NumBoids = 8
		cfg.Params.SpawnMargin = 10
		cfg.Env = env
		cfg.Steps = 60
		cfg.SampleEvery = 20
		cfg.TraceLevel = level
		cfg.Seed = s
		res, err := sim.RunOnce(context.Background(), cfg)
		require.NoError(t, err)
		out = append(out, res)
	}
	return out
}

func TestAppendUniformityLog_HeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uniformity_log.csv")
	results := []*sim.RunResult{
		{Seed: 27, Uniformity: sim.Uniformity{Variance: 1.23456, Mean: 2, StdDev: 1.11111, CV: 0.555555}},
	}

	// WHEN the log is appended twice
	require.NoError(t, AppendUniformityLog(path, "Cafeteria", 100, results))
	require.NoError(t, AppendUniformityLog(path, "Cafeteria", 100, results))

	// THEN there is one header and two rows rounded to 4 dp
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "environment,num_boids,seed,variance,mean,std_dev,normalized", lines[0])
	assert.Equal(t, "Cafeteria,100,27,1.2346,2,1.1111,0.5556", lines[1])
	assert.Equal(t, lines[1], lines[2])
}

func TestWriteTimeline(t *testing.T) {
	results := runs(t, sim.OpenEnvironment(), trace.TraceLevelTimeline, 1, 2)
	path := filepath.Join(t.TempDir(), "timeline.csv")

	require.NoError(t, WriteTimeline(path, results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// THEN header plus steps 0, 20, 40, 60 for each seed
	require.Len(t, lines, 1+2*4)
	assert.Equal(t, "seed,step,visited,percent", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,0,0,"))
	assert.True(t, strings.HasPrefix(lines[5], "2,0,0,"))
}

func TestWriteTimeline_RequiresTrace(t *testing.T) {
	results := runs(t, sim.OpenEnvironment(), trace.TraceLevelNone, 1)
	err := WriteTimeline(filepath.Join(t.TempDir(), "t.csv"), results)
	assert.Error(t, err)
}

func TestHot(t *testing.T) {
	assert.Equal(t, color.RGBA{A: 255}, Hot(0))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, Hot(1))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, Hot(0.365))
	assert.Equal(t, Hot(1), Hot(7), "clamped above")
}

func TestHeatmap_OutlinesObstacles(t *testing.T) {
	arena := sim.Arena{Width: 100, Height: 100}
	obs := []sim.Obstacle{sim.Square(sim.V(50, 50), 10)}
	grid := sim.NewCoverageGrid(arena, obs, 0)
	grid.Stamp(sim.V(5, 5))

	img := Heatmap(grid, arena, obs, 1)

	assert.Equal(t, outlineColor, img.RGBAAt(60, 50), "edge of the square")
	assert.Equal(t, Hot(0), img.RGBAAt(50, 50), "interior stays unvisited")
	assert.Equal(t, Hot(1), img.RGBAAt(5, 5))
	assert.Equal(t, Hot(0), img.RGBAAt(80, 80))
}

func TestWriteHeatmaps(t *testing.T) {
	env, err := sim.LookupEnvironment(sim.EnvNarrowCorridor, sim.Arena{Width: 200, Height: 150})
	require.NoError(t, err)
	results := runs(t, env, trace.TraceLevelNone, 27, 729)
	dir := filepath.Join(t.TempDir(), "maps")

	paths, err := WriteHeatmaps(dir, env, sim.Arena{Width: 200, Height: 150}, results)

	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "heatmap_narrow_corridor_seed_27.png"), paths[0])
	f, err := os.Open(paths[1])
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}
