package report

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/flocksim/flocksim/sim"
)

var outlineColor = color.RGBA{B: 255, A: 255}

// Hot maps t in [0, 1] onto a black-red-yellow-white ramp.
func Hot(t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	ramp := func(lo, hi float64) uint8 {
		v := (t - lo) / (hi - lo)
		return uint8(math.Round(255 * math.Max(0, math.Min(1, v))))
	}
	return color.RGBA{R: ramp(0, 0.365), G: ramp(0.365, 0.746), B: ramp(0.746, 1), A: 255}
}

// Heatmap renders visit counts against vmax with obstacle outlines on top.
func Heatmap(grid *sim.CoverageGrid, arena sim.Arena, obstacles []sim.Obstacle, vmax int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, arena.Width, arena.Height))
	for y := 0; y < arena.Height; y++ {
		for x := 0; x < arena.Width; x++ {
			t := 0.0
			if vmax > 0 {
				t = float64(grid.Count(x, y)) / float64(vmax)
			}
			img.SetRGBA(x, y, Hot(t))
		}
	}
	for _, o := range obstacles {
		outer, inner := resize(o, 1), resize(o, -1)
		lo, hi := outer.Bounds()
		for y := max(0, int(lo.Y)-1); y <= min(arena.Height-1, int(hi.Y)+1); y++ {
			for x := max(0, int(lo.X)-1); x <= min(arena.Width-1, int(hi.X)+1); x++ {
				q := sim.V(float64(x), float64(y))
				if outer.Contains(q) && !inner.Contains(q) {
					img.SetRGBA(x, y, outlineColor)
				}
			}
		}
	}
	return img
}

// resize grows (d > 0) or shrinks the obstacle outline by d pixels.
func resize(o sim.Obstacle, d float64) sim.Obstacle {
	o.Size += d
	if o.Shape == sim.ShapeRectangle {
		o.Width += 2 * d
		o.Height += 2 * d
	}
	return o
}

// WriteHeatmaps writes heatmap_<slug>_seed_<seed>.png into dir for every
// result. All images share the largest visit count as their scale.
func WriteHeatmaps(dir string, env *sim.Environment, arena sim.Arena, results []*sim.RunResult) ([]string, error) {
	vmax := 0
	for _, r := range results {
		if r.Grid == nil {
			return nil, fmt.Errorf("seed %d has no coverage grid", r.Seed)
		}
		for _, c := range r.Grid.Counts() {
			vmax = max(vmax, c)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating heatmap dir: %w", err)
	}

	paths := make([]string, 0, len(results))
	for _, r := range results {
		path := filepath.Join(dir, fmt.Sprintf("heatmap_%s_seed_%d.png", env.Slug(), r.Seed))
		if err := writePNG(path, Heatmap(r.Grid, arena, env.Obstacles, vmax)); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
