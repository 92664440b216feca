package sim

import "math"

// CoverageGrid accumulates per-pixel visit counts for one run.
// Pixels inside obstacles are masked out and never counted.
type CoverageGrid struct {
	arena   Arena
	radius  int
	counts  []int  // row-major, len = W*H
	blocked []bool // row-major obstacle mask
	disc    [][2]int
	visited int
	free    int
}

// NewCoverageGrid builds a grid for the arena and precomputes the obstacle
// mask and the stamping disc of the given radius.
func NewCoverageGrid(arena Arena, obstacles []Obstacle, radius int) *CoverageGrid {
	n := arena.Pixels()
	g := &CoverageGrid{
		arena:   arena,
		radius:  radius,
		counts:  make([]int, n),
		blocked: make([]bool, n),
	}
	for _, o := range obstacles {
		lo, hi := o.Bounds()
		x0, y0 := max(0, int(math.Floor(lo.X))), max(0, int(math.Floor(lo.Y)))
		x1, y1 := min(arena.Width-1, int(math.Ceil(hi.X))), min(arena.Height-1, int(math.Ceil(hi.Y)))
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				if o.Contains(V(float64(x), float64(y))) {
					g.blocked[y*arena.Width+x] = true
				}
			}
		}
	}
	for _, b := range g.blocked {
		if !b {
			g.free++
		}
	}
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			if dx*dx+dy*dy <= radius*radius {
				g.disc = append(g.disc, [2]int{dx, dy})
			}
		}
	}
	return g
}

// Stamp marks the disc around p as visited. p is truncated toward zero to
// its pixel. Out-of-arena and obstacle pixels are skipped.
func (g *CoverageGrid) Stamp(p Vec2) {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return
	}
	cx, cy := int(p.X), int(p.Y)
	for _, d := range g.disc {
		x, y := cx+d[0], cy+d[1]
		if !g.arena.InBounds(x, y) {
			continue
		}
		i := y*g.arena.Width + x
		if g.blocked[i] {
			continue
		}
		if g.counts[i] == 0 {
			g.visited++
		}
		g.counts[i]++
	}
}

// Visited returns the number of distinct pixels visited so far.
func (g *CoverageGrid) Visited() int { return g.visited }

// FreePixels returns the number of pixels not covered by obstacles.
func (g *CoverageGrid) FreePixels() int { return g.free }

// Blocked reports whether pixel (x, y) is inside an obstacle.
func (g *CoverageGrid) Blocked(x, y int) bool {
	return g.arena.InBounds(x, y) && g.blocked[y*g.arena.Width+x]
}

// Count returns the visit count of pixel (x, y), 0 outside the arena.
func (g *CoverageGrid) Count(x, y int) int {
	if !g.arena.InBounds(x, y) {
		return 0
	}
	return g.counts[y*g.arena.Width+x]
}

// CoveragePct returns visited pixels as a percentage of the whole arena.
func (g *CoverageGrid) CoveragePct() float64 {
	return float64(g.visited) / float64(g.arena.Pixels()) * 100
}

// FreeCoveragePct returns visited pixels as a percentage of obstacle-free pixels.
func (g *CoverageGrid) FreeCoveragePct() float64 {
	if g.free == 0 {
		return 0
	}
	return float64(g.visited) / float64(g.free) * 100
}

// Counts returns a copy of the row-major visit counts.
func (g *CoverageGrid) Counts() []int {
	out := make([]int, len(g.counts))
	copy(out, g.counts)
	return out
}

// Uniformity describes how evenly visits are spread over free pixels.
type Uniformity struct {
	Mean     float64
	Variance float64 // sample variance (n-1)
	StdDev   float64
	CV       float64 // StdDev / (Mean + eps)
}

// Uniformity computes visit-count statistics over obstacle-free pixels.
// ok is false when the arena has no free pixels.
func (g *CoverageGrid) Uniformity(eps float64) (u Uniformity, ok bool) {
	if g.free == 0 {
		return Uniformity{}, false
	}
	var sum float64
	for i, c := range g.counts {
		if !g.blocked[i] {
			sum += float64(c)
		}
	}
	u.Mean = sum / float64(g.free)
	if g.free > 1 {
		var ss float64
		for i, c := range g.counts {
			if !g.blocked[i] {
				d := float64(c) - u.Mean
				ss += d * d
			}
		}
		u.Variance = ss / float64(g.free-1)
	}
	u.StdDev = math.Sqrt(u.Variance)
	u.CV = u.StdDev / (u.Mean + eps)
	return u, true
}
