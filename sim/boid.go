package sim

import "math"

// Boid is a single agent: a point with a velocity.
type Boid struct {
	Pos Vec2
	Vel Vec2
}

// Forces holds the individual steering terms acting on a boid, before blending.
type Forces struct {
	Separation Vec2
	Obstacle   Vec2
	Wall       Vec2
	Alignment  Vec2
	Cohesion   Vec2
}

// Priority returns the terms in the order they draw from the acceleration budget.
func (f Forces) Priority() [5]Vec2 {
	return [5]Vec2{f.Separation, f.Obstacle, f.Wall, f.Alignment, f.Cohesion}
}

// steering holds the precomputed per-run constants used by ComputeForces.
type steering struct {
	arena     Arena
	params    FlockParams
	gains     Gains
	obstacles []Obstacle
	cosHalf   float64 // cos(FOV/2)
	fullView  bool
}

func newSteering(cfg RunConfig) steering {
	half := cfg.Params.FOVDegrees / 2 * math.Pi / 180
	return steering{
		arena:     cfg.Arena,
		params:    cfg.Params,
		gains:     cfg.Gains,
		obstacles: cfg.Env.Obstacles,
		cosHalf:   math.Cos(half),
		fullView:  cfg.Params.FOVDegrees >= 360,
	}
}

// sees reports whether a boid at p heading along forward perceives q.
// A boid with no heading (forward == 0) sees all around it.
func (s *steering) sees(p, forward, q Vec2) bool {
	off := q.Sub(p)
	d := off.Len()
	if d == 0 || d >= s.params.NeighborRadius {
		return false
	}
	if s.fullView || forward.IsZero() {
		return true
	}
	// angle < FOV/2  <=>  cos(angle) > cos(FOV/2) on [0, π]
	cos := math.Max(-1, math.Min(1, forward.Dot(off.Div(d))))
	return cos > s.cosHalf
}

// ComputeForces evaluates every steering term for flock[i] against the given
// flock state.
func (s *steering) ComputeForces(flock []Boid, i int) Forces {
	self := flock[i]
	p := s.params
	var f Forces

	for _, o := range s.obstacles {
		f.Obstacle = f.Obstacle.Add(o.Repulsion(self.Pos, p.ObstacleMargin, p.ObstacleGain, p.Epsilon))
	}

	forward := self.Vel.Normalize()
	var center, avgVel, avoid Vec2
	n := 0
	for j := range flock {
		if j == i {
			continue
		}
		other := flock[j]
		if !s.sees(self.Pos, forward, other.Pos) {
			continue
		}
		n++
		center = center.Add(other.Pos)
		avgVel = avgVel.Add(other.Vel)
		if self.Pos.Dist(other.Pos) < p.AvoidRadius {
			avoid = avoid.Add(self.Pos.Sub(other.Pos))
		}
	}
	if n > 0 {
		center = center.Div(float64(n))
		avgVel = avgVel.Div(float64(n))
		f.Cohesion = center.Sub(self.Pos).Scale(s.gains.Cohesion)
		f.Alignment = avgVel.Sub(self.Vel).Scale(s.gains.Alignment)
		f.Separation = avoid.Scale(s.gains.Separation)
	}

	w, h := float64(s.arena.Width), float64(s.arena.Height)
	x, y := self.Pos.X, self.Pos.Y
	f.Wall = Vec2{
		X: p.WallGain * (1.0/(x+p.Epsilon) - 1.0/(w-x+p.Epsilon)),
		Y: p.WallGain * (1.0/(y+p.Epsilon) - 1.0/(h-y+p.Epsilon)),
	}
	return f
}

// Blend allocates the acceleration budget across forces in priority order.
// A force that fits is taken whole; the first one that does not is scaled to
// the remaining budget and blending stops. Non-finite forces are skipped.
func Blend(forces [5]Vec2, budget float64) Vec2 {
	var acc Vec2
	remaining := budget
	for _, force := range forces {
		if remaining <= 0 {
			break
		}
		l := force.Len()
		if math.IsNaN(l) || math.IsInf(l, 0) {
			continue
		}
		if l <= remaining {
			acc = acc.Add(force)
			remaining -= l
			continue
		}
		acc = acc.Add(force.Scale(remaining / l))
		break
	}
	return acc
}

// integrate applies acceleration a to b, caps speed and moves it one step.
func integrate(b *Boid, a Vec2, maxSpeed float64) {
	b.Vel = b.Vel.Add(a).ClampLen(maxSpeed)
	b.Pos = b.Pos.Add(b.Vel)
}

// applyBoundary enforces the boundary policy on b.
func applyBoundary(b *Boid, arena Arena, policy BoundaryPolicy) {
	w, h := float64(arena.Width), float64(arena.Height)
	switch policy {
	case BoundaryClamp:
		if b.Pos.X < 0 {
			b.Pos.X, b.Vel.X = 0, math.Abs(b.Vel.X)
		} else if b.Pos.X > w {
			b.Pos.X, b.Vel.X = w, -math.Abs(b.Vel.X)
		}
		if b.Pos.Y < 0 {
			b.Pos.Y, b.Vel.Y = 0, math.Abs(b.Vel.Y)
		} else if b.Pos.Y > h {
			b.Pos.Y, b.Vel.Y = h, -math.Abs(b.Vel.Y)
		}
	case BoundaryWrap:
		b.Pos.X = wrap(b.Pos.X, w)
		b.Pos.Y = wrap(b.Pos.Y, h)
	}
}

func wrap(v, size float64) float64 {
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	return v
}
