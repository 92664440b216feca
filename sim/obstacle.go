package sim

import (
	"fmt"
	"math"
)

// Shape is the geometry of an obstacle.
type Shape string

const (
	ShapeCircle    Shape = "circle"    // Size is the radius
	ShapeSquare    Shape = "square"    // Size is the half side
	ShapeRectangle Shape = "rectangle" // Width x Height box; Size is the avoidance radius
)

var validShapes = map[Shape]bool{ShapeCircle: true, ShapeSquare: true, ShapeRectangle: true}

// Obstacle is a static region boids steer around and coverage ignores.
type Obstacle struct {
	Shape  Shape
	Center Vec2
	Size   float64
	Width  float64
	Height float64
}

// Circle returns a circular obstacle of the given radius.
func Circle(center Vec2, radius float64) Obstacle {
	return Obstacle{Shape: ShapeCircle, Center: center, Size: radius}
}

// Square returns an axis-aligned square obstacle with the given half side.
func Square(center Vec2, halfSide float64) Obstacle {
	return Obstacle{Shape: ShapeSquare, Center: center, Size: halfSide}
}

// Rectangle returns an axis-aligned box. size is the radius used for avoidance.
func Rectangle(center Vec2, width, height, size float64) Obstacle {
	return Obstacle{Shape: ShapeRectangle, Center: center, Size: size, Width: width, Height: height}
}

// Validate checks that the obstacle is well-formed.
func (o Obstacle) Validate() error {
	if !validShapes[o.Shape] {
		return fmt.Errorf("unknown obstacle shape %q; valid: circle, square, rectangle", o.Shape)
	}
	if math.IsNaN(o.Center.X) || math.IsNaN(o.Center.Y) || math.IsInf(o.Center.X, 0) || math.IsInf(o.Center.Y, 0) {
		return fmt.Errorf("%s obstacle center must be finite, got (%f, %f)", o.Shape, o.Center.X, o.Center.Y)
	}
	if err := validateFinitePositive(string(o.Shape)+" size", o.Size); err != nil {
		return err
	}
	if o.Shape == ShapeRectangle {
		if err := validateFinitePositive("rectangle width", o.Width); err != nil {
			return err
		}
		if err := validateFinitePositive("rectangle height", o.Height); err != nil {
			return err
		}
	}
	return nil
}

// Contains reports whether q lies strictly inside the obstacle.
func (o Obstacle) Contains(q Vec2) bool {
	switch o.Shape {
	case ShapeCircle:
		return q.Dist(o.Center) < o.Size
	case ShapeSquare:
		return math.Abs(q.X-o.Center.X) < o.Size && math.Abs(q.Y-o.Center.Y) < o.Size
	case ShapeRectangle:
		return math.Abs(q.X-o.Center.X) < o.Width/2 && math.Abs(q.Y-o.Center.Y) < o.Height/2
	}
	return false
}

// Repulsion returns the push an obstacle exerts on a boid at p. The push
// points away from the obstacle center and falls off as gain/d inside
// Size+margin. A boid exactly at the center gets nothing.
func (o Obstacle) Repulsion(p Vec2, margin, gain, eps float64) Vec2 {
	off := p.Sub(o.Center)
	d := off.Len()
	if d <= 0 || d >= o.Size+margin {
		return Vec2{}
	}
	return off.Normalize().Scale(gain / (d + eps))
}

// Bounds returns the axis-aligned bounding box of the obstacle.
func (o Obstacle) Bounds() (lo, hi Vec2) {
	hw, hh := o.Size, o.Size
	if o.Shape == ShapeRectangle {
		hw, hh = o.Width/2, o.Height/2
	}
	return Vec2{o.Center.X - hw, o.Center.Y - hh}, Vec2{o.Center.X + hw, o.Center.Y + hh}
}

// insideAny reports whether q is inside any obstacle.
func insideAny(obstacles []Obstacle, q Vec2) bool {
	for i := range obstacles {
		if obstacles[i].Contains(q) {
			return true
		}
	}
	return false
}
