// Package envfile loads obstacle layouts from JSON files.
//
// A file looks like:
//
//	{
//	  "name": "Lab",
//	  "obstacles": [
//	    {"shape": "circle", "x": 200, "y": 200, "size": 40},
//	    {"shape": "rectangle", "x": 400, "y": 100, "width": 100, "height": 200}
//	  ]
//	}
//
// Files are validated against an embedded JSON Schema before conversion.
// Circles and squares need size; rectangles need width and height and
// default size (the avoidance radius) to half their longer side.
package envfile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/flocksim/flocksim/sim"
)

//go:embed environment.schema.json
var schemaJSON []byte

const schemaURL = "mem://schemas/environment.json"

var schema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		panic(fmt.Sprintf("envfile: add schema resource: %v", err))
	}
	s, err := compiler.Compile(schemaURL)
	if err != nil {
		panic(fmt.Sprintf("envfile: compile schema: %v", err))
	}
	return s
}

// File is the JSON form of an environment.
type File struct {
	Name      string         `json:"name"`
	Obstacles []ObstacleJSON `json:"obstacles"`
}

// ObstacleJSON is the JSON form of one obstacle.
type ObstacleJSON struct {
	Shape  string  `json:"shape"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Size   float64 `json:"size,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Load reads, validates and converts the environment file at path. Obstacles
// whose bounding box lies entirely outside arena are rejected.
func Load(path string, arena sim.Arena) (*sim.Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading environment file: %w", err)
	}
	env, err := Parse(data, arena)
	if err != nil {
		return nil, fmt.Errorf("environment file %s: %w", path, err)
	}
	return env, nil
}

// Parse validates and converts an environment document.
func Parse(data []byte, arena sim.Arena) (*sim.Environment, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding environment: %w", err)
	}

	env := &sim.Environment{Name: f.Name, Obstacles: make([]sim.Obstacle, 0, len(f.Obstacles))}
	for i, o := range f.Obstacles {
		obs := o.toObstacle()
		lo, hi := obs.Bounds()
		if hi.X < 0 || hi.Y < 0 || lo.X >= float64(arena.Width) || lo.Y >= float64(arena.Height) {
			return nil, fmt.Errorf("obstacles[%d] lies outside the %dx%d arena", i, arena.Width, arena.Height)
		}
		env.Obstacles = append(env.Obstacles, obs)
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return env, nil
}

func (o ObstacleJSON) toObstacle() sim.Obstacle {
	center := sim.V(o.X, o.Y)
	switch sim.Shape(o.Shape) {
	case sim.ShapeCircle:
		return sim.Circle(center, o.Size)
	case sim.ShapeSquare:
		return sim.Square(center, o.Size)
	default:
		size := o.Size
		if size == 0 {
			size = math.Max(o.Width, o.Height) / 2
		}
		return sim.Rectangle(center, o.Width, o.Height, size)
	}
}
