// Package trace records how a simulation run evolves over time.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// Sample captures the coverage state at one sampled step.
type Sample struct {
	Step    int
	Visited int     // distinct pixels visited so far
	Percent float64 // Visited as a percentage of the arena
}

// FlockRecord captures the shape of the flock at one sampled step.
type FlockRecord struct {
	Step         int
	CentroidX    float64
	CentroidY    float64
	Spread       float64 // RMS distance of boids from the centroid
	Polarization float64 // |mean unit heading|, 1 = all boids aligned
	MeanSpeed    float64
}
