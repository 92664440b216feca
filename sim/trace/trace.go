package trace

// TraceLevel controls how much of a run is recorded.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelTimeline records coverage samples.
	TraceLevelTimeline TraceLevel = "timeline"
	// TraceLevelFlock records coverage samples and flock shape records.
	TraceLevelFlock TraceLevel = "flock"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:     true,
	TraceLevelTimeline: true,
	TraceLevelFlock:    true,
	"":                 true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// Enabled reports whether any recording happens at this level.
func (l TraceLevel) Enabled() bool {
	return l == TraceLevelTimeline || l == TraceLevelFlock
}

// SimulationTrace collects samples during a single run.
type SimulationTrace struct {
	Level   TraceLevel
	Samples []Sample
	Flock   []FlockRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(level TraceLevel) *SimulationTrace {
	return &SimulationTrace{
		Level:   level,
		Samples: make([]Sample, 0),
		Flock:   make([]FlockRecord, 0),
	}
}

// RecordSample appends a coverage sample.
func (st *SimulationTrace) RecordSample(s Sample) {
	st.Samples = append(st.Samples, s)
}

// RecordFlock appends a flock record. Ignored below TraceLevelFlock.
func (st *SimulationTrace) RecordFlock(r FlockRecord) {
	if st.Level != TraceLevelFlock {
		return
	}
	st.Flock = append(st.Flock, r)
}
