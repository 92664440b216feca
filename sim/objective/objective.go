// Package objective scores a candidate's coverage distribution with a small
// Lua expression, so sweeps can rank by more than the mean.
//
// The expression sees these globals:
//
//	mean, stddev, min, max, p50, p95, count   coverage % across seeds
//	k_coh, k_ali, k_col                       the candidate's gains
//
// Only the Lua base and math libraries are loaded. An empty expression
// scores by mean.
package objective

import (
	"fmt"
	"math"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/flocksim/flocksim/sim"
)

// Objective is a compiled scoring expression. Not safe for concurrent use.
type Objective struct {
	expr string
	l    *lua.LState
	fn   *lua.LFunction
}

// Compile parses expr once. A bare expression is evaluated as "return expr".
func Compile(expr string) (*Objective, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return &Objective{}, nil
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	chunk := expr
	if !strings.HasPrefix(expr, "return") {
		chunk = "return " + expr
	}
	fn, err := L.LoadString(chunk)
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("objective %q: %w", expr, err)
	}
	return &Objective{expr: expr, l: L, fn: fn}, nil
}

// String returns the source expression, or "mean" for the default.
func (o *Objective) String() string {
	if o.fn == nil {
		return "mean"
	}
	return o.expr
}

// Close releases the Lua state.
func (o *Objective) Close() {
	if o.l != nil {
		o.l.Close()
	}
}

// Evaluate scores a distribution. The result must be a finite number.
func (o *Objective) Evaluate(d sim.Distribution, g sim.Gains) (float64, error) {
	if o.fn == nil {
		return d.Mean, nil
	}
	L := o.l
	for name, v := range map[string]float64{
		"mean":   d.Mean,
		"stddev": d.StdDev,
		"min":    d.Min,
		"max":    d.Max,
		"p50":    d.P50,
		"p95":    d.P95,
		"count":  float64(d.Count),
		"k_coh":  g.Cohesion,
		"k_ali":  g.Alignment,
		"k_col":  g.Separation,
	} {
		L.SetGlobal(name, lua.LNumber(v))
	}

	L.Push(o.fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return 0, fmt.Errorf("objective %q: %w", o.expr, err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	n, ok := ret.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("objective %q returned %s, want number", o.expr, ret.Type())
	}
	score := float64(n)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("objective %q returned non-finite %v", o.expr, score)
	}
	return score, nil
}
