package indicator

import (
	"encoding/json"
	"math"
	"strconv"
)

// Value is an indicator reading that may be unavailable (warm-up not met,
// zero denominator, missing input). Consumers must branch on OK; there is
// no numeric sentinel.
type Value struct {
	v  float64
	ok bool
}

// Of wraps v. Non-finite input yields an unavailable Value.
func Of(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{v: v, ok: true}
}

// Unavailable returns the empty Value.
func Unavailable() Value {
	return Value{}
}

// Get returns the reading and whether it exists.
func (v Value) Get() (float64, bool) {
	return v.v, v.ok
}

// OK reports whether the reading exists.
func (v Value) OK() bool {
	return v.ok
}

// Or returns the reading, or def when unavailable.
func (v Value) Or(def float64) float64 {
	if !v.ok {
		return def
	}
	return v.v
}

// Ptr returns a pointer to a copy of the reading, nil when unavailable.
func (v Value) Ptr() *float64 {
	if !v.ok {
		return nil
	}
	f := v.v
	return &f
}

// String renders the reading or "n/a".
func (v Value) String() string {
	if !v.ok {
		return "n/a"
	}
	return strconv.FormatFloat(v.v, 'f', 4, 64)
}

// MarshalJSON encodes an unavailable Value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

// UnmarshalJSON accepts a number or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Of(f)
	return nil
}

// Line is one indicator over a series, index-aligned with the bars.
type Line []Value

// At returns the value at i; out-of-range indexes are unavailable.
func (l Line) At(i int) Value {
	if i < 0 || i >= len(l) {
		return Value{}
	}
	return l[i]
}

// Last returns the final value.
func (l Line) Last() Value {
	return l.At(len(l) - 1)
}

// Back returns the value n bars before the last one.
func (l Line) Back(n int) Value {
	return l.At(len(l) - 1 - n)
}

// Available counts the available readings.
func (l Line) Available() int {
	n := 0
	for _, v := range l {
		if v.ok {
			n++
		}
	}
	return n
}

func lineOf(xs []float64) Line {
	out := make(Line, len(xs))
	for i, x := range xs {
		out[i] = Of(x)
	}
	return out
}
