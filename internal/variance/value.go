package variance

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Value is a variance cell. An invalid Value means no comparison was possible
// (zero reference, missing input, or nothing to average).
type Value struct {
	Float float64
	Valid bool
}

// Undefined is the empty cell.
var Undefined = Value{}

// Defined wraps f. NaN and infinities are not representable and yield Undefined.
func Defined(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Undefined
	}
	return Value{Float: f, Valid: true}
}

// Get returns the number and whether it is defined.
func (v Value) Get() (float64, bool) {
	return v.Float, v.Valid
}

// String formats the value with two decimals; undefined renders empty.
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	return fmt.Sprintf("%.2f", v.Float)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Undefined
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Defined(f)
	return nil
}

func round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

func clip(f float64) float64 {
	return math.Max(-ClipBound, math.Min(ClipBound, f))
}

// mean averages the defined values; it is Undefined when none are defined.
func mean(vals []Value) Value {
	sum := 0.0
	n := 0
	for _, v := range vals {
		if !v.Valid {
			continue
		}
		sum += v.Float
		n++
	}
	if n == 0 {
		return Undefined
	}
	return Defined(sum / float64(n))
}
