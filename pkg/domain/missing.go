package domain

import (
	"math"
	"strconv"
)

// Missing returns the missing-value sentinel for derived quantities (IEEE
// NaN). Missingness propagates through arithmetic, which is exactly the
// behaviour scaling requires: a cell in a constituency without a defined
// scale factor yields a missing scaled prediction, never zero.
func Missing() float64 { return math.NaN() }

// IsMissing reports whether v is the missing-value sentinel.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// OptFloat is a float64 whose JSON representation maps the missing sentinel
// to null, so persisted run records survive encoding. Plain float64 fields
// holding NaN would fail json.Marshal.
type OptFloat float64

// MarshalJSON encodes missing values as null.
func (v OptFloat) MarshalJSON() ([]byte, error) {
	if IsMissing(float64(v)) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(v), 'g', -1, 64)), nil
}

// UnmarshalJSON decodes null back into the missing sentinel.
func (v *OptFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = OptFloat(Missing())
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*v = OptFloat(f)
	return nil
}
