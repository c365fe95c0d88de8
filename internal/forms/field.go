// Package forms turns stored training sessions into editable form state:
// validated input fields, element-to-section grouping, and previous-session
// value matching.
package forms

import (
	"math"
	"strconv"
)

// Field is an editable value holding the raw text, the parsed value, a
// validity flag, and whether the user changed it since the form was built.
// Input always keeps the last text even when invalid so no keystrokes are
// lost. Changed is monotonic until the form is rebuilt from stored data.
type Field[T comparable] struct {
	Input   string
	Valid   bool
	Parsed  *T
	Changed bool
}

// NewField returns an empty, valid, unchanged field holding the given value
// (nil for unset).
func NewField[T comparable](value *T, render func(T) string) Field[T] {
	f := Field[T]{Valid: true, Parsed: value}
	if value != nil {
		f.Input = render(*value)
	}
	return f
}

// setFromInput records raw user input. Empty input is a legal "unset" state;
// non-empty input must parse and satisfy the domain predicate to be valid.
func (f *Field[T]) setFromInput(raw string, parse func(string) (T, error), valid func(T) bool) {
	f.Input = raw
	f.Changed = true
	v, err := parse(raw)
	if err != nil {
		f.Valid = raw == ""
		f.Parsed = nil
		return
	}
	if !valid(v) {
		f.Valid = false
		f.Parsed = nil
		return
	}
	f.Valid = true
	f.Parsed = &v
}

// copyFrom overwrites the field with a known-good source value, as used by
// the "fill from target" and "fill from previous" actions. Changed stays set
// once set, and is additionally set when the value actually differs.
func (f *Field[T]) copyFrom(source *T, render func(T) string) {
	changed := f.Changed || !ptrEqual(f.Parsed, source)
	*f = NewField(source, render)
	f.Changed = changed
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Domain predicates. Reps and hold/rest times are bounded positive integers,
// weights are non-negative decimals below 1000 kg, RPE is the 0-10 scale.

func validReps(v int) bool { return v > 0 && v < 1000 }

func validTime(v int) bool { return v > 0 && v < 1000 }

func validWeight(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v < 1000
}

func validRPE(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 10
}

func renderInt(v int) string { return strconv.Itoa(v) }

func renderDecimal(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func parseInt(s string) (int, error) { return strconv.Atoi(s) }

func parseDecimal(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

// IntField returns a fresh integer field holding the given value.
func IntField(value *int) Field[int] { return NewField(value, renderInt) }

// DecimalField returns a fresh decimal field holding the given value.
func DecimalField(value *float64) Field[float64] { return NewField(value, renderDecimal) }
