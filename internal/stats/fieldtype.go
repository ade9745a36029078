package stats

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// FieldType is the inferred data type of a column.
//
// Inference starts at TypeNull, the most specific type, and relaxes as
// counter-examples are found. TypeString is the top of the lattice: once a
// column is a String nothing moves it back.
type FieldType int

const (
	TypeNull FieldType = iota
	TypeString
	TypeFloat
	TypeInteger
	TypeDate
	TypeDateTime
)

func (t FieldType) String() string {
	switch t {
	case TypeNull:
		return "NULL"
	case TypeString:
		return "String"
	case TypeFloat:
		return "Float"
	case TypeInteger:
		return "Integer"
	case TypeDate:
		return "Date"
	case TypeDateTime:
		return "DateTime"
	default:
		return "FieldType(" + strconv.Itoa(int(t)) + ")"
	}
}

// Temporal reports whether values of this type are carried as epoch milliseconds.
func (t FieldType) Temporal() bool {
	return t == TypeDate || t == TypeDateTime
}

// Numeric reports whether the type is Integer or Float.
func (t FieldType) Numeric() bool {
	return t == TypeInteger || t == TypeFloat
}

// Merge joins two types in the lattice.
func (t FieldType) Merge(other FieldType) FieldType {
	switch {
	case t == other:
		return t
	case t == TypeNull:
		return other
	case other == TypeNull:
		return t
	case t.Numeric() && other.Numeric():
		// integers degrade to floats
		return TypeFloat
	case t.Temporal() && other.Temporal():
		return TypeDateTime
	default:
		return TypeString
	}
}

// DateMode tells InferType whether a column is shortlisted for date
// inference and which day/month order ambiguous dates use.
type DateMode struct {
	Infer     bool
	PreferDMY bool
}

// Sample is a classified raw value. Int is set for Integer samples, Float for
// Integer and Float samples, Millis for Date and DateTime samples.
type Sample struct {
	Raw    string
	Type   FieldType
	Int    int64
	Float  float64
	Millis int64
}

// InferType classifies sample given the column's current type.
func InferType(sample string, current FieldType, dates DateMode) Sample {
	s := Sample{Raw: sample}
	if sample == "" {
		s.Type = TypeNull
		return s
	}
	if current == TypeString {
		s.Type = TypeString
		return s
	}

	if current == TypeNull || current.Numeric() {
		if i, err := strconv.ParseInt(sample, 10, 64); err == nil {
			// zip codes, account numbers and other identifiers keep their zeros
			if sample[0] == '0' && i != 0 {
				s.Type = TypeString
				return s
			}
			s.Type = TypeInteger
			s.Int = i
			s.Float = float64(i)
			return s
		}
		// out-of-range literals such as 1e400 parse to ±Inf and stay floats
		if f, err := strconv.ParseFloat(sample, 64); err == nil || errors.Is(err, strconv.ErrRange) {
			s.Type = TypeFloat
			s.Float = f
			return s
		}
	}

	if dates.Infer && (current == TypeNull || current.Temporal()) {
		if t, ok := parseDate(sample, dates.PreferDMY); ok {
			s.Millis = t.UnixMilli()
			if isMidnight(t) {
				s.Type = TypeDate
			} else {
				s.Type = TypeDateTime
			}
			return s
		}
	}

	s.Type = TypeString
	return s
}

func parseDate(sample string, preferDMY bool) (time.Time, bool) {
	t, err := dateparse.ParseIn(strings.TrimSpace(sample), time.UTC, dateparse.PreferMonthFirst(!preferDMY))
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
