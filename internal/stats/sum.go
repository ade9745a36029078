package stats

import (
	"math"
	"strconv"
)

// typedSum sums integers until it sees a float, then sums floats.
type typedSum struct {
	integer int64
	float   float64
	isFloat bool
}

func (s *typedSum) add(typ FieldType, v Sample) {
	if v.Type == TypeNull {
		return
	}
	switch typ {
	case TypeFloat:
		if !s.isFloat {
			s.float = float64(s.integer)
			s.isFloat = true
		}
		s.float += v.Float
	case TypeInteger:
		if s.isFloat {
			s.float += v.Float
			return
		}
		s.integer = saturatingAdd(s.integer, v.Int)
	}
}

func (s *typedSum) merge(o *typedSum) {
	switch {
	case s.isFloat && o.isFloat:
		s.float += o.float
	case s.isFloat:
		s.float += float64(o.integer)
	case o.isFloat:
		s.float = float64(s.integer) + o.float
		s.isFloat = true
	default:
		s.integer = saturatingAdd(s.integer, o.integer)
	}
}

// show renders the sum for typ. It returns false when a sum is meaningless.
func (s *typedSum) show(typ FieldType, round uint32) (string, bool) {
	switch typ {
	case TypeInteger:
		switch s.integer {
		case math.MaxInt64:
			return "OVERFLOW", true
		case math.MinInt64:
			return "UNDERFLOW", true
		}
		return strconv.FormatInt(s.integer, 10), true
	case TypeFloat:
		return roundNum(s.float, round), true
	}
	return "", false
}

func saturatingAdd(a, b int64) int64 {
	c := a + b
	if (c > a) == (b > 0) {
		return c
	}
	if b > 0 {
		return math.MaxInt64
	}
	return math.MinInt64
}
