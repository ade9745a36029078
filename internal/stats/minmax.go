package stats

import (
	"cmp"
	"strconv"
)

type minMax[T cmp.Ordered] struct {
	min, max T
	seen     bool
}

func (m *minMax[T]) add(v T) {
	if !m.seen {
		m.min, m.max, m.seen = v, v, true
		return
	}
	if v < m.min {
		m.min = v
	}
	if v > m.max {
		m.max = v
	}
}

func (m *minMax[T]) merge(o minMax[T]) {
	if !o.seen {
		return
	}
	m.add(o.min)
	m.add(o.max)
}

// typedMinMax tracks min/max for every type domain where it makes sense.
type typedMinMax struct {
	strings  minMax[string]
	strLen   minMax[int]
	integers minMax[int64]
	floats   minMax[float64]
	dates    minMax[int64]
}

func (m *typedMinMax) add(typ FieldType, v Sample) {
	m.strLen.add(len(v.Raw))
	if v.Type == TypeNull {
		return
	}
	m.strings.add(v.Raw)
	switch typ {
	case TypeInteger:
		m.integers.add(v.Int)
		m.floats.add(v.Float)
	case TypeFloat:
		m.floats.add(v.Float)
	case TypeDate, TypeDateTime:
		m.dates.add(v.Millis)
	}
}

func (m *typedMinMax) merge(o *typedMinMax) {
	m.strings.merge(o.strings)
	m.strLen.merge(o.strLen)
	m.integers.merge(o.integers)
	m.floats.merge(o.floats)
	m.dates.merge(o.dates)
}

// lengths returns the min and max sample length in bytes.
func (m *typedMinMax) lengths() (string, string, bool) {
	if !m.strLen.seen {
		return "", "", false
	}
	return strconv.Itoa(m.strLen.min), strconv.Itoa(m.strLen.max), true
}

// show returns min, max and range for typ.
func (m *typedMinMax) show(typ FieldType, round uint32) (lo, hi, rng string, ok bool) {
	switch typ {
	case TypeString:
		if !m.strings.seen {
			return "", "", "", false
		}
		return m.strings.min, m.strings.max, "", true
	case TypeInteger:
		if !m.integers.seen {
			return "", "", "", false
		}
		return strconv.FormatInt(m.integers.min, 10),
			strconv.FormatInt(m.integers.max, 10),
			// unsigned so the full int64 span does not wrap
			strconv.FormatUint(uint64(m.integers.max)-uint64(m.integers.min), 10), true
	case TypeFloat:
		if !m.floats.seen {
			return "", "", "", false
		}
		return formatFloat(m.floats.min), formatFloat(m.floats.max),
			roundNum(m.floats.max-m.floats.min, round), true
	case TypeDate, TypeDateTime:
		if !m.dates.seen {
			return "", "", "", false
		}
		days := float64(m.dates.max-m.dates.min) / msPerDay
		return formatMillis(m.dates.min, typ), formatMillis(m.dates.max, typ),
			roundNum(days, dayPlaces(round)), true
	}
	return "", "", "", false
}
