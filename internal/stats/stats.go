package stats

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// AntimodePreviewLimit caps how many antimodes are listed.
	AntimodePreviewLimit = 10
	// AntimodeMaxChars caps the rendered antimode list, in bytes.
	AntimodeMaxChars = 100
)

// Stats accumulates the inferred type and statistics of a single column.
// A Stats is owned by one goroutine at a time.
type Stats struct {
	typ       FieldType
	sum       *typedSum
	minmax    *typedMinMax
	online    *onlineStats
	nullcount uint64
	rows      uint64
	modes     *frequencies
	numbers   *numbers
	which     Which
}

// NewStats allocates the accumulators the selection asks for.
func NewStats(which Which) *Stats {
	s := &Stats{which: which}
	if which.Sum {
		s.sum = &typedSum{}
	}
	if which.Range {
		s.minmax = &typedMinMax{}
	}
	if which.Dist {
		s.online = &onlineStats{}
	}
	if which.Mode || which.Cardinality {
		s.modes = newFrequencies()
	}
	if which.Median || which.MAD || which.Quartiles {
		s.numbers = &numbers{}
	}
	return s
}

// NewStatsSet returns n fresh bundles sharing one selection.
func NewStatsSet(which Which, n int) []*Stats {
	out := make([]*Stats, n)
	for i := range out {
		out[i] = NewStats(which)
	}
	return out
}

// Type is the column type inferred so far.
func (s *Stats) Type() FieldType { return s.typ }

// NullCount is the number of empty samples seen.
func (s *Stats) NullCount() uint64 { return s.nullcount }

// Rows is the number of samples seen, nulls included.
func (s *Stats) Rows() uint64 { return s.rows }

// Add feeds one raw sample to the column.
func (s *Stats) Add(raw string, dates DateMode) {
	v := InferType(raw, s.typ, dates)
	s.typ = s.typ.Merge(v.Type)
	s.rows++
	if v.Type == TypeNull {
		s.nullcount++
	}
	if s.which.TypesOnly {
		return
	}

	// dispatch on the column type, not the sample type, so an integer-looking
	// value in a Float column is summed as a float
	t := s.typ
	if s.sum != nil {
		s.sum.add(t, v)
	}
	if s.minmax != nil {
		s.minmax.add(t, v)
	}
	if s.modes != nil {
		s.modes.add(raw)
	}

	switch {
	case t == TypeString:
	case v.Type == TypeNull:
		if s.which.IncludeNulls && s.online != nil {
			s.online.addNull()
		}
	case t.Numeric():
		s.addNumber(v.Float)
	case t.Temporal():
		if v.Type.Temporal() {
			s.addNumber(float64(v.Millis))
		}
	}
}

func (s *Stats) addNumber(x float64) {
	if s.numbers != nil {
		s.numbers.add(x)
	}
	if s.online != nil {
		s.online.add(x)
	}
}

// Merge folds other into s. Both must have been built from the same
// selection; anything else is a programming error and panics.
func (s *Stats) Merge(other *Stats) {
	if s.which != other.which {
		panic(fmt.Sprintf("stats: merging bundles with different selections: %+v != %+v", s.which, other.which))
	}
	s.typ = s.typ.Merge(other.typ)
	s.nullcount += other.nullcount
	s.rows += other.rows
	if s.sum != nil {
		s.sum.merge(other.sum)
	}
	if s.minmax != nil {
		s.minmax.merge(other.minmax)
	}
	if s.online != nil {
		s.online.merge(other.online)
	}
	if s.modes != nil {
		s.modes.merge(other.modes)
	}
	if s.numbers != nil {
		s.numbers.merge(other.numbers)
	}
}

// MergeAll merges equally long bundle sets column by column. It returns nil
// when sets is empty.
func MergeAll(sets [][]*Stats) []*Stats {
	if len(sets) == 0 {
		return nil
	}
	acc := sets[0]
	for _, set := range sets[1:] {
		if len(set) != len(acc) {
			panic(fmt.Sprintf("stats: merging %d columns into %d", len(set), len(acc)))
		}
		for i := range acc {
			acc[i].Merge(set[i])
		}
	}
	return acc
}

// Record renders the column as output fields, aligned with Which.Headers
// minus the leading "field". Float outputs are rounded half to even.
func (s *Stats) Record(round uint32) []string {
	if s.which.TypesOnly {
		return []string{s.typ.String()}
	}
	typ := s.typ
	days := dayPlaces(round)
	out := make([]string, 0, 29)
	out = append(out, typ.String())

	// sum
	if v, ok := s.showSum(typ, round); ok {
		out = append(out, v)
	} else {
		out = append(out, "")
	}

	// min, max, range and lengths
	lo, hi, rng, ok := "", "", "", false
	if s.minmax != nil {
		lo, hi, rng, ok = s.minmax.show(typ, round)
	}
	if !ok {
		lo, hi, rng = "", "", ""
	}
	out = append(out, lo, hi, rng)
	minLen, maxLen := "", ""
	if s.minmax != nil && !typ.Temporal() {
		minLen, maxLen, _ = s.minmax.lengths()
	}
	out = append(out, minLen, maxLen)

	// mean, stddev, variance
	switch {
	case s.online == nil || typ == TypeNull || typ == TypeString || s.online.size == 0:
		out = append(out, "", "", "")
	case typ.Numeric():
		out = append(out,
			roundNum(s.online.mean, round),
			roundNum(s.online.stddev(), round),
			roundNum(s.online.variance(), round),
		)
	default:
		// temporal variance is not reported
		out = append(out,
			formatMillis(floatToMillis(s.online.mean), typ),
			roundNum(s.online.stddev()/msPerDay, days),
			"",
		)
	}

	out = append(out, strconv.FormatUint(s.nullcount, 10))
	sparsity := 0.0
	if s.rows > 0 {
		sparsity = float64(s.nullcount) / float64(s.rows)
	}
	out = append(out, roundNum(sparsity, round))

	out = s.appendOrderStats(out, typ, round)
	out = s.appendModes(out)
	return out
}

func (s *Stats) showSum(typ FieldType, round uint32) (string, bool) {
	if s.sum == nil {
		return "", false
	}
	return s.sum.show(typ, round)
}

func (s *Stats) appendOrderStats(out []string, typ FieldType, round uint32) []string {
	days := dayPlaces(round)
	hasNumbers := s.numbers != nil && (typ.Numeric() || typ.Temporal())
	render := func(x float64) string {
		if typ.Temporal() {
			return formatMillis(floatToMillis(x), typ)
		}
		return roundNum(x, round)
	}
	renderSpan := func(x float64) string {
		if typ.Temporal() {
			return roundNum(x/msPerDay, days)
		}
		return roundNum(x, round)
	}

	var (
		med, q1, q2, q3 float64
		haveMed, haveQ  bool
	)
	if hasNumbers {
		if s.which.Quartiles {
			q1, q2, q3, haveQ = s.numbers.quartiles()
		}
		if haveQ {
			med, haveMed = q2, true
		} else if s.which.Median || s.which.MAD {
			med, haveMed = s.numbers.median()
		}
	}

	if s.which.Median {
		if haveMed {
			out = append(out, render(med))
		} else {
			out = append(out, "")
		}
	}

	if s.which.MAD {
		if mad, ok := s.numbersMAD(hasNumbers, haveMed, med); ok {
			out = append(out, renderSpan(mad))
		} else {
			out = append(out, "")
		}
	}

	if s.which.Quartiles {
		if !haveQ {
			for i := 0; i < 9; i++ {
				out = append(out, "")
			}
		} else {
			iqr := q3 - q1
			lof := q1 - 3.0*iqr
			lif := q1 - 1.5*iqr
			uif := q3 + 1.5*iqr
			uof := q3 + 3.0*iqr
			skewness := ((q3 - q2) - (q2 - q1)) / iqr
			out = append(out,
				render(lof), render(lif),
				render(q1), render(q2), render(q3),
				renderSpan(iqr),
				render(uif), render(uof),
				roundNum(skewness, round),
			)
		}
	}
	return out
}

func (s *Stats) numbersMAD(hasNumbers, haveMed bool, med float64) (float64, bool) {
	if !hasNumbers || !haveMed {
		return 0, false
	}
	return s.numbers.mad(med)
}

func (s *Stats) appendModes(out []string) []string {
	if s.which.Cardinality {
		if s.modes != nil {
			out = append(out, strconv.Itoa(s.modes.cardinality()))
		} else {
			out = append(out, "")
		}
	}
	if !s.which.Mode {
		return out
	}
	if s.modes == nil {
		return append(out, "", "", "", "", "", "")
	}

	modes, modeCount, modeOcc := s.modes.modes()
	out = append(out,
		joinValues(modes),
		strconv.Itoa(modeCount),
		strconv.FormatUint(modeOcc, 10),
	)

	if modeOcc == 0 {
		// every value is unique; listing them all says nothing
		return append(out, "*ALL", "0", "1")
	}
	anti, antiCount, antiOcc := s.modes.antimodes(AntimodePreviewLimit)
	var b strings.Builder
	if antiCount > AntimodePreviewLimit {
		b.WriteString("*PREVIEW: ")
	}
	b.WriteString(joinValues(anti))
	return append(out,
		truncate(b.String(), AntimodeMaxChars),
		strconv.Itoa(antiCount),
		strconv.FormatUint(antiOcc, 10),
	)
}

func joinValues(vals []string) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		if v == "" {
			v = "NULL"
		}
		parts[i] = v
	}
	return strings.Join(parts, ",")
}

// truncate cuts s to at most n bytes on a rune boundary and marks the cut.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
