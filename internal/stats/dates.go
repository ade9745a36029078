package stats

import (
	"math"
	"strings"
	"time"
)

const (
	// DefaultDatesWhitelist shortlists columns whose names look temporal.
	DefaultDatesWhitelist = "date,time,due,open,close,created"
	// WhitelistAll shortlists every column.
	WhitelistAll = "all"
	// WhitelistNone shortlists no column.
	WhitelistNone = "none"

	msPerDay = 86_400_000.0
	// five decimal places of a day is millisecond precision
	dayDecimalPlaces = 5
)

// DateConfig is the per-run date inference setup. It is built once before
// any worker starts and only read afterwards.
type DateConfig struct {
	columns   []bool
	preferDMY bool
}

// NewDateConfig decides which of the selected headers get date inference.
// The whitelist is a comma-separated list of case-insensitive substrings.
func NewDateConfig(enabled, preferDMY bool, headers []string, whitelist string) DateConfig {
	dc := DateConfig{columns: make([]bool, len(headers)), preferDMY: preferDMY}
	if !enabled {
		return dc
	}
	wl := strings.ToLower(strings.TrimSpace(whitelist))
	switch wl {
	case WhitelistAll:
		for i := range dc.columns {
			dc.columns[i] = true
		}
		return dc
	case WhitelistNone, "":
		return dc
	}
	var patterns []string
	for _, p := range strings.Split(wl, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	for i, h := range headers {
		name := strings.ToLower(h)
		for _, p := range patterns {
			if strings.Contains(name, p) {
				dc.columns[i] = true
				break
			}
		}
	}
	return dc
}

// Mode returns the date mode of the i-th selected column.
func (dc DateConfig) Mode(i int) DateMode {
	if i < 0 || i >= len(dc.columns) {
		return DateMode{PreferDMY: dc.preferDMY}
	}
	return DateMode{Infer: dc.columns[i], PreferDMY: dc.preferDMY}
}

// Shortlisted returns the indexes of columns with date inference enabled.
func (dc DateConfig) Shortlisted() []int {
	var out []int
	for i, ok := range dc.columns {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

// PreferDMY reports whether ambiguous dates are read day first.
func (dc DateConfig) PreferDMY() bool { return dc.preferDMY }

// formatMillis renders an epoch-millisecond value as RFC3339 in UTC, or as
// yyyy-mm-dd for Date columns.
func formatMillis(ms int64, typ FieldType) string {
	t := time.UnixMilli(ms).UTC()
	if typ == TypeDate {
		return t.Format(time.DateOnly)
	}
	if t.Nanosecond() != 0 {
		return t.Format("2006-01-02T15:04:05.000-07:00")
	}
	return t.Format("2006-01-02T15:04:05-07:00")
}

// floatToMillis rounds a float epoch value to the nearest millisecond,
// saturating at the int64 bounds.
func floatToMillis(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(math.Round(f))
}

func dayPlaces(round uint32) uint32 {
	if round < dayDecimalPlaces {
		return dayDecimalPlaces
	}
	return round
}
