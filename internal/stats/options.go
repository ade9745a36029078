package stats

// Options is the statistics configuration a caller hands to the engine.
type Options struct {
	// Everything turns on every optional statistic.
	Everything bool
	// TypesOnly infers types and skips every statistic.
	TypesOnly   bool
	Mode        bool
	Cardinality bool
	Median      bool
	MAD         bool
	Quartiles   bool
	// IncludeNulls counts nulls in the population for mean and stddev.
	IncludeNulls bool
	// Round is the number of decimal places for float outputs.
	Round uint32
	// InferDates enables Date/DateTime inference for whitelisted columns.
	InferDates     bool
	DatesWhitelist string
	PreferDMY      bool
	// Jobs is the worker count; 0 means detected CPUs and 1 forces sequential.
	Jobs int
}

// DefaultOptions returns the default statistics configuration.
func DefaultOptions() Options {
	return Options{
		Round:          4,
		DatesWhitelist: DefaultDatesWhitelist,
	}
}

// Which is the fixed set of statistics a column bundle computes.
type Which struct {
	IncludeNulls bool
	Sum          bool
	Range        bool
	Dist         bool
	Cardinality  bool
	Median       bool
	MAD          bool
	Quartiles    bool
	Mode         bool
	TypesOnly    bool
}

// Which derives the statistics selection. Quartiles supersede a standalone
// median since q2 is the median.
func (o Options) Which() Which {
	if o.TypesOnly {
		return Which{IncludeNulls: o.IncludeNulls, TypesOnly: true}
	}
	all := o.Everything
	return Which{
		IncludeNulls: o.IncludeNulls,
		Sum:          true,
		Range:        true,
		Dist:         true,
		Cardinality:  all || o.Cardinality,
		Median:       o.Median && !o.Quartiles && !all,
		MAD:          all || o.MAD,
		Quartiles:    all || o.Quartiles,
		Mode:         all || o.Mode,
	}
}

// Headers returns the output header row, starting with "field".
func (o Options) Headers() []string {
	return o.Which().Headers()
}

// Headers returns the output header row for this selection.
func (w Which) Headers() []string {
	if w.TypesOnly {
		return []string{"field", "type"}
	}
	h := make([]string, 0, 30)
	h = append(h,
		"field", "type", "sum", "min", "max", "range", "min_length", "max_length",
		"mean", "stddev", "variance", "nullcount", "sparsity",
	)
	if w.Median {
		h = append(h, "median")
	}
	if w.MAD {
		h = append(h, "mad")
	}
	if w.Quartiles {
		h = append(h,
			"lower_outer_fence", "lower_inner_fence", "q1", "q2_median", "q3", "iqr",
			"upper_inner_fence", "upper_outer_fence", "skewness",
		)
	}
	if w.Cardinality {
		h = append(h, "cardinality")
	}
	if w.Mode {
		h = append(h,
			"mode", "mode_count", "mode_occurrences",
			"antimode", "antimode_count", "antimode_occurrences",
		)
	}
	return h
}
