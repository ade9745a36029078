package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/colstats/internal/config"
	"github.com/KaramelBytes/colstats/internal/csvio"
	"github.com/KaramelBytes/colstats/internal/metrics"
	"github.com/KaramelBytes/colstats/internal/report"
	"github.com/KaramelBytes/colstats/internal/stats"
	"github.com/KaramelBytes/colstats/internal/utils"
)

var (
	stSelect         string
	stEverything     bool
	stTypesOnly      bool
	stMode           bool
	stCardinality    bool
	stMedian         bool
	stMAD            bool
	stQuartiles      bool
	stRound          int
	stNulls          bool
	stInferDates     bool
	stDatesWhitelist string
	stPreferDMY      bool
	stJobs           int
	stOutput         string
	stNoHeaders      bool
	stDelimiter      string
	stFormat         string
)

var statsCmd = &cobra.Command{
	Use:   "stats [file]",
	Short: "Infer column types and compute summary statistics",
	Long: `Computes summary statistics for every selected column of a CSV/TSV file.

Sum, min/max/range, min/max length, mean, stddev, variance, nullcount and
sparsity are always computed. Median, MAD, quartiles, cardinality and modes
need the whole column in memory and are only computed on request.

Reads stdin when no file (or "-") is given. When <file>.idx exists and is
fresh, chunks of the file are processed in parallel.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "-"
		if len(args) == 1 {
			path = args[0]
		}
		if cfg == nil {
			cfg = cfgpkg.Defaults()
		}
		opts, err := statsOptions(cmd, cfg)
		if err != nil {
			return err
		}
		format := cfg.OutputFormat
		if cmd.Flags().Changed("format") {
			format = stFormat
		}
		f, err := report.ParseFormat(format)
		if err != nil {
			return err
		}
		delim, err := csvio.ParseDelimiter(stDelimiter)
		if err != nil {
			return err
		}
		in := csvio.Config{Path: path, Delimiter: delim, NoHeaders: stNoHeaders}

		var collector *metrics.Collector
		if metricsTextfile != "" {
			collector = metrics.NewCollector()
		}
		start := time.Now()
		tbl, err := runStats(cmd, in, opts, collector)
		if err != nil {
			return err
		}
		collector.ObserveDuration(time.Since(start))
		if err := collector.WriteTextfile(metricsTextfile); err != nil {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		}

		if stOutput != "" {
			outDelim := csvio.Config{Path: stOutput}.Comma()
			if err := utils.SafeWrite(stOutput, func(w io.Writer) error {
				return tbl.Write(w, f, outDelim)
			}); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			log.Info("wrote statistics", zap.String("path", stOutput), zap.Int("columns", len(tbl.Records)))
			return nil
		}
		return tbl.Write(cmd.OutOrStdout(), f, ',')
	},
}

// statsOptions layers command flags over the configuration.
func statsOptions(cmd *cobra.Command, c *cfgpkg.Global) (stats.Options, error) {
	opts := c.Options()
	fl := cmd.Flags()
	opts.Everything = stEverything
	opts.TypesOnly = stTypesOnly
	opts.Mode = stMode
	opts.Cardinality = stCardinality
	opts.Median = stMedian
	opts.MAD = stMAD
	opts.Quartiles = stQuartiles
	if fl.Changed("round") {
		if stRound < 0 {
			return opts, fmt.Errorf("invalid --round: %d", stRound)
		}
		opts.Round = uint32(stRound)
	}
	if fl.Changed("nulls") {
		opts.IncludeNulls = stNulls
	}
	if fl.Changed("infer-dates") {
		opts.InferDates = stInferDates
	}
	if fl.Changed("dates-whitelist") {
		opts.DatesWhitelist = stDatesWhitelist
	}
	if fl.Changed("prefer-dmy") {
		opts.PreferDMY = stPreferDMY
	}
	if fl.Changed("jobs") {
		if stJobs < 0 {
			return opts, fmt.Errorf("invalid --jobs: %d", stJobs)
		}
		opts.Jobs = stJobs
	}
	return opts, nil
}

func runStats(cmd *cobra.Command, in csvio.Config, opts stats.Options, collector *metrics.Collector) (*report.Table, error) {
	var (
		idx      *csvio.Index
		warnings []string
	)
	if !in.Stdin() {
		ix, err := csvio.OpenIndex(in)
		switch {
		case err == nil:
			idx = ix
		case errors.Is(err, os.ErrNotExist):
			log.Debug("no index, scanning sequentially", zap.String("path", in.Path))
		case errors.Is(err, csvio.ErrStaleIndex):
			msg := fmt.Sprintf("index of %s is stale; rerun `colstats index` to enable parallel stats", in.Path)
			fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", msg)
			warnings = append(warnings, msg)
		default:
			return nil, err
		}
	}

	rd, err := csvio.Open(in)
	if err != nil {
		return nil, err
	}
	defer rd.Close()
	headers := rd.Headers()
	sel, err := csvio.ParseSelection(stSelect, headers)
	if err != nil {
		return nil, err
	}
	names := csvio.SelectedHeaders(sel, headers)
	dates := stats.NewDateConfig(opts.InferDates, opts.PreferDMY, names, opts.DatesWhitelist)
	if opts.InferDates {
		short := make([]string, 0, len(dates.Shortlisted()))
		for _, i := range dates.Shortlisted() {
			short = append(short, names[i])
		}
		log.Info("date inference", zap.Strings("columns", short), zap.Bool("prefer_dmy", opts.PreferDMY))
	}

	var obs stats.Observer
	if collector != nil {
		obs = collector
		collector.SetColumns(len(sel))
	}
	engine := stats.NewEngine(opts, log, obs)
	input := stats.Input{Reader: rd}
	if idx != nil {
		input.Index = idx
	}
	set, err := engine.Compute(cmd.Context(), input, sel, dates)
	if err != nil {
		return nil, err
	}

	tbl := &report.Table{
		Name:     rd.Name(),
		Headers:  engine.Which().Headers(),
		Warnings: warnings,
	}
	for i, rec := range engine.Records(set) {
		field := names[i]
		if in.NoHeaders {
			field = strconv.Itoa(i)
		}
		tbl.Records = append(tbl.Records, append([]string{field}, rec...))
	}
	if len(set) > 0 {
		tbl.Rows = set[0].Rows()
	} else if idx != nil {
		tbl.Rows = idx.Count()
	}
	return tbl, nil
}

func init() {
	rootCmd.AddCommand(statsCmd)
	f := statsCmd.Flags()
	f.StringVarP(&stSelect, "select", "s", "", "columns to compute stats for: names, 1-based indices and a-b ranges")
	f.BoolVar(&stEverything, "everything", false, "compute all statistics, including those that need memory")
	f.BoolVar(&stTypesOnly, "typesonly", false, "infer types only and skip statistics")
	f.BoolVar(&stMode, "mode", false, "compute modes and antimodes (multimodal)")
	f.BoolVar(&stCardinality, "cardinality", false, "compute the number of distinct values")
	f.BoolVar(&stMedian, "median", false, "compute the median (ignored with --quartiles or --everything)")
	f.BoolVar(&stMAD, "mad", false, "compute the median absolute deviation")
	f.BoolVar(&stQuartiles, "quartiles", false, "compute quartiles, IQR, inner/outer fences and skewness")
	f.IntVar(&stRound, "round", 4, "decimal places for floats (half to even)")
	f.BoolVar(&stNulls, "nulls", false, "include nulls in the population for mean and stddev")
	f.BoolVar(&stInferDates, "infer-dates", false, "infer Date and DateTime types for whitelisted columns")
	f.StringVar(&stDatesWhitelist, "dates-whitelist", stats.DefaultDatesWhitelist, "case-insensitive header substrings for date inference, or all|none")
	f.BoolVar(&stPreferDMY, "prefer-dmy", false, "parse ambiguous dates as day/month/year")
	f.IntVarP(&stJobs, "jobs", "j", 0, "parallel jobs when an index exists (0 = number of CPUs)")
	f.StringVarP(&stOutput, "output", "o", "", "write output to this file instead of stdout")
	f.BoolVarP(&stNoHeaders, "no-headers", "n", false, "treat the first row as data")
	f.StringVarP(&stDelimiter, "delimiter", "d", "", "field delimiter: one character or 'tab' (default from extension)")
	f.StringVar(&stFormat, "format", "csv", "output format: csv|json|markdown")
}
