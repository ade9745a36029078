package stats

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/shirou/gopsutil/v3/cpu"
	"go.uber.org/zap"
)

// RecordReader yields rows until io.EOF. A *csv.Reader satisfies it.
//
// Fields must already be valid UTF-8; the engine does not re-validate.
type RecordReader interface {
	Read() ([]string, error)
}

// RecordReadCloser is a RecordReader positioned inside an indexed input.
type RecordReadCloser interface {
	RecordReader
	io.Closer
}

// Indexed gives random access to the rows of an input.
type Indexed interface {
	// Count is the number of data rows.
	Count() uint64
	// OpenAt returns an independent reader positioned at row.
	OpenAt(row uint64) (RecordReadCloser, error)
}

// Input is what a run reads from: a sequential reader and, optionally, an
// index enabling parallel chunks.
type Input struct {
	Reader RecordReader
	Index  Indexed
}

// Selection lists the record positions to compute statistics for, in output
// order.
type Selection []int

// Select copies the selected fields of rec into dst. Missing trailing fields
// read as empty.
func (sel Selection) Select(dst, rec []string) []string {
	dst = dst[:0]
	for _, i := range sel {
		if i < len(rec) {
			dst = append(dst, rec[i])
		} else {
			dst = append(dst, "")
		}
	}
	return dst
}

// Mode is how the engine scans its input.
type Mode int

const (
	Sequential Mode = iota
	Parallel
)

func (m Mode) String() string {
	if m == Parallel {
		return "parallel"
	}
	return "sequential"
}

// Observer receives progress counters. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObservePlan(mode string, jobs, chunks int)
	ObserveRows(n int)
	ObserveChunk()
}

// Engine computes column statistics over an Input.
type Engine struct {
	opts  Options
	which Which
	jobs  int
	log   *zap.Logger
	obs   Observer
}

// NewEngine builds an engine. log and obs may be nil.
func NewEngine(opts Options, log *zap.Logger, obs Observer) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = DetectJobs()
	}
	return &Engine{
		opts:  opts,
		which: opts.Which(),
		jobs:  jobs,
		log:   log,
		obs:   obs,
	}
}

// DetectJobs returns the number of logical CPUs.
func DetectJobs() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Which returns the statistics selection every bundle of this engine uses.
func (e *Engine) Which() Which { return e.which }

// Jobs returns the resolved worker count.
func (e *Engine) Jobs() int { return e.jobs }

// Plan picks the scan mode for idx.
func (e *Engine) Plan(idx Indexed) Mode {
	if idx == nil || e.jobs <= 1 {
		return Sequential
	}
	// chunking does not handle an empty range
	if idx.Count() == 0 {
		return Sequential
	}
	size := chunkSize(idx.Count(), e.jobs)
	if numChunks(idx.Count(), size) <= 1 {
		return Sequential
	}
	return Parallel
}

// Compute scans in according to Plan and returns one merged bundle per
// selected column.
func (e *Engine) Compute(ctx context.Context, in Input, sel Selection, dates DateConfig) ([]*Stats, error) {
	mode := e.Plan(in.Index)
	e.log.Debug("stats plan", zap.Stringer("mode", mode), zap.Int("jobs", e.jobs), zap.Int("columns", len(sel)))
	if mode == Parallel {
		return e.parallel(ctx, in.Index, sel, dates)
	}
	if in.Reader == nil {
		if in.Index == nil {
			return nil, errors.New("no input reader")
		}
		r, err := in.Index.OpenAt(0)
		if err != nil {
			return nil, fmt.Errorf("open index at 0: %w", err)
		}
		defer r.Close()
		in.Reader = r
	}
	if e.obs != nil {
		e.obs.ObservePlan(mode.String(), 1, 1)
	}
	stats, rows, err := e.compute(ctx, in.Reader, sel, dates, -1)
	if err != nil {
		return nil, err
	}
	e.log.Info("scanned records sequentially", zap.Int64("records", rows), zap.Int("columns", len(sel)))
	return stats, nil
}

// compute feeds up to limit rows (all when limit < 0) into a fresh bundle set.
func (e *Engine) compute(ctx context.Context, r RecordReader, sel Selection, dates DateConfig, limit int64) ([]*Stats, int64, error) {
	set := NewStatsSet(e.which, len(sel))
	modes := make([]DateMode, len(sel))
	for i := range modes {
		modes[i] = dates.Mode(i)
	}
	var (
		n      int64
		fields []string
	)
	for limit < 0 || n < limit {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, n, fmt.Errorf("read row %d: %w", n+1, err)
		}
		n++
		fields = sel.Select(fields, rec)
		for i, f := range fields {
			set[i].Add(f, modes[i])
		}
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, n, fmt.Errorf("stats cancelled at row %d: %w", n, err)
			}
			if e.obs != nil {
				e.obs.ObserveRows(4096)
			}
		}
	}
	if e.obs != nil {
		e.obs.ObserveRows(int(n % 4096))
	}
	return set, n, nil
}

type chunkResult struct {
	chunk int
	stats []*Stats
	rows  int64
	err   error
}

func (e *Engine) parallel(ctx context.Context, idx Indexed, sel Selection, dates DateConfig) ([]*Stats, error) {
	count := idx.Count()
	size := chunkSize(count, e.jobs)
	nchunks := numChunks(count, size)
	if e.obs != nil {
		e.obs.ObservePlan(Parallel.String(), e.jobs, nchunks)
	}
	e.log.Info("scanning records in parallel",
		zap.Uint64("records", count),
		zap.Int("jobs", e.jobs),
		zap.Int("chunks", nchunks),
		zap.Uint64("chunk_size", size),
	)

	pool, err := ants.NewPool(e.jobs, ants.WithPanicHandler(func(v any) {
		e.log.Error("stats worker panic", zap.Any("panic", v))
	}))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan chunkResult, nchunks)
	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < nchunks; i++ {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, fmt.Errorf("stats cancelled before chunk %d: %w", i, err)
		}
		chunk := i
		wg.Add(1)
		task := func() {
			defer wg.Done()
			results <- e.runChunk(ctx, idx, sel, dates, chunk, size)
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit chunk %d: %w", chunk, err)
		}
	}
	wg.Wait()
	close(results)

	sets := make([][]*Stats, 0, nchunks)
	var failed error
	for res := range results {
		if res.err != nil {
			failed = errors.Join(failed, res.err)
			continue
		}
		e.log.Debug("chunk done", zap.Int("chunk", res.chunk), zap.Int64("rows", res.rows))
		sets = append(sets, res.stats)
	}
	if failed != nil {
		return nil, fmt.Errorf("parallel stats failed, rerun with one job: %w", failed)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("stats cancelled before merge: %w", err)
	}
	merged := MergeAll(sets)
	if merged == nil {
		merged = NewStatsSet(e.which, len(sel))
	}
	e.log.Debug("chunks merged", zap.Int("chunks", len(sets)), zap.Duration("elapsed", time.Since(start)))
	return merged, nil
}

func (e *Engine) runChunk(ctx context.Context, idx Indexed, sel Selection, dates DateConfig, chunk int, size uint64) (res chunkResult) {
	res.chunk = chunk
	defer func() {
		if v := recover(); v != nil {
			res = chunkResult{chunk: chunk, err: fmt.Errorf("chunk %d: panic: %v", chunk, v)}
		}
	}()
	r, err := idx.OpenAt(uint64(chunk) * size)
	if err != nil {
		res.err = fmt.Errorf("chunk %d: seek: %w", chunk, err)
		return res
	}
	defer r.Close()
	res.stats, res.rows, err = e.compute(ctx, r, sel, dates, int64(size))
	if err != nil {
		res.err = fmt.Errorf("chunk %d: %w", chunk, err)
		return res
	}
	if e.obs != nil {
		e.obs.ObserveChunk()
	}
	return res
}

// Records renders every bundle with the engine's rounding.
func (e *Engine) Records(set []*Stats) [][]string {
	out := make([][]string, len(set))
	for i, s := range set {
		out[i] = s.Record(e.opts.Round)
	}
	return out
}

func chunkSize(count uint64, jobs int) uint64 {
	n := uint64(jobs)
	if count < n {
		return count
	}
	return count / n
}

func numChunks(count, size uint64) int {
	if size == 0 {
		return int(count)
	}
	n := count / size
	if n*size < count {
		n++
	}
	return int(n)
}
