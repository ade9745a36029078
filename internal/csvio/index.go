package csvio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/KaramelBytes/colstats/internal/stats"
	"github.com/KaramelBytes/colstats/internal/utils"
)

// IndexSuffix is appended to the data path to name its index.
const IndexSuffix = ".idx"

// ErrStaleIndex is returned when the data file changed after its index was
// built.
var ErrStaleIndex = errors.New("index is older than its data file")

// IndexPath returns the index location for a data file.
func IndexPath(dataPath string) string { return dataPath + IndexSuffix }

// BuildIndex scans cfg.Path and writes its index: one big-endian uint64 byte
// offset per record, header included, followed by the record count. The same
// index therefore serves runs with and without --no-headers. It returns the
// number of data rows.
func BuildIndex(cfg Config) (uint64, error) {
	f, err := os.Open(cfg.Path)
	if err != nil {
		return 0, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	cr := newCSVReader(bufio.NewReaderSize(f, 1<<16), cfg.Comma())
	var count uint64
	err = utils.SafeWrite(IndexPath(cfg.Path), func(w io.Writer) error {
		var buf [8]byte
		for {
			off := cr.InputOffset()
			_, err := cr.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return fmt.Errorf("read record %d: %w", count+1, err)
			}
			binary.BigEndian.PutUint64(buf[:], uint64(off))
			if _, err := w.Write(buf[:]); err != nil {
				return err
			}
			count++
		}
		binary.BigEndian.PutUint64(buf[:], count)
		_, err := w.Write(buf[:])
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("build index: %w", err)
	}
	if !cfg.NoHeaders && count > 0 {
		count--
	}
	return count, nil
}

// Index gives random access to the data rows of a file.
type Index struct {
	cfg     Config
	offsets []int64
}

// OpenIndex loads the index of cfg.Path. It fails with an error wrapping
// os.ErrNotExist when there is none and ErrStaleIndex when the data file is
// newer than the index.
func OpenIndex(cfg Config) (*Index, error) {
	ipath := IndexPath(cfg.Path)
	istat, err := os.Stat(ipath)
	if err != nil {
		return nil, fmt.Errorf("stat index: %w", err)
	}
	dstat, err := os.Stat(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("stat csv: %w", err)
	}
	if dstat.ModTime().After(istat.ModTime()) {
		return nil, fmt.Errorf("%s: %w", ipath, ErrStaleIndex)
	}

	b, err := os.ReadFile(ipath)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	if len(b) < 8 || len(b)%8 != 0 {
		return nil, fmt.Errorf("corrupt index %s: size %d", ipath, len(b))
	}
	n := len(b)/8 - 1
	count := binary.BigEndian.Uint64(b[len(b)-8:])
	if count != uint64(n) {
		return nil, fmt.Errorf("corrupt index %s: %d offsets for %d records", ipath, n, count)
	}
	offsets := make([]int64, n)
	for i := range offsets {
		offsets[i] = int64(binary.BigEndian.Uint64(b[i*8:]))
	}
	if !cfg.NoHeaders && len(offsets) > 0 {
		offsets = offsets[1:]
	}
	return &Index{cfg: cfg, offsets: offsets}, nil
}

// Count is the number of indexed data rows.
func (ix *Index) Count() uint64 { return uint64(len(ix.offsets)) }

// OpenAt returns a reader positioned at data row row. Opening at Count
// yields a reader that is immediately at EOF.
func (ix *Index) OpenAt(row uint64) (stats.RecordReadCloser, error) {
	if row > ix.Count() {
		return nil, fmt.Errorf("row %d beyond index of %d rows", row, ix.Count())
	}
	f, err := os.Open(ix.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	var off int64
	if row < ix.Count() {
		off = ix.offsets[row]
	} else if off, err = f.Seek(0, io.SeekEnd); err != nil {
		f.Close()
		return nil, fmt.Errorf("seek end: %w", err)
	}
	if _, err := f.Seek(off, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("seek row %d: %w", row, err)
	}
	return &rowReader{
		f:   f,
		csv: newCSVReader(bufio.NewReaderSize(f, 1<<16), ix.cfg.Comma()),
		row: row,
	}, nil
}
