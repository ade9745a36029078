// Package csvio reads delimited files for the statistics engine and keeps
// the row-offset index that lets the engine split a file into chunks.
package csvio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Config describes an input file.
type Config struct {
	// Path of the file; "" or "-" reads stdin.
	Path string
	// Delimiter for fields. If 0, it is picked from the file extension.
	Delimiter rune
	// NoHeaders treats the first row as data and names columns 1..n.
	NoHeaders bool
}

// Comma returns the delimiter to use for the file.
func (c Config) Comma() rune {
	if c.Delimiter != 0 {
		return c.Delimiter
	}
	return sniffDelimiter(c.Path)
}

// ParseDelimiter accepts a single character, "tab" or "\t".
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "tab", `\t`, "\t":
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("unsupported delimiter: %q", s)
	}
	return r, nil
}

func sniffDelimiter(path string) rune {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".tab") {
		return '\t'
	}
	if strings.HasSuffix(name, ".ssv") {
		return ';'
	}
	return ','
}

func newCSVReader(r io.Reader, comma rune) *csv.Reader {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	cr.Comma = comma
	return cr
}

// Reader yields the data rows of a file with every field checked to be
// valid UTF-8. Short rows are padded to the header width.
type Reader struct {
	src     io.ReadCloser
	name    string
	csv     *csv.Reader
	headers []string
	pending []string // first data row when there is no header
	row     int
}

// Stdin reports whether the config reads standard input.
func (c Config) Stdin() bool { return c.Path == "" || c.Path == "-" }

// Open opens cfg.Path and reads its header row.
func Open(cfg Config) (*Reader, error) {
	var (
		f    io.ReadCloser
		name string
	)
	if cfg.Stdin() {
		f, name = io.NopCloser(os.Stdin), "stdin"
	} else {
		file, err := os.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open csv: %w", err)
		}
		f, name = file, filepath.Base(cfg.Path)
	}
	r := &Reader{src: f, name: name, csv: newCSVReader(bufio.NewReaderSize(f, 1<<16), cfg.Comma())}

	first, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return r, nil
		}
		f.Close()
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := validUTF8(first, 0); err != nil {
		f.Close()
		return nil, err
	}
	if cfg.NoHeaders {
		r.headers = make([]string, len(first))
		for i := range first {
			r.headers[i] = strconv.Itoa(i + 1)
		}
		r.pending = append([]string(nil), first...)
		return r, nil
	}
	r.headers = append([]string(nil), first...)
	return r, nil
}

// Headers returns the column names.
func (r *Reader) Headers() []string { return r.headers }

// Name is the base name of the input, or "stdin".
func (r *Reader) Name() string { return r.name }

// Read returns the next data row or io.EOF.
func (r *Reader) Read() ([]string, error) {
	var rec []string
	if r.pending != nil {
		rec, r.pending = r.pending, nil
	} else {
		var err error
		rec, err = r.csv.Read()
		if err != nil {
			return nil, err
		}
	}
	r.row++
	if err := validUTF8(rec, r.row); err != nil {
		return nil, err
	}
	if len(rec) < len(r.headers) {
		padded := make([]string, len(r.headers))
		copy(padded, rec)
		rec = padded
	}
	return rec, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error { return r.src.Close() }

func validUTF8(rec []string, row int) error {
	for i, f := range rec {
		if !utf8.ValidString(f) {
			if row == 0 {
				return fmt.Errorf("invalid UTF-8 in header field %d", i+1)
			}
			return fmt.Errorf("invalid UTF-8 in row %d field %d", row, i+1)
		}
	}
	return nil
}

// rowReader reads from an offset inside the file. It backs Index.OpenAt.
type rowReader struct {
	f   *os.File
	csv *csv.Reader
	row uint64
}

func (r *rowReader) Read() ([]string, error) {
	rec, err := r.csv.Read()
	if err != nil {
		return nil, err
	}
	r.row++
	if err := validUTF8(rec, int(r.row)); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *rowReader) Close() error { return r.f.Close() }
