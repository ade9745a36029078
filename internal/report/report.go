// Package report renders column statistics as CSV, JSON or Markdown.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
)

// Table is the rendered output of a run: one row per selected column, with
// the column name first.
type Table struct {
	// Name is the input file name, shown by Markdown.
	Name    string
	Rows    uint64
	Headers []string
	Records [][]string
	// Warnings are printed as notes by Markdown.
	Warnings []string
}

// Format is an output encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts csv, json, markdown or md.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unsupported format: %s (use csv|json|markdown)", s)
}

// Write renders t to w in format f. delim only applies to CSV.
func (t *Table) Write(w io.Writer, f Format, delim rune) error {
	switch f {
	case FormatJSON:
		return t.WriteJSON(w)
	case FormatMarkdown:
		_, err := io.WriteString(w, t.Markdown())
		return err
	default:
		return t.WriteCSV(w, delim)
	}
}

// WriteCSV writes the header row and records.
func (t *Table) WriteCSV(w io.Writer, delim rune) error {
	cw := csv.NewWriter(w)
	if delim != 0 {
		cw.Comma = delim
	}
	if err := cw.Write(t.Headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.Records); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return nil
}

// WriteJSON writes an array with one object per record. Keys keep header
// order and every value stays a string, so OVERFLOW and empty cells survive.
func (t *Table) WriteJSON(w io.Writer) error {
	var b bytes.Buffer
	b.WriteString("[")
	for i, rec := range t.Records {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("\n  {")
		for j, h := range t.Headers {
			if j > 0 {
				b.WriteString(", ")
			}
			val := ""
			if j < len(rec) {
				val = rec[j]
			}
			k, err := json.Marshal(h)
			if err != nil {
				return fmt.Errorf("marshal json: %w", err)
			}
			v, err := json.Marshal(val)
			if err != nil {
				return fmt.Errorf("marshal json: %w", err)
			}
			b.Write(k)
			b.WriteString(": ")
			b.Write(v)
		}
		b.WriteString("}")
	}
	if len(t.Records) > 0 {
		b.WriteString("\n")
	}
	b.WriteString("]\n")
	_, err := w.Write(b.Bytes())
	return err
}

// Markdown renders a schema summary followed by the full statistics table.
func (t *Table) Markdown() string {
	var b strings.Builder
	b.WriteString("[COLUMN STATISTICS]\n")
	if t.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", t.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", t.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(t.Records)))

	typeCol := t.column("type")
	nullCol := t.column("nullcount")
	sparseCol := t.column("sparsity")
	if typeCol >= 0 {
		b.WriteString("[SCHEMA]\n")
		for _, rec := range t.Records {
			b.WriteString(fmt.Sprintf("- %s: %s", safeName(cell(rec, 0)), cell(rec, typeCol)))
			if nullCol >= 0 {
				b.WriteString(fmt.Sprintf(" (nulls %s", cell(rec, nullCol)))
				if sparseCol >= 0 {
					b.WriteString(fmt.Sprintf(", sparsity %s", cell(rec, sparseCol)))
				}
				b.WriteString(")")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("[STATISTICS]\n")
	b.WriteString("| ")
	for i, h := range t.Headers {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeVal(h))
	}
	b.WriteString(" |\n| ")
	for i := range t.Headers {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, rec := range t.Records {
		b.WriteString("| ")
		for i := range t.Headers {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeVal(cell(rec, i)))
		}
		b.WriteString(" |\n")
	}

	if len(t.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range t.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (t *Table) column(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return safeVal(s)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
