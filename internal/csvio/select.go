package csvio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/colstats/internal/stats"
)

// ParseSelection resolves a column selection against headers. The expr is a
// comma-separated list of header names, 1-based indices and inclusive a-b
// ranges whose ends are names or indices; a range may run backwards. A bare
// token matches a header name before an index, while an all-digit range end
// is always an index. An empty expr selects every column.
func ParseSelection(expr string, headers []string) (stats.Selection, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		sel := make(stats.Selection, len(headers))
		for i := range sel {
			sel[i] = i
		}
		return sel, nil
	}

	var sel stats.Selection
	for _, tok := range strings.Split(expr, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return nil, fmt.Errorf("empty column in selection %q", expr)
		}
		if i, ok := lookupColumn(tok, headers); ok {
			sel = append(sel, i)
			continue
		}
		lo, hi, found := strings.Cut(tok, "-")
		if !found {
			return nil, fmt.Errorf("unknown column %q", tok)
		}
		start, ok := lookupRangeEnd(strings.TrimSpace(lo), headers)
		if !ok {
			return nil, fmt.Errorf("unknown column %q in range %q", lo, tok)
		}
		end, ok := lookupRangeEnd(strings.TrimSpace(hi), headers)
		if !ok {
			return nil, fmt.Errorf("unknown column %q in range %q", hi, tok)
		}
		step := 1
		if end < start {
			step = -1
		}
		for i := start; ; i += step {
			sel = append(sel, i)
			if i == end {
				break
			}
		}
	}
	return sel, nil
}

// lookupColumn matches an exact header name first, then a 1-based index.
func lookupColumn(tok string, headers []string) (int, bool) {
	for i, h := range headers {
		if h == tok {
			return i, true
		}
	}
	n, err := strconv.Atoi(tok)
	if err != nil || n < 1 || n > len(headers) {
		return 0, false
	}
	return n - 1, true
}

// lookupRangeEnd resolves one end of an a-b range.
func lookupRangeEnd(tok string, headers []string) (int, bool) {
	if tok != "" && strings.Trim(tok, "0123456789") == "" {
		n, err := strconv.Atoi(tok)
		if err != nil || n < 1 || n > len(headers) {
			return 0, false
		}
		return n - 1, true
	}
	return lookupColumn(tok, headers)
}

// SelectedHeaders returns the names of the selected columns.
func SelectedHeaders(sel stats.Selection, headers []string) []string {
	out := make([]string, len(sel))
	for i, c := range sel {
		out[i] = headers[c]
	}
	return out
}
