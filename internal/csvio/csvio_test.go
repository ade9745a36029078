package csvio

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/colstats/internal/stats"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readAll(t *testing.T, r stats.RecordReader) [][]string {
	t.Helper()
	var out [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, append([]string(nil), rec...))
	}
}

const sample = "id,name,note\n1,alpha,\"multi\nline\"\n2,beta\n3,gamma,x\n"

func TestReaderHeadersAndPadding(t *testing.T) {
	path := writeFile(t, "data.csv", sample)
	r, err := Open(Config{Path: path})
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []string{"id", "name", "note"}, r.Headers())
	assert.Equal(t, "data.csv", r.Name())
	assert.Equal(t, [][]string{
		{"1", "alpha", "multi\nline"},
		{"2", "beta", ""},
		{"3", "gamma", "x"},
	}, readAll(t, r))
}

func TestReaderNoHeaders(t *testing.T) {
	path := writeFile(t, "data.tsv", "1\ta\n2\tb\n")
	r, err := Open(Config{Path: path, NoHeaders: true})
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []string{"1", "2"}, r.Headers())
	assert.Equal(t, [][]string{{"1", "a"}, {"2", "b"}}, readAll(t, r))
}

func TestReaderEmptyFile(t *testing.T) {
	r, err := Open(Config{Path: writeFile(t, "empty.csv", "")})
	require.NoError(t, err)
	defer r.Close()
	assert.Empty(t, r.Headers())
	assert.Empty(t, readAll(t, r))
}

func TestReaderRejectsInvalidUTF8(t *testing.T) {
	path := writeFile(t, "bad.csv", "a,b\n1,ok\n2,\xff\xfe\n")
	r, err := Open(Config{Path: path})
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Read()
	require.NoError(t, err)
	_, err = r.Read()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid UTF-8 in row 2 field 2")

	_, err = Open(Config{Path: writeFile(t, "badhdr.csv", "\xff\n1\n")})
	assert.Error(t, err)
}

func TestDelimiters(t *testing.T) {
	assert.Equal(t, '\t', Config{Path: "x.TSV"}.Comma())
	assert.Equal(t, ',', Config{Path: "x.csv"}.Comma())
	assert.Equal(t, ';', Config{Path: "x.ssv"}.Comma())
	assert.Equal(t, '|', Config{Path: "x.tsv", Delimiter: '|'}.Comma())

	for in, want := range map[string]rune{"": 0, ",": ',', ";": ';', "tab": '\t', `\t`: '\t', "|": '|'} {
		got, err := ParseDelimiter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"ab", `"`, "\n"} {
		_, err := ParseDelimiter(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseSelection(t *testing.T) {
	headers := []string{"id", "name", "amount", "due-date", "3"}
	cases := []struct {
		expr string
		want stats.Selection
	}{
		{"", stats.Selection{0, 1, 2, 3, 4}},
		{"name", stats.Selection{1}},
		{"2,1", stats.Selection{1, 0}},
		{"1-3", stats.Selection{0, 1, 2}},
		{"amount-id", stats.Selection{2, 1, 0}},
		{"due-date", stats.Selection{3}},
		{" id , due-date ", stats.Selection{0, 3}},
		{"3", stats.Selection{4}}, // names win over indices
		{"1-1", stats.Selection{0}},
		{"3-1", stats.Selection{2, 1, 0}}, // digits in a range are indices
		{"name-3", stats.Selection{1, 2}},
		{"5-3", stats.Selection{4, 3, 2}},
	}
	for _, c := range cases {
		got, err := ParseSelection(c.expr, headers)
		require.NoError(t, err, c.expr)
		assert.Equal(t, c.want, got, c.expr)
	}

	for _, bad := range []string{"missing", "0", "6", "1-9", "a-b", "id,,name"} {
		_, err := ParseSelection(bad, headers)
		assert.Error(t, err, bad)
	}

	assert.Equal(t, []string{"amount", "id"}, SelectedHeaders(stats.Selection{2, 0}, headers))
}

func TestIndexRoundTrip(t *testing.T) {
	path := writeFile(t, "data.csv", sample)
	cfg := Config{Path: path}
	n, err := BuildIndex(cfg)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	ix, err := OpenIndex(cfg)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), ix.Count())

	r, err := ix.OpenAt(1)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"2", "beta"}, {"3", "gamma", "x"}}, readAll(t, r))
	require.NoError(t, r.Close())

	r, err = ix.OpenAt(0)
	require.NoError(t, err)
	rec, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "alpha", "multi\nline"}, rec)
	require.NoError(t, r.Close())

	r, err = ix.OpenAt(3)
	require.NoError(t, err)
	assert.Empty(t, readAll(t, r))
	require.NoError(t, r.Close())

	_, err = ix.OpenAt(4)
	assert.Error(t, err)
}

func TestIndexNoHeaders(t *testing.T) {
	cfg := Config{Path: writeFile(t, "raw.csv", "a,1\nb,2\n")}
	cfg.NoHeaders = true
	n, err := BuildIndex(cfg)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	ix, err := OpenIndex(cfg)
	require.NoError(t, err)
	r, err := ix.OpenAt(0)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, [][]string{{"a", "1"}, {"b", "2"}}, readAll(t, r))

	// the same index serves a run that treats the first row as a header
	ix, err = OpenIndex(Config{Path: cfg.Path})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), ix.Count())
}

func TestOpenIndexMissingOrStale(t *testing.T) {
	path := writeFile(t, "data.csv", sample)
	_, err := OpenIndex(Config{Path: path})
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = BuildIndex(Config{Path: path})
	require.NoError(t, err)
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))
	_, err = OpenIndex(Config{Path: path})
	assert.ErrorIs(t, err, ErrStaleIndex)
}

func TestOpenIndexCorrupt(t *testing.T) {
	path := writeFile(t, "data.csv", sample)
	require.NoError(t, os.WriteFile(IndexPath(path), []byte{1, 2, 3}, 0o644))
	_, err := OpenIndex(Config{Path: path})
	assert.ErrorContains(t, err, "corrupt index")
}

func TestEngineOverIndexMatchesSequential(t *testing.T) {
	content := "n,label,when\n"
	for i := 0; i < 200; i++ {
		content += []string{"1,a,2020-01-01\n", "2.5,b,2020-02-03\n", ",c,\n", "7,\"d,e\",2021-06-30\n"}[i%4]
	}
	path := writeFile(t, "big.csv", content)
	cfg := Config{Path: path}
	_, err := BuildIndex(cfg)
	require.NoError(t, err)
	ix, err := OpenIndex(cfg)
	require.NoError(t, err)

	rd, err := Open(cfg)
	require.NoError(t, err)
	defer rd.Close()
	sel, err := ParseSelection("", rd.Headers())
	require.NoError(t, err)

	opts := stats.DefaultOptions()
	opts.Everything = true
	opts.InferDates = true
	dates := stats.NewDateConfig(true, false, rd.Headers(), stats.WhitelistAll)

	opts.Jobs = 1
	seq := stats.NewEngine(opts, nil, nil)
	want, err := seq.Compute(context.Background(), stats.Input{Reader: rd}, sel, dates)
	require.NoError(t, err)

	opts.Jobs = 4
	par := stats.NewEngine(opts, nil, nil)
	require.Equal(t, stats.Parallel, par.Plan(ix))
	got, err := par.Compute(context.Background(), stats.Input{Index: ix}, sel, dates)
	require.NoError(t, err)
	assert.Equal(t, seq.Records(want), par.Records(got))
	assert.Equal(t, stats.TypeDate, got[2].Type())
}
