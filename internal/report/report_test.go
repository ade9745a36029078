package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return &Table{
		Name:    "data.csv",
		Rows:    3,
		Headers: []string{"field", "type", "sum", "nullcount", "sparsity"},
		Records: [][]string{
			{"id", "Integer", "6", "0", "0"},
			{"note|text", "String", "", "1", "0.3333"},
			{"big", "Integer", "OVERFLOW", "0", "0"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatCSV, "CSV": FormatCSV, "json": FormatJSON, "md": FormatMarkdown, "markdown": FormatMarkdown} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, sampleTable().Write(&b, FormatCSV, 0))
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "field,type,sum,nullcount,sparsity", lines[0])
	assert.Equal(t, "note|text,String,,1,0.3333", lines[2])

	b.Reset()
	require.NoError(t, sampleTable().WriteCSV(&b, '\t'))
	assert.True(t, strings.HasPrefix(b.String(), "field\ttype\t"))
}

func TestWriteJSONKeepsOrderAndStrings(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, sampleTable().Write(&b, FormatJSON, 0))
	out := b.String()

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal(b.Bytes(), &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "OVERFLOW", decoded[2]["sum"])
	assert.Equal(t, "", decoded[1]["sum"])
	assert.Equal(t, "0.3333", decoded[1]["sparsity"])

	first := out[:strings.Index(out, "}")]
	assert.Less(t, strings.Index(first, `"field"`), strings.Index(first, `"type"`))
	assert.Less(t, strings.Index(first, `"type"`), strings.Index(first, `"sparsity"`))

	b.Reset()
	require.NoError(t, (&Table{Headers: []string{"field"}}).WriteJSON(&b))
	assert.Equal(t, "[]\n", b.String())
}

func TestMarkdown(t *testing.T) {
	tbl := sampleTable()
	tbl.Warnings = []string{"no index; scanned sequentially"}
	md := tbl.Markdown()
	assert.Contains(t, md, "[COLUMN STATISTICS]\nFile: data.csv\nRows: 3\nColumns: 3\n")
	assert.Contains(t, md, "- note/text: String (nulls 1, sparsity 0.3333)\n")
	assert.Contains(t, md, "| field | type | sum | nullcount | sparsity |\n| --- | --- | --- | --- | --- |\n")
	assert.Contains(t, md, "| big | Integer | OVERFLOW | 0 | 0 |\n")
	assert.Contains(t, md, "[NOTES]\n- no index; scanned sequentially\n")

	typesOnly := &Table{Headers: []string{"field", "type"}, Records: [][]string{{"", "NULL"}}}
	assert.Contains(t, typesOnly.Markdown(), "- (unnamed): NULL\n")
}
