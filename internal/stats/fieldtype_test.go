package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldTypeMerge(t *testing.T) {
	cases := []struct {
		a, b, want FieldType
	}{
		{TypeNull, TypeNull, TypeNull},
		{TypeNull, TypeInteger, TypeInteger},
		{TypeDate, TypeNull, TypeDate},
		{TypeInteger, TypeInteger, TypeInteger},
		{TypeInteger, TypeFloat, TypeFloat},
		{TypeFloat, TypeInteger, TypeFloat},
		{TypeDate, TypeDate, TypeDate},
		{TypeDate, TypeDateTime, TypeDateTime},
		{TypeDateTime, TypeDate, TypeDateTime},
		{TypeDateTime, TypeDateTime, TypeDateTime},
		{TypeInteger, TypeDate, TypeString},
		{TypeFloat, TypeDateTime, TypeString},
		{TypeString, TypeNull, TypeString},
		{TypeNull, TypeString, TypeString},
		{TypeString, TypeInteger, TypeString},
		{TypeDate, TypeString, TypeString},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.a.Merge(c.b), "%s + %s", c.a, c.b)
		assert.Equal(t, c.want, c.b.Merge(c.a), "%s + %s", c.b, c.a)
	}
}

func TestFieldTypeString(t *testing.T) {
	assert.Equal(t, "NULL", TypeNull.String())
	assert.Equal(t, "String", TypeString.String())
	assert.Equal(t, "Float", TypeFloat.String())
	assert.Equal(t, "Integer", TypeInteger.String())
	assert.Equal(t, "Date", TypeDate.String())
	assert.Equal(t, "DateTime", TypeDateTime.String())
}

func TestInferTypeNumbers(t *testing.T) {
	off := DateMode{}
	cases := []struct {
		in      string
		current FieldType
		want    FieldType
	}{
		{"", TypeNull, TypeNull},
		{"", TypeInteger, TypeNull},
		{"42", TypeNull, TypeInteger},
		{"-7", TypeNull, TypeInteger},
		{"+7", TypeNull, TypeInteger},
		{"0", TypeNull, TypeInteger},
		{"007", TypeNull, TypeString},
		{"042", TypeInteger, TypeString},
		{"2.5", TypeNull, TypeFloat},
		{"0.5", TypeNull, TypeFloat},
		{"1e3", TypeInteger, TypeFloat},
		{"1e400", TypeFloat, TypeFloat},
		{"-1e400", TypeNull, TypeFloat},
		{"abc", TypeNull, TypeString},
		{"12", TypeString, TypeString},
		{"2011-07-05", TypeNull, TypeString},
	}
	for _, c := range cases {
		got := InferType(c.in, c.current, off)
		assert.Equal(t, c.want, got.Type, "InferType(%q, %s)", c.in, c.current)
	}

	v := InferType("-12", TypeNull, off)
	assert.Equal(t, int64(-12), v.Int)
	assert.Equal(t, -12.0, v.Float)
	v = InferType("2.25", TypeFloat, off)
	assert.Equal(t, 2.25, v.Float)
}

func TestInferTypeDates(t *testing.T) {
	on := DateMode{Infer: true}

	v := InferType("2011-07-05", TypeNull, on)
	require.Equal(t, TypeDate, v.Type)
	assert.Equal(t, time.Date(2011, 7, 5, 0, 0, 0, 0, time.UTC).UnixMilli(), v.Millis)

	v = InferType("2011-07-05 13:45:00", TypeDate, on)
	require.Equal(t, TypeDateTime, v.Type)
	assert.Equal(t, time.Date(2011, 7, 5, 13, 45, 0, 0, time.UTC).UnixMilli(), v.Millis)

	// numbers win over dates while the column is still untyped
	assert.Equal(t, TypeInteger, InferType("20110705", TypeNull, on).Type)
	// date parsing is not attempted on numeric columns
	assert.Equal(t, TypeString, InferType("2011-07-05", TypeInteger, on).Type)
	assert.Equal(t, TypeString, InferType("not a date", TypeDate, on).Type)
}

func TestInferTypeDayMonthPreference(t *testing.T) {
	dmy := InferType("05/07/2011", TypeNull, DateMode{Infer: true, PreferDMY: true})
	require.Equal(t, TypeDate, dmy.Type)
	assert.Equal(t, time.Date(2011, 7, 5, 0, 0, 0, 0, time.UTC).UnixMilli(), dmy.Millis)

	mdy := InferType("05/07/2011", TypeNull, DateMode{Infer: true})
	require.Equal(t, TypeDate, mdy.Type)
	assert.Equal(t, time.Date(2011, 5, 7, 0, 0, 0, 0, time.UTC).UnixMilli(), mdy.Millis)
}

func TestNewDateConfig(t *testing.T) {
	headers := []string{"id", "Created_At", "close_date", "amount", "Opened"}

	dc := NewDateConfig(true, false, headers, DefaultDatesWhitelist)
	assert.Equal(t, []int{1, 2, 4}, dc.Shortlisted())
	assert.True(t, dc.Mode(1).Infer)
	assert.False(t, dc.Mode(0).Infer)

	dc = NewDateConfig(true, true, headers, "ALL")
	assert.Len(t, dc.Shortlisted(), len(headers))
	assert.True(t, dc.Mode(3).PreferDMY)

	dc = NewDateConfig(true, false, headers, "none")
	assert.Empty(t, dc.Shortlisted())

	dc = NewDateConfig(false, false, headers, WhitelistAll)
	assert.Empty(t, dc.Shortlisted())

	dc = NewDateConfig(true, false, headers, " amount , ID ")
	assert.Equal(t, []int{0, 3}, dc.Shortlisted())

	// out of range columns never infer dates
	assert.False(t, dc.Mode(99).Infer)
}

func TestFormatMillis(t *testing.T) {
	ms := time.Date(2011, 7, 5, 13, 45, 1, 250*int(time.Millisecond), time.UTC).UnixMilli()
	assert.Equal(t, "2011-07-05", formatMillis(ms, TypeDate))
	assert.Equal(t, "2011-07-05T13:45:01.250+00:00", formatMillis(ms, TypeDateTime))

	ms = time.Date(2011, 7, 5, 13, 45, 1, 0, time.UTC).UnixMilli()
	assert.Equal(t, "2011-07-05T13:45:01+00:00", formatMillis(ms, TypeDateTime))
}
