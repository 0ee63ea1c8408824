package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterFixture() ChartData {
	return ChartData{
		Title: "All hp",
		Dates: days(4),
		Series: []Series{
			{Name: "low", Values: []float64{1, 2, 3, 4}},
			{Name: "empty", Values: []float64{Gap, Gap, Gap, Gap}},
			{Name: "high", Values: []float64{10, 20, 30, Gap}},
			{Name: "mid", Values: []float64{5, 6, 7, 8}},
		},
	}
}

func names(d ChartData) []string {
	out := make([]string, len(d.Series))
	for i, s := range d.Series {
		out[i] = s.Name
	}
	return out
}

func TestActiveOnly(t *testing.T) {
	in := filterFixture()
	out := ActiveOnly(in)
	assert.Equal(t, []string{"low", "high", "mid"}, names(out))
	assert.Len(t, in.Series, 4, "input is left untouched")
}

func TestTopN(t *testing.T) {
	out := TopN(2)(filterFixture())
	assert.Equal(t, []string{"high", "mid"}, names(out), "ranked by latest sample, original order kept")

	out = TopN(10)(filterFixture())
	assert.Len(t, out.Series, 4)
}

func TestLastN(t *testing.T) {
	out := LastN(2)(filterFixture())
	require.Len(t, out.Dates, 2)
	assert.True(t, out.Dates[0].Equal(day(2024, 1, 3)))
	for _, s := range out.Series {
		assert.Len(t, s.Values, 2)
	}
	assert.Equal(t, []float64{3, 4}, out.Series[0].Values)
}

func TestParseFilters(t *testing.T) {
	f, err := ParseFilters("")
	require.NoError(t, err)
	assert.Nil(t, f)

	f, err = ParseFilters("active, top:2, since:01/02/2024")
	require.NoError(t, err)
	out := f(filterFixture())
	assert.Equal(t, []string{"high", "mid"}, names(out))
	require.Len(t, out.Dates, 3)
	assert.Equal(t, []float64{6, 7, 8}, out.Series[1].Values)

	for _, bad := range []string{"bogus", "top:x", "top:0", "last:-1", "since:2024"} {
		_, err := ParseFilters(bad)
		assert.ErrorIs(t, err, ErrUnknownFilter, bad)
	}
}

func TestIndexed(t *testing.T) {
	in := ChartData{
		YLabel: "xp",
		Dates:  days(4),
		Series: []Series{
			{Name: "a", Values: []float64{Gap, 0, 50, 100}},
			{Name: "b", Values: []float64{Gap, Gap, Gap, Gap}},
		},
	}
	out := Indexed(in)
	assert.Equal(t, []float64{Gap, 0, 100, 200}, out.Series[0].Values)
	assert.Equal(t, []float64{Gap, Gap, Gap, Gap}, out.Series[1].Values)
	assert.Equal(t, "xp (indexed)", out.YLabel)
	assert.Equal(t, 50.0, in.Series[0].Values[2], "input is not modified")
}

func TestIndexedNeverProducesGap(t *testing.T) {
	out := Indexed(ChartData{Dates: days(2), Series: []Series{{Values: []float64{200, -2}}}})
	got := out.Series[0].Values[1]
	assert.False(t, isGap(got))
	assert.InDelta(t, -1.0, got, 1e-12)
}
