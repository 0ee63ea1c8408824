package graph

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryParam(t *testing.T) {
	q := "?player=John+Smith&toon=%5Bx%5D%20y&empty=&player=second"
	assert.Equal(t, "John Smith", QueryParam(q, "player"))
	assert.Equal(t, "[x] y", QueryParam(q, "toon"))
	assert.Equal(t, "", QueryParam(q, "empty"))
	assert.Equal(t, "", QueryParam(q, "missing"))
	assert.Equal(t, "ok", QueryParam("bad=%zz&good=ok", "good"))
	assert.Equal(t, "%zz", QueryParam("bad=%zz", "bad"))

	t.Run("semicolon belongs to the value", func(t *testing.T) {
		assert.Equal(t, "a;b", QueryParam("?name=a;b&x=1", "name"))
		assert.Equal(t, "1", QueryParam("?name=a;b&x=1", "x"))
	})
	t.Run("fragment ends the query", func(t *testing.T) {
		assert.Equal(t, "a", QueryParam("?name=a#frag", "name"))
		assert.Equal(t, "", QueryParam("?name=a#&other=b", "other"))
	})
	t.Run("first occurrence wins", func(t *testing.T) {
		assert.Equal(t, "John Smith", QueryParam("player=John+Smith&player=second", "player"))
	})
}

func TestOptionsFromQueryDefaults(t *testing.T) {
	o, err := OptionsFromQuery(url.Values{"url": {"http://stats/x.json"}})
	require.NoError(t, err)
	assert.Equal(t, "http://stats/x.json", o.URL)
	assert.Equal(t, 1000, o.Width)
	assert.Equal(t, 700, o.Height)
	assert.Equal(t, 1000.0, o.RoundingUnit)
	assert.Equal(t, "chart", o.ContainerID)
	assert.False(t, o.TightScale)
	assert.Equal(t, MissingAsGap, o.MissingKey)
}

func TestOptionsFromQuery(t *testing.T) {
	q, err := url.ParseQuery("url=u&entity=a&value=hp&title=T&width=800&height=400&round=50&tight&filter=active&container=box&missing=drop")
	require.NoError(t, err)
	o, err := OptionsFromQuery(q)
	require.NoError(t, err)

	assert.Equal(t, "a", o.EntityKey)
	assert.Equal(t, "hp", o.ValueKey)
	assert.Equal(t, "T", o.Title)
	assert.Equal(t, 800, o.Width)
	assert.Equal(t, 400, o.Height)
	assert.Equal(t, 50.0, o.RoundingUnit)
	assert.True(t, o.TightScale)
	assert.Equal(t, "active", o.FilterList)
	assert.Equal(t, "box", o.ContainerID)
	assert.Equal(t, MissingDrop, o.MissingKey)

	back, err := OptionsFromQuery(o.Query())
	require.NoError(t, err)
	assert.Equal(t, o.Query().Encode(), back.Query().Encode())
}

func TestOptionsFromQueryRejects(t *testing.T) {
	for _, raw := range []string{
		"width=10", "height=abc", "round=0", "tight=maybe", "missing=skip", "filter=nope",
	} {
		q, err := url.ParseQuery(raw)
		require.NoError(t, err)
		_, err = OptionsFromQuery(q)
		assert.Error(t, err, raw)
	}
}

func TestOptionsSelection(t *testing.T) {
	o := DefaultOptions()
	o.FilterList = "last:1"
	o.Filter = func(d ChartData) ChartData {
		d.Title += "!"
		return d
	}
	sel, err := o.Selection()
	require.NoError(t, err)
	d := sel.Filter(ChartData{Title: "x", Dates: days(3), Series: []Series{{Values: []float64{1, 2, 3}}}})
	assert.Equal(t, "x!", d.Title)
	assert.Equal(t, []float64{3}, d.Series[0].Values)
}
