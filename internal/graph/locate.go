package graph

import (
	"math"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
)

// Point identifies the sample nearest to a query.
type Point struct {
	SeriesIndex int
	PointIndex  int
	Value       float64
	Delta       float64 // change from the previous date, 0 at the first date or next to a gap
}

// Locate finds the sample closest to (at, value): the nearest date by binary
// search, then the series whose sample at that date is closest in value.
// Ties on date pick the earlier date; ties on value pick the earlier series.
// Series with a gap at the chosen date are skipped unless every series has
// one there, in which case the first series is used.
func Locate(dates []time.Time, series []Series, at time.Time, value float64) (Point, error) {
	if len(dates) == 0 {
		return Point{}, ErrNoDates
	}
	if len(series) == 0 {
		return Point{}, ErrNoSeries
	}
	i := nearestDate(dates, at)

	best := -1
	bestDist := math.Inf(1)
	for k, s := range series {
		if i >= len(s.Values) || isGap(s.Values[i]) {
			continue
		}
		if d := math.Abs(s.Values[i] - value); d < bestDist {
			best, bestDist = k, d
		}
	}
	if best < 0 {
		best = 0
	}

	p := Point{SeriesIndex: best, PointIndex: i}
	vals := series[best].Values
	if i < len(vals) {
		p.Value = vals[i]
	}
	if i > 0 && i < len(vals) && !isGap(vals[i]) && !isGap(vals[i-1]) {
		p.Delta = vals[i] - vals[i-1]
	}
	return p, nil
}

// nearestDate bisects for the leftmost date >= at within [1, n-1] and picks
// whichever neighbour is closer.
func nearestDate(dates []time.Time, at time.Time) int {
	n := len(dates)
	if n == 1 {
		return 0
	}
	i1 := 1 + sort.Search(n-1, func(j int) bool { return !dates[1+j].Before(at) })
	if i1 > n-1 {
		i1 = n - 1
	}
	i0 := i1 - 1
	if at.Sub(dates[i0]) > dates[i1].Sub(at) {
		return i1
	}
	return i0
}

// Tooltip is what the hover marker shows.
type Tooltip struct {
	Series string
	Date   time.Time
	Point
	Label string
}

func newTooltip(d ChartData, p Point) Tooltip {
	name := d.Series[p.SeriesIndex].Name
	return Tooltip{
		Series: name,
		Date:   d.Dates[p.PointIndex],
		Point:  p,
		Label:  TooltipLabel(name, p.Value, p.Delta),
	}
}

// TooltipLabel renders "name: 12,345 (+1,000)". The delta is omitted when 0.
func TooltipLabel(name string, value, delta float64) string {
	label := name + ": " + humanize.Commaf(value)
	switch {
	case delta > 0:
		label += " (+" + humanize.Commaf(delta) + ")"
	case delta < 0:
		label += " (-" + humanize.Commaf(-delta) + ")"
	}
	return label
}
