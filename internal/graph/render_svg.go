package graph

import (
	"bytes"
	"time"

	"github.com/dustin/go-humanize"
	chart "github.com/wcharczuk/go-chart/v2"
)

// renderSVG draws d on a continuous UTC time axis. A line is split into
// segments at its gaps; the segments share the series color.
func renderSVG(d ChartData, o Options) ([]byte, error) {
	yMin, yMax := ValueDomain(d.Series, o.TightScale, o.RoundingUnit)

	var series []chart.Series
	for i, s := range d.Series {
		style := chart.Style{
			StrokeColor: chart.GetDefaultColor(i),
			StrokeWidth: 3,
		}
		for _, seg := range segments(d.Dates, s.Values) {
			st := style
			if len(seg.x) == 1 {
				st.DotColor = style.StrokeColor
				st.DotWidth = 2.5
			}
			series = append(series, chart.TimeSeries{
				Name:    s.Name,
				Style:   st,
				XValues: seg.x,
				YValues: seg.y,
			})
		}
	}
	if len(series) == 0 {
		return nil, ErrNoSeries
	}

	graph := chart.Chart{
		Title:  d.Title,
		Width:  o.Width,
		Height: o.Height,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    int(DefaultMargin.Top) + 30,
				Right:  int(DefaultMargin.Right),
				Bottom: int(DefaultMargin.Bottom),
				Left:   int(DefaultMargin.Left),
			},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:  d.YLabel,
			Range: &chart.ContinuousRange{Min: yMin, Max: yMax},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return humanize.Commaf(f)
				}
				return ""
			},
		},
		Series: series,
	}
	if first, last := d.Dates[0], d.Dates[len(d.Dates)-1]; !last.After(first) {
		// a single date has no extent of its own
		graph.XAxis.Range = &chart.ContinuousRange{
			Min: float64(first.Add(-24 * time.Hour).UnixNano()),
			Max: float64(first.Add(24 * time.Hour).UnixNano()),
		}
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type segment struct {
	x []time.Time
	y []float64
}

// segments splits values into runs without gaps.
func segments(dates []time.Time, values []float64) []segment {
	var out []segment
	var cur segment
	for i, v := range values {
		if isGap(v) {
			if len(cur.x) > 0 {
				out = append(out, cur)
				cur = segment{}
			}
			continue
		}
		cur.x = append(cur.x, dates[i])
		cur.y = append(cur.y, v)
	}
	if len(cur.x) > 0 {
		out = append(out, cur)
	}
	return out
}
