package graph

import (
	"bytes"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// renderHTML builds a standalone page whose chart follows the pointer with
// a tooltip. The chart element gets o.ContainerID as its id.
func renderHTML(d ChartData, o Options) ([]byte, error) {
	yMin, yMax := ValueDomain(d.Series, o.TightScale, o.RoundingUnit)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: d.Title,
			ChartID:   o.ContainerID,
			Width:     strconv.Itoa(o.Width) + "px",
			Height:    strconv.Itoa(o.Height) + "px",
		}),
		charts.WithTitleOpts(opts.Title{Title: d.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithYAxisOpts(opts.YAxis{Name: d.YLabel, Min: yMin, Max: yMax}),
	)

	line.SetXAxis(dateLabels(d.Dates))
	for _, s := range d.Series {
		items := make([]opts.LineData, len(s.Values))
		for i, v := range s.Values {
			if isGap(v) {
				items[i] = opts.LineData{Value: nil}
				continue
			}
			items[i] = opts.LineData{Value: v}
		}
		line.AddSeries(s.Name, items)
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}))

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
