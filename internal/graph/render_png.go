package graph

import (
	"github.com/vicanso/go-charts/v2"
)

// renderPNG draws d with dates as category labels; gaps become null points.
func renderPNG(d ChartData, o Options) ([]byte, error) {
	values := make([][]float64, 0, len(d.Series))
	names := make([]string, 0, len(d.Series))
	for _, s := range d.Series {
		cl := make([]float64, len(s.Values))
		for j, v := range s.Values {
			if isGap(v) {
				cl[j] = charts.GetNullValue()
				continue
			}
			cl[j] = v
		}
		values = append(values, cl)
		names = append(names, s.Name)
	}

	yMin, yMax := ValueDomain(d.Series, o.TightScale, o.RoundingUnit)
	split := o.Width / 200
	if split < 2 {
		split = 2
	}

	seriesList := charts.NewSeriesListDataFromValues(values, charts.ChartTypeLine)
	for i := range seriesList {
		seriesList[i].Name = names[i]
	}
	painter, err := charts.Render(charts.ChartOption{SeriesList: seriesList},
		charts.TitleTextOptionFunc(d.Title, d.YLabel),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: dateLabels(d.Dates), BoundaryGap: charts.FalseFlag(), SplitNumber: split}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.LegendOptionFunc(charts.LegendOption{Data: names}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(o.Width),
		charts.HeightOptionFunc(o.Height),
	)
	if err != nil {
		return nil, err
	}
	return painter.Bytes()
}
