package graph

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"statchart/internal/storage"

	"github.com/vicanso/go-charts/v2"
)

// UsageAnalytics visualizes which charts get rendered.
type UsageAnalytics struct{}

func NewUsageAnalytics() *UsageAnalytics {
	return &UsageAnalytics{}
}

// MakeUsageChart renders the share of renders per chart target as a pie.
func (ua *UsageAnalytics) MakeUsageChart(stats map[string]*storage.UsageStats, days int) ([]byte, error) {
	if len(stats) == 0 {
		return nil, fmt.Errorf("no usage data available")
	}

	targets := sortedTargets(stats)
	total := 0
	for _, t := range targets {
		total += stats[t].Count
	}

	values := make([]float64, 0, len(targets))
	labels := make([]string, 0, len(targets))
	for _, t := range targets {
		n := stats[t].Count
		values = append(values, float64(n))
		labels = append(labels, fmt.Sprintf("%s (%.1f%%)", t, float64(n)/float64(total)*100))
	}

	p, err := charts.PieRender(
		values,
		charts.TitleTextOptionFunc(fmt.Sprintf("Chart Renders (%d days)", days)),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: labels,
			Top:  charts.PositionTop,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(800),
		charts.HeightOptionFunc(600),
	)
	if err != nil {
		return nil, err
	}
	return p.Bytes()
}

// MakeUsageTimeSeriesChart draws renders per day, one line per target.
// Days on which a target was not rendered count as zero.
func (ua *UsageAnalytics) MakeUsageTimeSeriesChart(series map[string][]storage.TimeSeriesPoint, days int) ([]byte, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no time series data available")
	}

	var stamps []int64
	seen := make(map[int64]bool)
	for _, points := range series {
		for _, p := range points {
			if !seen[p.Timestamp] {
				stamps = append(stamps, p.Timestamp)
				seen[p.Timestamp] = true
			}
		}
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })

	labels := make([]string, len(stamps))
	for i, ts := range stamps {
		labels[i] = time.Unix(ts, 0).UTC().Format("01/02")
	}

	targets := make([]string, 0, len(series))
	for t := range series {
		targets = append(targets, t)
	}
	sort.Strings(targets)

	values := make([][]float64, 0, len(targets))
	for _, t := range targets {
		counts := make(map[int64]int, len(series[t]))
		for _, p := range series[t] {
			counts[p.Timestamp] = p.Count
		}
		row := make([]float64, len(stamps))
		for i, ts := range stamps {
			row[i] = float64(counts[ts])
		}
		values = append(values, row)
	}

	p, err := charts.LineRender(
		values,
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels}),
		charts.TitleTextOptionFunc(fmt.Sprintf("Chart Renders per Day (%d days)", days)),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: targets,
			Top:  charts.PositionTop,
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(1000),
		charts.HeightOptionFunc(600),
	)
	if err != nil {
		return nil, err
	}
	return p.Bytes()
}

// FormatUsageStatsText summarizes renders per target and format.
func (ua *UsageAnalytics) FormatUsageStatsText(stats map[string]*storage.UsageStats, days int) string {
	if len(stats) == 0 {
		return "No usage data available for the specified period."
	}
	targets := sortedTargets(stats)
	total := 0
	for _, t := range targets {
		total += stats[t].Count
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Chart usage (%d days)\n\nTotal renders: %d\n\n", days, total)
	for _, t := range targets {
		st := stats[t]
		fmt.Fprintf(&b, "%s: %d renders, %d failed\n", t, st.Count, st.Failed)
		formats := make([]string, 0, len(st.Formats))
		for f := range st.Formats {
			formats = append(formats, f)
		}
		sort.Strings(formats)
		for _, f := range formats {
			fmt.Fprintf(&b, "  • %s: %d\n", f, st.Formats[f])
		}
	}
	return b.String()
}

// sortedTargets orders targets by render count, then name.
func sortedTargets(stats map[string]*storage.UsageStats) []string {
	out := make([]string, 0, len(stats))
	for t := range stats {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if stats[out[i]].Count != stats[out[j]].Count {
			return stats[out[i]].Count > stats[out[j]].Count
		}
		return out[i] < out[j]
	})
	return out
}
