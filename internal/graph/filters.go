package graph

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Chain composes filters left to right.
func Chain(filters ...Filter) Filter {
	return func(d ChartData) ChartData {
		for _, f := range filters {
			if f != nil {
				d = f(d)
			}
		}
		return d
	}
}

// ParseFilters builds a Filter from a comma separated list such as
// "active,top:5,since:01/01/2024". An empty list yields nil.
func ParseFilters(list string) (Filter, error) {
	var chain []Filter
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, arg, _ := strings.Cut(part, ":")
		switch strings.ToLower(name) {
		case "active":
			chain = append(chain, ActiveOnly)
		case "index":
			chain = append(chain, Indexed)
		case "top":
			n, err := strconv.Atoi(arg)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("%w: top needs a positive count, got %q", ErrUnknownFilter, arg)
			}
			chain = append(chain, TopN(n))
		case "last":
			n, err := strconv.Atoi(arg)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("%w: last needs a positive count, got %q", ErrUnknownFilter, arg)
			}
			chain = append(chain, LastN(n))
		case "since":
			d, err := ParseDate(arg)
			if err != nil {
				return nil, fmt.Errorf("%w: since needs MM/DD/YYYY, got %q", ErrUnknownFilter, arg)
			}
			chain = append(chain, sinceFilter(d))
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
		}
	}
	if len(chain) == 0 {
		return nil, nil
	}
	return Chain(chain...), nil
}

// ActiveOnly drops series that have no sample at any date.
func ActiveOnly(d ChartData) ChartData {
	out := d.Series[:0:0]
	for _, s := range d.Series {
		for _, v := range s.Values {
			if !isGap(v) {
				out = append(out, s)
				break
			}
		}
	}
	d.Series = out
	return d
}

// Indexed rebases every series to 100 at its first non-zero sample so lines
// of different magnitude can be compared. Gaps stay gaps; a sample that
// rebases to exactly -1 is moved one ulp towards zero.
func Indexed(d ChartData) ChartData {
	series := make([]Series, len(d.Series))
	for i, s := range d.Series {
		base := 0.0
		for _, v := range s.Values {
			if !isGap(v) && v != 0 {
				base = v
				break
			}
		}
		if base == 0 {
			base = 1
		}
		vals := make([]float64, len(s.Values))
		for j, v := range s.Values {
			if isGap(v) {
				vals[j] = Gap
				continue
			}
			vals[j] = v / base * 100
			if isGap(vals[j]) {
				// a real sample must not read as a gap
				vals[j] = math.Nextafter(Gap, 0)
			}
		}
		s.Values = vals
		series[i] = s
	}
	d.Series = series
	if d.YLabel != "" {
		d.YLabel += " (indexed)"
	}
	return d
}

// TopN keeps the n series with the highest latest sample, in their
// original order.
func TopN(n int) Filter {
	return func(d ChartData) ChartData {
		if len(d.Series) <= n {
			return d
		}
		idx := make([]int, len(d.Series))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return latest(d.Series[idx[a]].Values) > latest(d.Series[idx[b]].Values)
		})
		keep := idx[:n]
		sort.Ints(keep)
		out := make([]Series, 0, n)
		for _, i := range keep {
			out = append(out, d.Series[i])
		}
		d.Series = out
		return d
	}
}

// LastN keeps the trailing n dates.
func LastN(n int) Filter {
	return func(d ChartData) ChartData {
		if len(d.Dates) <= n {
			return d
		}
		return sliceDates(d, len(d.Dates)-n)
	}
}

func sinceFilter(from time.Time) Filter {
	return func(d ChartData) ChartData {
		start := len(d.Dates)
		for i, t := range d.Dates {
			if !t.Before(from) {
				start = i
				break
			}
		}
		return sliceDates(d, start)
	}
}

// sliceDates keeps dates[start:] and the matching samples of every series.
func sliceDates(d ChartData, start int) ChartData {
	d.Dates = d.Dates[start:]
	series := make([]Series, len(d.Series))
	for i, s := range d.Series {
		s.Values = s.Values[start:]
		series[i] = s
	}
	d.Series = series
	return d
}

func latest(vals []float64) float64 {
	for i := len(vals) - 1; i >= 0; i-- {
		if !isGap(vals[i]) {
			return vals[i]
		}
	}
	return Gap
}
