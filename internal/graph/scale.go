package graph

import (
	"math"
	"time"
)

// Margin around the plot area, in pixels.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargin leaves room for the value axis labels on the left.
var DefaultMargin = Margin{Top: 20, Right: 20, Bottom: 30, Left: 80}

// Layout is the pixel geometry of a rendered chart.
type Layout struct {
	Width, Height float64
	Margin        Margin
}

// LinearScale maps a numeric domain onto a pixel range.
type LinearScale struct {
	D0, D1 float64
	R0, R1 float64
}

func (s LinearScale) Map(v float64) float64 {
	if s.D1 == s.D0 {
		return (s.R0 + s.R1) / 2
	}
	return s.R0 + (v-s.D0)/(s.D1-s.D0)*(s.R1-s.R0)
}

func (s LinearScale) Invert(px float64) float64 {
	if s.R1 == s.R0 {
		return (s.D0 + s.D1) / 2
	}
	return s.D0 + (px-s.R0)/(s.R1-s.R0)*(s.D1-s.D0)
}

// TimeScale maps a UTC time domain onto a pixel range.
type TimeScale struct {
	D0, D1 time.Time
	R0, R1 float64
}

func (s TimeScale) linear() LinearScale {
	return LinearScale{D0: float64(s.D0.UnixMilli()), D1: float64(s.D1.UnixMilli()), R0: s.R0, R1: s.R1}
}

func (s TimeScale) Map(t time.Time) float64 {
	return s.linear().Map(float64(t.UnixMilli()))
}

func (s TimeScale) Invert(px float64) time.Time {
	ms := s.linear().Invert(px)
	return time.UnixMilli(int64(math.Round(ms))).UTC()
}

// Scales builds the date and value scales of a chart drawn in l.
func (l Layout) Scales(d ChartData, tight bool, round float64) (TimeScale, LinearScale) {
	x := TimeScale{R0: l.Margin.Left, R1: l.Width - l.Margin.Right}
	if len(d.Dates) > 0 {
		x.D0, x.D1 = d.Dates[0], d.Dates[0]
		for _, t := range d.Dates[1:] {
			if t.Before(x.D0) {
				x.D0 = t
			}
			if t.After(x.D1) {
				x.D1 = t
			}
		}
	}
	lo, hi := ValueDomain(d.Series, tight, round)
	y := LinearScale{D0: lo, D1: hi, R0: l.Height - l.Margin.Bottom, R1: l.Margin.Top}
	return x, y
}

// PointerToQuery converts pointer coordinates inside the chart to the date
// and value they stand for.
func (l Layout) PointerToQuery(d ChartData, tight bool, round, px, py float64) (time.Time, float64) {
	x, y := l.Scales(d, tight, round)
	return x.Invert(px), y.Invert(py)
}

// ValueDomain returns the value axis bounds. The default domain starts at
// zero; a tight domain hugs the samples, widened to multiples of round.
// Gaps never count towards the bounds. Both variants are niced.
func ValueDomain(series []Series, tight bool, round float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s.Values {
			if isGap(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(hi, -1) {
		return 0, 1
	}
	if !tight {
		lo = 0
	} else {
		if round <= 0 {
			round = 1
		}
		lo = floorTo(lo, round)
		hi = ceilTo(hi, round)
		if lo == hi {
			hi = lo + round
		}
	}
	if lo == hi {
		hi = lo + 1
	}
	return nice(lo, hi, 10)
}

// nice extends [lo, hi] outwards to round tick steps for roughly count ticks.
func nice(lo, hi float64, count int) (float64, float64) {
	prev := 0.0
	for i := 0; i < 10; i++ {
		step := tickStep(lo, hi, count)
		if step == prev || step <= 0 {
			break
		}
		lo = floorTo(lo, step)
		hi = ceilTo(hi, step)
		prev = step
	}
	return lo, hi
}

// floorTo and ceilTo round x to a multiple of step. Quotients within float
// error of an integer count as that integer, and fractional steps with an
// integral inverse divide instead of multiply, so 0.3 stays 0.3 at step 0.1.
func floorTo(x, step float64) float64 {
	if inv, ok := inverse(step); ok {
		return math.Floor(snap(x*inv)) / inv
	}
	return math.Floor(snap(x/step)) * step
}

func ceilTo(x, step float64) float64 {
	if inv, ok := inverse(step); ok {
		return math.Ceil(snap(x*inv)) / inv
	}
	return math.Ceil(snap(x/step)) * step
}

func inverse(step float64) (float64, bool) {
	if step >= 1 {
		return 0, false
	}
	inv := math.Round(1 / step)
	return inv, math.Abs(inv-1/step) < 1e-9*inv
}

func snap(q float64) float64 {
	if r := math.Round(q); math.Abs(q-r) < 1e-9*math.Max(1, math.Abs(q)) {
		return r
	}
	return q
}

func tickStep(lo, hi float64, count int) float64 {
	raw := (hi - lo) / float64(count)
	if raw <= 0 {
		return 0
	}
	power := math.Floor(math.Log10(raw))
	e := raw / math.Pow(10, power)
	factor := 1.0
	switch {
	case e >= math.Sqrt(50):
		factor = 10
	case e >= math.Sqrt(10):
		factor = 5
	case e >= math.Sqrt(2):
		factor = 2
	}
	return factor * math.Pow(10, power)
}
