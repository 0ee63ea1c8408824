package graph

import (
	"time"
)

// HoverState is the pointer state of a rendered chart.
type HoverState int

const (
	Idle HoverState = iota
	Hovering
)

func (s HoverState) String() string {
	if s == Hovering {
		return "hovering"
	}
	return "idle"
}

const (
	lineColor   = "steelblue"
	dimmedColor = "#ddd"
	blendMode   = "multiply"
)

// LineStyle is how one series line is stroked in the current hover state.
type LineStyle struct {
	Stroke string
	Blend  string
}

// HoverController tracks pointer interaction for one render. It holds only
// the highlighted series and marker visibility; create a new one per render.
type HoverController struct {
	data          ChartData
	highlighted   int
	markerVisible bool
}

func NewHoverController(data ChartData) *HoverController {
	return &HoverController{data: data, highlighted: -1}
}

func (h *HoverController) State() HoverState {
	if h.markerVisible {
		return Hovering
	}
	return Idle
}

// Highlighted returns the emphasised series index, -1 when idle.
func (h *HoverController) Highlighted() int { return h.highlighted }

func (h *HoverController) MarkerVisible() bool { return h.markerVisible }

// Enter dims every line but the first and shows the marker.
func (h *HoverController) Enter() {
	h.markerVisible = true
	if len(h.data.Series) > 0 {
		h.highlighted = 0
	}
}

// Move re-targets the marker to the sample nearest (at, value). A move
// while idle enters first.
func (h *HoverController) Move(at time.Time, value float64) (Tooltip, error) {
	if !h.markerVisible {
		h.Enter()
	}
	p, err := Locate(h.data.Dates, h.data.Series, at, value)
	if err != nil {
		return Tooltip{}, err
	}
	h.highlighted = p.SeriesIndex
	return newTooltip(h.data, p), nil
}

// Leave restores the original blending and hides the marker.
func (h *HoverController) Leave() {
	h.markerVisible = false
	h.highlighted = -1
}

// Styles reports the stroke of every series for the current state.
func (h *HoverController) Styles() []LineStyle {
	out := make([]LineStyle, len(h.data.Series))
	for i := range out {
		switch {
		case !h.markerVisible:
			out[i] = LineStyle{Stroke: lineColor, Blend: blendMode}
		case i == h.highlighted:
			out[i] = LineStyle{Stroke: lineColor}
		default:
			out[i] = LineStyle{Stroke: dimmedColor}
		}
	}
	return out
}

// DrawOrder lists series indexes back to front; the highlighted line is
// raised above its siblings.
func (h *HoverController) DrawOrder() []int {
	out := make([]int, 0, len(h.data.Series))
	for i := range h.data.Series {
		if i != h.highlighted {
			out = append(out, i)
		}
	}
	if h.highlighted >= 0 && h.highlighted < len(h.data.Series) {
		out = append(out, h.highlighted)
	}
	return out
}
