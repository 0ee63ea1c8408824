package graph

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultWidth        = 1000
	DefaultHeight       = 700
	DefaultRoundingUnit = 1000
	DefaultContainerID  = "chart"
)

// Options configures one chart instance.
type Options struct {
	URL          string
	EntityKey    string
	ValueKey     string
	Title        string
	Width        int
	Height       int
	RoundingUnit float64
	TightScale   bool
	FilterList   string // named filters, see ParseFilters
	Filter       Filter // applied after FilterList
	ContainerID  string
	MissingKey   MissingKeyPolicy
}

func DefaultOptions() Options {
	return Options{
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		RoundingUnit: DefaultRoundingUnit,
		ContainerID:  DefaultContainerID,
	}
}

// Selection derives the transform selection, resolving FilterList.
func (o Options) Selection() (Selection, error) {
	named, err := ParseFilters(o.FilterList)
	if err != nil {
		return Selection{}, err
	}
	sel := Selection{
		EntityKey:  o.EntityKey,
		ValueKey:   o.ValueKey,
		Title:      o.Title,
		MissingKey: o.MissingKey,
	}
	switch {
	case named != nil && o.Filter != nil:
		sel.Filter = Chain(named, o.Filter)
	case named != nil:
		sel.Filter = named
	default:
		sel.Filter = o.Filter
	}
	return sel, nil
}

func (o Options) Layout() Layout {
	return Layout{Width: float64(o.Width), Height: float64(o.Height), Margin: DefaultMargin}
}

// QueryParam returns the value of the first name=value pair in a raw query
// string, percent- and plus-decoded, or "" when absent. The query ends at a
// '#'; pairs are split on '&' only, so ';' is part of a value. A value that
// is not valid percent-encoding is returned undecoded.
func QueryParam(rawQuery, name string) string {
	rawQuery, _, _ = strings.Cut(rawQuery, "#")
	rawQuery = strings.TrimPrefix(rawQuery, "?")
	for _, pair := range strings.Split(rawQuery, "&") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k != name {
			continue
		}
		decoded, err := url.QueryUnescape(v)
		if err != nil {
			return strings.ReplaceAll(v, "+", " ")
		}
		return decoded
	}
	return ""
}

// OptionsFromQuery reads chart options from request parameters:
// url, entity, value, title, width, height, round, tight, filter,
// container and missing (gap|drop).
func OptionsFromQuery(q url.Values) (Options, error) {
	o := DefaultOptions()
	o.URL = strings.TrimSpace(q.Get("url"))
	o.EntityKey = q.Get("entity")
	o.ValueKey = q.Get("value")
	o.Title = q.Get("title")
	o.FilterList = q.Get("filter")
	if c := q.Get("container"); c != "" {
		o.ContainerID = c
	}
	if s := q.Get("width"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 200 || v > 4000 {
			return Options{}, fmt.Errorf("invalid 'width' parameter %q", s)
		}
		o.Width = v
	}
	if s := q.Get("height"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 100 || v > 3000 {
			return Options{}, fmt.Errorf("invalid 'height' parameter %q", s)
		}
		o.Height = v
	}
	if s := q.Get("round"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			return Options{}, fmt.Errorf("invalid 'round' parameter %q", s)
		}
		o.RoundingUnit = v
	}
	if q.Has("tight") {
		s := q.Get("tight")
		if s == "" {
			o.TightScale = true
		} else {
			v, err := strconv.ParseBool(s)
			if err != nil {
				return Options{}, fmt.Errorf("invalid 'tight' parameter %q", s)
			}
			o.TightScale = v
		}
	}
	switch strings.ToLower(q.Get("missing")) {
	case "", "gap":
		o.MissingKey = MissingAsGap
	case "drop":
		o.MissingKey = MissingDrop
	default:
		return Options{}, fmt.Errorf("invalid 'missing' parameter %q", q.Get("missing"))
	}
	if _, err := ParseFilters(o.FilterList); err != nil {
		return Options{}, err
	}
	return o, nil
}

// Query is the inverse of OptionsFromQuery; defaults are omitted. The
// encoded form is used for presets and cache keys.
func (o Options) Query() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("url", o.URL)
	set("entity", o.EntityKey)
	set("value", o.ValueKey)
	set("title", o.Title)
	set("filter", o.FilterList)
	if o.Width != 0 && o.Width != DefaultWidth {
		q.Set("width", strconv.Itoa(o.Width))
	}
	if o.Height != 0 && o.Height != DefaultHeight {
		q.Set("height", strconv.Itoa(o.Height))
	}
	if o.RoundingUnit != 0 && o.RoundingUnit != DefaultRoundingUnit {
		q.Set("round", strconv.FormatFloat(o.RoundingUnit, 'f', -1, 64))
	}
	if o.TightScale {
		q.Set("tight", "true")
	}
	if o.ContainerID != "" && o.ContainerID != DefaultContainerID {
		q.Set("container", o.ContainerID)
	}
	if o.MissingKey == MissingDrop {
		q.Set("missing", "drop")
	}
	return q
}
