package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Format is a chart output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatSVG  Format = "svg"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatPNG, nil
	case FormatPNG, FormatSVG, FormatHTML, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatJSON:
		return "application/json"
	default:
		return "image/png"
	}
}

// Render draws d. Every format but JSON needs at least one series.
func Render(d ChartData, o Options, f Format) ([]byte, error) {
	if f == FormatJSON {
		return json.Marshal(d)
	}
	if len(d.Series) == 0 {
		return nil, ErrNoSeries
	}
	if len(d.Dates) == 0 {
		return nil, ErrNoDates
	}
	if err := checkAligned(d); err != nil {
		return nil, err
	}
	switch f {
	case FormatPNG:
		return renderPNG(d, o)
	case FormatSVG:
		return renderSVG(d, o)
	case FormatHTML:
		return renderHTML(d, o)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Builder runs the fetch, transform and render pipeline.
type Builder struct {
	Fetcher *Fetcher
}

func NewBuilder(f *Fetcher) *Builder { return &Builder{Fetcher: f} }

// Data fetches o.URL and transforms it.
func (b *Builder) Data(ctx context.Context, o Options) (ChartData, error) {
	if o.URL == "" {
		return ChartData{}, fmt.Errorf("no data url")
	}
	sel, err := o.Selection()
	if err != nil {
		return ChartData{}, err
	}
	raw, err := b.Fetcher.Fetch(ctx, o.URL)
	if err != nil {
		return ChartData{}, err
	}
	return Transform(raw, sel)
}

// Chart renders o in format f, reusing recent renders. Options carrying a
// Filter function are never cached.
func (b *Builder) Chart(ctx context.Context, o Options, f Format) ([]byte, error) {
	cacheKey := string(f) + "|" + o.Query().Encode()
	cacheable := o.Filter == nil
	if cacheable {
		if img, ok := cacheGet(cacheKey); ok {
			logrus.Debugf("graph: cache hit %s", cacheKey)
			return img, nil
		}
	}
	d, err := b.Data(ctx, o)
	if err != nil {
		return nil, err
	}
	img, err := Render(d, o, f)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	if cacheable {
		cacheSet(cacheKey, img)
	}
	return img, nil
}
