package openai

import (
	"context"
	"fmt"
	"strings"

	"statchart/internal/graph"

	"github.com/dustin/go-humanize"
	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// maxDigestSeries bounds the prompt size for charts with many lines.
const maxDigestSeries = 60

// Narrator writes a short plain-language account of a chart's trends.
type Narrator struct {
	cli oa.Client
}

func NewNarrator(apiKey string) *Narrator {
	client := oa.NewClient(option.WithAPIKey(apiKey))
	return &Narrator{cli: client}
}

func (n *Narrator) Narrate(ctx context.Context, d graph.ChartData) (string, error) {
	digest := Digest(d)
	if digest == "" {
		return "Nothing to describe: the chart has no samples.", nil
	}
	resp, err := n.cli.Chat.Completions.New(ctx, oa.ChatCompletionNewParams{
		Model: "gpt-4",
		Messages: []oa.ChatCompletionMessageParamUnion{
			oa.SystemMessage("You describe time-series charts of game statistics. Use short bullets. Name the biggest risers and fallers, any lines with missing samples, and the overall trend. Do not invent numbers that are not in the digest."),
			oa.UserMessage("Describe this chart:\n" + digest),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Digest summarizes each series by its first and last sample, change,
// range and number of gaps. Series without samples are listed as empty.
func Digest(d graph.ChartData) string {
	if len(d.Series) == 0 || len(d.Dates) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", d.Title)
	if d.YLabel != "" {
		fmt.Fprintf(&b, "Measure: %s\n", d.YLabel)
	}
	fmt.Fprintf(&b, "Period: %s to %s (%d dates)\n", graph.FormatDate(d.Dates[0]), graph.FormatDate(d.Dates[len(d.Dates)-1]), len(d.Dates))

	series := d.Series
	if len(series) > maxDigestSeries {
		series = series[:maxDigestSeries]
	}
	for _, s := range series {
		first, last := -1, -1
		lo, hi := 0.0, 0.0
		missing := 0
		for i, v := range s.Values {
			if v == graph.Gap {
				missing++
				continue
			}
			if first < 0 {
				first = i
				lo, hi = v, v
			}
			last = i
			lo = min(lo, v)
			hi = max(hi, v)
		}
		if first < 0 {
			fmt.Fprintf(&b, "- %s: no samples\n", s.Name)
			continue
		}
		change := s.Values[last] - s.Values[first]
		sign := ""
		if change > 0 {
			sign = "+"
		}
		fmt.Fprintf(&b, "- %s: %s on %s -> %s on %s (%s%s), range %s..%s",
			s.Name,
			humanize.Commaf(s.Values[first]), graph.FormatDate(d.Dates[first]),
			humanize.Commaf(s.Values[last]), graph.FormatDate(d.Dates[last]),
			sign, humanize.Commaf(change),
			humanize.Commaf(lo), humanize.Commaf(hi))
		if missing > 0 {
			fmt.Fprintf(&b, ", %d missing", missing)
		}
		b.WriteString("\n")
	}
	if len(d.Series) > len(series) {
		fmt.Fprintf(&b, "(%d more series omitted)\n", len(d.Series)-len(series))
	}
	return b.String()
}
