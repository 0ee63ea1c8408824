package telegram

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"statchart/internal/graph"
	"statchart/internal/openai"
	"statchart/internal/storage"
)

const helpText = "Commands\n\n" +
	"- /chart <url|preset> [entity=ID] [value=KEY] [title=\"...\"] [filter=...] [tight] - Draw a chart\n" +
	"- /explain <url|preset> [options] - Describe the chart's trends\n" +
	"- /save NAME <url> [options] - Save chart options as a preset\n" +
	"- /presets - List saved presets\n" +
	"- /delete NAME - Delete a preset\n" +
	"- /usage [days] - Chart render statistics (default: 7)\n" +
	"\nentity only: every value of one entity. value only: one line per entity. Both: a single line.\n" +
	"Filters: active, index (rebase to 100), top:N, last:N, since:MM/DD/YYYY; combine with commas.\n" +
	"Other options: round=N, width=N, height=N, missing=gap|drop."

var (
	// /chart <url|preset> [key=value ...] [tight]
	reChart = regexp.MustCompile(`^/chart(?:@[\w_]+)?\s+(.+)$`)
	// /explain <url|preset> [key=value ...]
	reExplain = regexp.MustCompile(`^/explain(?:@[\w_]+)?\s+(.+)$`)
	// /save NAME <url> [key=value ...]
	reSave    = regexp.MustCompile(`^/save(?:@[\w_]+)?\s+([\w-]+)\s+(.+)$`)
	rePresets = regexp.MustCompile(`^/presets(?:@[\w_]+)?$`)
	reDelete  = regexp.MustCompile(`^/delete(?:@[\w_]+)?\s+([\w-]+)$`)
	// /usage [days]
	reUsage = regexp.MustCompile(`^/usage(?:@[\w_]+)?(?:\s+(\d+))?$`)
	reHelp  = regexp.MustCompile(`^/(help|start)(?:@[\w_]+)?$`)
)

// Resolver turns request parameters into chart options, expanding presets.
type Resolver interface {
	Resolve(q url.Values) (graph.Options, string, error)
}

// Deps are the services the bot commands use. Narrator may be nil.
type Deps struct {
	Builder  *graph.Builder
	Store    *storage.Store
	Resolver Resolver
	Narrator *openai.Narrator
	// Target names a chart in the usage log.
	Target func(preset string, o graph.Options) string
}

type Handlers struct {
	api   *tgbotapi.BotAPI
	deps  Deps
	usage *graph.UsageAnalytics
}

func NewHandlers(api *tgbotapi.BotAPI, deps Deps) *Handlers {
	return &Handlers{api: api, deps: deps, usage: graph.NewUsageAnalytics()}
}

func (h *Handlers) HandleMessage(m *tgbotapi.Message) {
	txt := strings.TrimSpace(m.Text)
	switch {
	case reChart.MatchString(txt):
		h.handleChart(m.Chat.ID, reChart.FindStringSubmatch(txt)[1])

	case reExplain.MatchString(txt):
		h.handleExplain(m.Chat.ID, reExplain.FindStringSubmatch(txt)[1])

	case reSave.MatchString(txt):
		g := reSave.FindStringSubmatch(txt)
		h.handleSave(m.Chat.ID, g[1], g[2])

	case rePresets.MatchString(txt):
		h.handlePresets(m.Chat.ID)

	case reDelete.MatchString(txt):
		name := reDelete.FindStringSubmatch(txt)[1]
		if err := h.deps.Store.DeletePreset(name); err != nil {
			h.reply(m.Chat.ID, "Delete failed: "+err.Error())
			return
		}
		h.reply(m.Chat.ID, "Deleted preset "+name)

	case reUsage.MatchString(txt):
		days := 7
		if g := reUsage.FindStringSubmatch(txt); g[1] != "" {
			days, _ = strconv.Atoi(g[1])
			if days < 1 {
				days = 1
			}
			if days > 365 {
				days = 365
			}
		}
		h.handleUsage(m.Chat.ID, days)

	case reHelp.MatchString(txt):
		h.handleHelp(m.Chat.ID)
	}
}

func (h *Handlers) options(args string) (graph.Options, string, error) {
	q, err := parseChartArgs(args)
	if err != nil {
		return graph.Options{}, "", err
	}
	return h.deps.Resolver.Resolve(q)
}

func (h *Handlers) handleChart(chatID int64, args string) {
	o, preset, err := h.options(args)
	if err != nil {
		h.reply(chatID, "Chart failed: "+err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()
	img, err := h.deps.Builder.Chart(ctx, o, graph.FormatPNG)
	target := h.deps.Target(preset, o)
	if lerr := h.deps.Store.LogRender(target, string(graph.FormatPNG), err == nil, time.Now().Unix()); lerr != nil {
		logrus.Warnf("db: failed to log render: %v", lerr)
	}
	if err != nil {
		h.reply(chatID, "Chart failed: "+err.Error())
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "chart.png", Bytes: img})
	photo.Caption = chartCaption(preset, o)
	h.api.Send(photo)
}

// chartCaption prefers the title override, then the preset name, then the
// selection.
func chartCaption(preset string, o graph.Options) string {
	switch {
	case o.Title != "":
		return o.Title
	case preset != "":
		return preset
	}
	var parts []string
	if o.EntityKey != "" {
		parts = append(parts, "entity "+o.EntityKey)
	}
	if o.ValueKey != "" {
		parts = append(parts, "value "+o.ValueKey)
	}
	if o.FilterList != "" {
		parts = append(parts, o.FilterList)
	}
	if len(parts) == 0 {
		return o.URL
	}
	return strings.Join(parts, " • ")
}

func (h *Handlers) handleExplain(chatID int64, args string) {
	if h.deps.Narrator == nil {
		h.reply(chatID, "Explanations are disabled: no OpenAI key configured.")
		return
	}
	o, _, err := h.options(args)
	if err != nil {
		h.reply(chatID, "Explain failed: "+err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()
	d, err := h.deps.Builder.Data(ctx, o)
	if err != nil {
		h.reply(chatID, "Explain failed: "+err.Error())
		return
	}
	out, err := h.deps.Narrator.Narrate(ctx, d)
	if err != nil {
		h.reply(chatID, "Explain failed: "+err.Error())
		return
	}
	msg := tgbotapi.NewMessage(chatID, out)
	msg.ParseMode = "Markdown"
	h.api.Send(msg)
}

func (h *Handlers) handleSave(chatID int64, name, args string) {
	q, err := parseChartArgs(args)
	if err != nil {
		h.reply(chatID, "Save failed: "+err.Error())
		return
	}
	if q.Has("preset") {
		h.reply(chatID, "Save failed: give a data url, e.g. /save hp https://host/stats.json value=hp")
		return
	}
	o, err := graph.OptionsFromQuery(q)
	if err != nil {
		h.reply(chatID, "Save failed: "+err.Error())
		return
	}
	if err := h.deps.Store.SavePreset(name, o.Query().Encode(), time.Now().Unix()); err != nil {
		h.reply(chatID, "Save failed: "+err.Error())
		return
	}
	h.reply(chatID, fmt.Sprintf("Saved preset %s. Draw it with /chart %s", name, name))
}

func (h *Handlers) handlePresets(chatID int64) {
	list, err := h.deps.Store.ListPresets()
	if err != nil {
		h.reply(chatID, "Presets failed: "+err.Error())
		return
	}
	if len(list) == 0 {
		h.reply(chatID, "No presets saved yet.")
		return
	}
	var b strings.Builder
	b.WriteString("Presets\n\n")
	for _, p := range list {
		fmt.Fprintf(&b, "- %s: %s\n", p.Name, describePreset(p.Query))
	}
	h.reply(chatID, b.String())
}

// describePreset renders a stored query as the /chart arguments that
// reproduce it.
func describePreset(query string) string {
	parts := []string{graph.QueryParam(query, "url")}
	for _, k := range []string{"entity", "value", "title", "filter", "round", "width", "height", "missing", "tight"} {
		v := graph.QueryParam(query, k)
		if v == "" {
			continue
		}
		if strings.ContainsAny(v, " \t\"'\\") {
			v = quoteArg(v)
		}
		parts = append(parts, k+"="+v)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func (h *Handlers) handleUsage(chatID int64, days int) {
	since := time.Now().AddDate(0, 0, -days).Unix()
	stats, err := h.deps.Store.UsageStats(since)
	if err != nil {
		h.reply(chatID, "Usage failed: "+err.Error())
		return
	}
	h.reply(chatID, h.usage.FormatUsageStatsText(stats, days))
	if len(stats) == 0 {
		return
	}
	img, err := h.usage.MakeUsageChart(stats, days)
	if err != nil {
		logrus.Warnf("telegram: usage chart failed: %v", err)
		return
	}
	h.api.Send(tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "usage.png", Bytes: img}))

	series, err := h.deps.Store.UsageTimeSeries(since)
	if err != nil {
		logrus.Warnf("db: usage time series failed: %v", err)
		return
	}
	img, err = h.usage.MakeUsageTimeSeriesChart(series, days)
	if err != nil {
		logrus.Warnf("telegram: usage time series chart failed: %v", err)
		return
	}
	h.api.Send(tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "usage_daily.png", Bytes: img}))
}

func (h *Handlers) handleHelp(chatID int64) {
	h.reply(chatID, helpText)
}

func (h *Handlers) reply(chatID int64, text string) {
	h.api.Send(tgbotapi.NewMessage(chatID, text))
}
