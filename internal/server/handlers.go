package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"statchart/internal/graph"
	"statchart/internal/storage"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/sjson"
)

// Server serves charts built from remote stats payloads.
type Server struct {
	builder    *graph.Builder
	store      *storage.Store
	defaultURL string
}

func New(b *graph.Builder, store *storage.Store, defaultURL string) *Server {
	return &Server{builder: b, store: store, defaultURL: defaultURL}
}

// request-only parameters never stored in presets
var transient = map[string]bool{"preset": true, "format": true, "x": true, "y": true, "date": true, "v": true}

// Resolve builds chart options from q. A preset supplies defaults that
// explicit parameters override; the default data url fills a missing url.
func (s *Server) Resolve(q url.Values) (graph.Options, string, error) {
	merged := url.Values{}
	presetName := strings.TrimSpace(q.Get("preset"))
	if presetName != "" {
		p, err := s.store.GetPreset(presetName)
		if err != nil {
			return graph.Options{}, "", err
		}
		stored, err := url.ParseQuery(p.Query)
		if err != nil {
			return graph.Options{}, "", fmt.Errorf("preset %q: %w", presetName, err)
		}
		for k, v := range stored {
			merged[k] = v
		}
	}
	for k, v := range q {
		if !transient[k] {
			merged[k] = v
		}
	}
	o, err := graph.OptionsFromQuery(merged)
	if err != nil {
		return graph.Options{}, "", err
	}
	if o.URL == "" {
		o.URL = s.defaultURL
	}
	if o.URL == "" {
		return graph.Options{}, "", errors.New("missing 'url' parameter")
	}
	return o, presetName, nil
}

// Target names a chart in the usage log.
func Target(preset string, o graph.Options) string {
	if preset != "" {
		return "preset:" + preset
	}
	parts := []string{o.URL}
	if o.EntityKey != "" {
		parts = append(parts, "entity="+o.EntityKey)
	}
	if o.ValueKey != "" {
		parts = append(parts, "value="+o.ValueKey)
	}
	return strings.Join(parts, " ")
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := graph.ParseFormat(q.Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	o, preset, err := s.Resolve(q)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err, http.StatusBadRequest))
		return
	}

	img, err := s.builder.Chart(r.Context(), o, format)
	s.logRender(Target(preset, o), format, err)
	if err != nil {
		logrus.Warnf("http: chart %s failed: %v", o.URL, err)
		http.Error(w, err.Error(), statusFor(err, http.StatusInternalServerError))
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "max-age=60")
	w.Write(img)
}

func (s *Server) logRender(target string, f graph.Format, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	chartRenders.WithLabelValues(string(f), outcome).Inc()
	if lerr := s.store.LogRender(target, string(f), err == nil, time.Now().Unix()); lerr != nil {
		logrus.Warnf("db: failed to log render: %v", lerr)
	}
}

// handleHover answers a pointer query against a chart with the tooltip the
// chart would show. The pointer is either pixel coordinates x,y within a
// width by height chart, or a date and a value v.
func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	o, _, err := s.Resolve(q)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err, http.StatusBadRequest))
		return
	}
	d, err := s.builder.Data(r.Context(), o)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err, http.StatusInternalServerError))
		return
	}
	if len(d.Dates) == 0 {
		http.Error(w, graph.ErrNoDates.Error(), http.StatusUnprocessableEntity)
		return
	}

	at, value, err := pointer(q, o, d)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h := graph.NewHoverController(d)
	tip, err := h.Move(at, value)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err, http.StatusInternalServerError))
		return
	}

	body, err := tooltipJSON(tip, h)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func pointer(q url.Values, o graph.Options, d graph.ChartData) (time.Time, float64, error) {
	if q.Get("x") != "" || q.Get("y") != "" {
		px, err := strconv.ParseFloat(q.Get("x"), 64)
		if err != nil {
			return time.Time{}, 0, fmt.Errorf("invalid 'x' parameter %q", q.Get("x"))
		}
		py, err := strconv.ParseFloat(q.Get("y"), 64)
		if err != nil {
			return time.Time{}, 0, fmt.Errorf("invalid 'y' parameter %q", q.Get("y"))
		}
		at, value := o.Layout().PointerToQuery(d, o.TightScale, o.RoundingUnit, px, py)
		return at, value, nil
	}
	at, err := graph.ParseDate(q.Get("date"))
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid 'date' parameter %q", q.Get("date"))
	}
	value, err := strconv.ParseFloat(q.Get("v"), 64)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid 'v' parameter %q", q.Get("v"))
	}
	return at, value, nil
}

func tooltipJSON(tip graph.Tooltip, h *graph.HoverController) ([]byte, error) {
	body := []byte(`{}`)
	fields := []struct {
		path  string
		value any
	}{
		{"series", tip.Series},
		{"seriesIndex", tip.SeriesIndex},
		{"pointIndex", tip.PointIndex},
		{"date", graph.FormatDate(tip.Date)},
		{"value", tip.Value},
		{"delta", tip.Delta},
		{"label", tip.Label},
		{"state", h.State().String()},
		{"drawOrder", h.DrawOrder()},
	}
	var err error
	for _, f := range fields {
		if body, err = sjson.SetBytes(body, f.path, f.value); err != nil {
			return nil, err
		}
	}
	for i, st := range h.Styles() {
		if body, err = sjson.SetBytes(body, fmt.Sprintf("styles.%d.stroke", i), st.Stroke); err != nil {
			return nil, err
		}
	}
	return body, nil
}

type presetJSON struct {
	Name      string `json:"name"`
	Query     string `json:"query"`
	CreatedAt int64  `json:"createdAt"`
}

// handlePresets lists (GET), saves (POST name + chart parameters) or
// deletes (DELETE ?name=) presets.
func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := s.store.ListPresets()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out := make([]presetJSON, 0, len(list))
		for _, p := range list {
			out = append(out, presetJSON(p))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		name := strings.TrimSpace(r.Form.Get("name"))
		if !ValidPresetName(name) {
			http.Error(w, "invalid preset name", http.StatusBadRequest)
			return
		}
		params := url.Values{}
		for k, v := range r.Form {
			if k != "name" && !transient[k] {
				params[k] = v
			}
		}
		o, err := graph.OptionsFromQuery(params)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.store.SavePreset(name, o.Query().Encode(), time.Now().Unix()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		logrus.Infof("http: saved preset %s", name)
		w.WriteHeader(http.StatusCreated)

	case http.MethodDelete:
		name := r.URL.Query().Get("name")
		if err := s.store.DeletePreset(name); err != nil {
			http.Error(w, err.Error(), statusFor(err, http.StatusInternalServerError))
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ValidPresetName accepts 1-32 letters, digits, '-' and '_'.
func ValidPresetName(name string) bool {
	if name == "" || len(name) > 32 {
		return false
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

func statusFor(err error, fallback int) int {
	var ne *graph.NetworkError
	var de *graph.DateParseError
	switch {
	case errors.Is(err, storage.ErrPresetNotFound):
		return http.StatusNotFound
	case errors.As(err, &ne):
		return http.StatusBadGateway
	case errors.As(err, &de),
		errors.Is(err, graph.ErrEntityNotFound),
		errors.Is(err, graph.ErrValueKeyNotFound),
		errors.Is(err, graph.ErrMisaligned),
		errors.Is(err, graph.ErrNoSeries),
		errors.Is(err, graph.ErrNoDates):
		return http.StatusUnprocessableEntity
	case errors.Is(err, graph.ErrUnknownFilter), errors.Is(err, graph.ErrUnknownFormat):
		return http.StatusBadRequest
	}
	return fallback
}
