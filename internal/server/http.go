package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statchart_http_requests_total",
			Help: "Total HTTP requests processed, labeled by status code and method.",
		},
		[]string{"code", "method"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "statchart_http_request_duration_seconds",
			Help: "Duration of HTTP requests.",
		},
		[]string{"handler", "method"},
	)
	chartRenders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statchart_chart_renders_total",
			Help: "Chart renders, labeled by output format and outcome.",
		},
		[]string{"format", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, chartRenders)
}

func instrument(name string, h http.HandlerFunc) http.Handler {
	return promhttp.InstrumentHandlerDuration(
		httpDuration.MustCurryWith(prometheus.Labels{"handler": name}),
		promhttp.InstrumentHandlerCounter(httpRequests, h),
	)
}

// NewHTTPMux wires the chart API. webhook may be nil when the bot is off.
func NewHTTPMux(s *Server, webhook http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/chart", instrument("chart", s.handleChart))
	mux.Handle("/hover", instrument("hover", s.handleHover))
	mux.Handle("/presets", instrument("presets", s.handlePresets))
	mux.Handle("/monitoring/metrics", promhttp.Handler())
	if webhook != nil {
		mux.HandleFunc("/telegram/webhook", webhook)
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) })
	return mux
}

func ListenAndServe(addr string, mux *http.ServeMux) error {
	return http.ListenAndServe(addr, mux)
}
