package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/JCZoom/techpulse-blog/internal/adapters/http/openapi"
	"github.com/JCZoom/techpulse-blog/internal/config"
	"github.com/JCZoom/techpulse-blog/internal/core/ports"
	"github.com/JCZoom/techpulse-blog/internal/observability/metrics"
)

const (
	routeHealthz   = "/healthz"
	routeMetrics   = "/metrics"
	routeOpenAPI   = "/v1/openapi.yaml"
	routeSearch    = "/v1/search"
	routeExport    = "/v1/search/export"
	routePopular   = "/v1/search/popular"
	routeFacets    = "/v1/facets"
	routeSyntax    = "/v1/syntax"
	routeReload    = "/v1/corpus/reload"
	exportFilename = "techpulse-search.xlsx"
)

type Router struct {
	searcher  ports.ArticleSearcher
	reloader  ports.CorpusReloader
	analytics ports.SearchAnalytics
	metrics   *metrics.HTTPServerMetrics
	validator *openapi.Validator
	now       func() time.Time

	adminAPIKey      string
	defaultLimit     int
	rateLimitRPS     float64
	rateLimitBurst   int
	maxInFlight      int
	backpressureWait time.Duration
}

// NewRouter wires the JSON API. reloader and analytics may be nil; the
// matching endpoints then answer 503.
func NewRouter(
	cfg config.Config,
	searcher ports.ArticleSearcher,
	reloader ports.CorpusReloader,
	analytics ports.SearchAnalytics,
) *Router {
	validator, err := openapi.NewValidator()
	if err != nil {
		slog.Error("openapi_validator_disabled", "error", err)
		validator = nil
	}
	return &Router{
		searcher:         searcher,
		reloader:         reloader,
		analytics:        analytics,
		validator:        validator,
		now:              time.Now,
		adminAPIKey:      strings.TrimSpace(cfg.AdminAPIKey),
		defaultLimit:     cfg.SearchDefaultLimit,
		rateLimitRPS:     cfg.APIRateLimitRPS,
		rateLimitBurst:   cfg.APIRateLimitBurst,
		maxInFlight:      cfg.APIMaxInFlight,
		backpressureWait: time.Duration(cfg.APIBackpressureWaitMS) * time.Millisecond,
	}
}

func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

// WithClock overrides the clock used for relative card timestamps.
func (rt *Router) WithClock(now func() time.Time) *Router {
	if now != nil {
		rt.now = now
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(routeHealthz, rt.healthz)
	mux.HandleFunc(routeOpenAPI, rt.openAPIDocument)
	mux.HandleFunc(routeSearch, rt.search)
	mux.HandleFunc(routeExport, rt.exportSearch)
	mux.HandleFunc(routePopular, rt.popularQueries)
	mux.HandleFunc(routeFacets, rt.facets)
	mux.HandleFunc(routeSyntax, rt.syntaxHelp)
	mux.HandleFunc(routeReload, rt.reloadCorpus)
	if rt.metrics != nil {
		mux.Handle(routeMetrics, rt.metrics.Handler())
	}

	var handler http.Handler = openAPIMiddleware(mux, rt.validator)
	handler = backpressureMiddleware(handler, rt.maxInFlight, rt.backpressureWait)
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	if rt.metrics != nil {
		rt.metrics.SetRoutes(routeHealthz, routeMetrics, routeOpenAPI, routeSearch, routeExport, routePopular, routeFacets, routeSyntax, routeReload)
		handler = rt.metrics.Middleware(handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) openAPIDocument(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openapi.Spec)
}

type errorBody struct {
	Error string `json:"error"`
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	return false
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("http_handler_failed", "request_id", requestIDFromContext(r.Context()), "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
