package web

import (
	"embed"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/hydration-labs/poolrisk/internal/logger"
	"github.com/hydration-labs/poolrisk/internal/pricing"
	"github.com/hydration-labs/poolrisk/internal/risk"
	"github.com/hydration-labs/poolrisk/internal/state"
	"github.com/gorilla/mux"
)

var webLogger = logger.GetForComponent("web_server")

//go:embed static/*
var staticFiles embed.FS

//go:embed static/index.html
var dashboardHTML []byte

// WebServer handles HTTP requests for pool pricing and risk data
type WebServer struct {
	router     *mux.Router
	port       string
	pricer     *pricing.PairPricer
	pathSource risk.PathSource
	inverse    bool
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, pricer *pricing.PairPricer, pathSource risk.PathSource, inverse bool) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router:     mux.NewRouter(),
		port:       port,
		pricer:     pricer,
		pathSource: pathSource,
		inverse:    inverse,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Static files
	staticHandler := http.FileServer(http.FS(staticFiles))
	ws.router.PathPrefix("/static/").Handler(http.StripPrefix("/", staticHandler))

	// Dashboard routes
	ws.router.HandleFunc("/", ws.handleDashboard).Methods("GET")
	ws.router.HandleFunc("/dashboard", ws.handleDashboard).Methods("GET")

	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/price", ws.handleGetPrice).Methods("GET")
	api.HandleFunc("/prices", ws.handleGetPrices).Methods("GET")
	api.HandleFunc("/reports", ws.handleGetReports).Methods("GET")
	api.HandleFunc("/risk/estimate", ws.handleRiskEstimate).Methods("GET")
	api.HandleFunc("/risk-parameters", ws.handleGetRiskParameters).Methods("GET")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	hasErrors := false

	dbHealthy := true
	if err := state.TestDBConnection(); err != nil {
		dbHealthy = false
		hasErrors = true
	}

	currentCycle, err := state.GetCurrentCycleNumber()
	if err != nil {
		hasErrors = true
	}

	lastPrice, hasPrice := ws.pricer.LastPrice()

	overallStatus := "OK"
	if hasErrors {
		overallStatus = "DEGRADED"
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "poolrisk-stableswap-risk-engine",
			"version": "1.0.0",
		},
		"engine_status": map[string]interface{}{
			"database_healthy": dbHealthy,
			"current_cycle":    currentCycle,
			"pair":             ws.pricer.Pair().Name(),
			"has_price":        hasPrice,
			"last_price":       lastPrice,
		},
	}

	statusCode := http.StatusOK
	if hasErrors {
		statusCode = http.StatusServiceUnavailable
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleDashboard serves the main dashboard HTML
func (ws *WebServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.WriteHeader(http.StatusOK)
	w.Write(dashboardHTML)
}

// handleGetPrice prices the pool live, optionally pinned to a block via ?at=N
func (ws *WebServer) handleGetPrice(w http.ResponseWriter, r *http.Request) {
	var atBlock uint64
	if atStr := r.URL.Query().Get("at"); atStr != "" {
		parsed, err := strconv.ParseUint(atStr, 10, 64)
		if err != nil {
			ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid block number")
			return
		}
		atBlock = parsed
	}

	quote, err := ws.pricer.Quote(r.Context(), atBlock, ws.inverse)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to price pool")
		ws.writeErrorResponse(w, http.StatusBadGateway, "Failed to price pool")
		return
	}

	response := map[string]interface{}{
		"pair":      ws.pricer.Pair().Name(),
		"quote":     quote,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetPrices returns recent persisted price observations
func (ws *WebServer) handleGetPrices(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 100, 500)

	observations, err := state.GetRecentPriceObservations(ws.pricer.Pair().Name(), limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent price observations")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve price observations")
		return
	}

	response := map[string]interface{}{
		"observations": observations,
		"count":        len(observations),
		"limit":        limit,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetReports returns recent persisted risk reports
func (ws *WebServer) handleGetReports(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50, 200)

	reports, err := state.GetRecentRiskReports(ws.pricer.Pair().Name(), limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent risk reports")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve risk reports")
		return
	}

	response := map[string]interface{}{
		"reports": reports,
		"count":   len(reports),
		"limit":   limit,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleRiskEstimate runs an on-demand drawdown VaR estimate with
// caller-supplied ?alpha and ?at_step.
func (ws *WebServer) handleRiskEstimate(w http.ResponseWriter, r *http.Request) {
	alpha := 0.99
	if alphaStr := r.URL.Query().Get("alpha"); alphaStr != "" {
		parsed, err := strconv.ParseFloat(alphaStr, 64)
		if err != nil {
			ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid alpha")
			return
		}
		alpha = parsed
	}

	atStep := 0
	if stepStr := r.URL.Query().Get("at_step"); stepStr != "" {
		parsed, err := strconv.Atoi(stepStr)
		if err != nil {
			ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid at_step")
			return
		}
		atStep = parsed
	}

	paths, err := ws.pathSource.GetPaths(r.Context())
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to fetch price paths")
		ws.writeErrorResponse(w, http.StatusBadGateway, "Failed to fetch price paths")
		return
	}

	estimate, err := risk.ThresholdMultiplier(paths, alpha, atStep)
	if err != nil {
		if errors.Is(err, risk.ErrInvalidInput) || errors.Is(err, risk.ErrInvalidRange) {
			ws.writeErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		webLogger.Error().Err(err).Msg("Failed to estimate threshold multiplier")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to estimate threshold multiplier")
		return
	}

	response := map[string]interface{}{
		"pair":                 ws.pricer.Pair().Name(),
		"alpha":                alpha,
		"at_step":              atStep,
		"sample_count":         estimate.SampleCount,
		"value_at_risk":        estimate.ValueAtRisk,
		"threshold_multiplier": estimate.ThresholdMultiplier,
		"timestamp":            time.Now().UTC(),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetRiskParameters returns the active persisted risk parameters
func (ws *WebServer) handleGetRiskParameters(w http.ResponseWriter, r *http.Request) {
	params, paramsID, err := state.LoadActiveRiskParameters("default_pool_risk")
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get risk parameters")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve risk parameters")
		return
	}

	response := map[string]interface{}{
		"params_id":  paramsID,
		"parameters": params,
		"timestamp":  time.Now().UTC(),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// parseLimit reads ?limit with a default and an upper bound
func parseLimit(r *http.Request, def, max int) int {
	limit := def
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= max {
			limit = parsed
		}
	}
	return limit
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
