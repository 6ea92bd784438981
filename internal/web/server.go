package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/elys-network/yvault/internal/logger"
	"github.com/elys-network/yvault/internal/metrics"
	"github.com/elys-network/yvault/internal/state"
	"github.com/elys-network/yvault/internal/types"
)

// VaultService is the vault surface exposed over HTTP.
type VaultService interface {
	Address() types.Address
	Summary(ctx context.Context) (types.VaultSummary, error)
	SharesOf(account types.Address) sdkmath.Int
	ClaimOf(ctx context.Context, account types.Address) (sdkmath.Int, error)

	Deposit(ctx context.Context, caller types.Address, amount sdkmath.Int) (sdkmath.Int, error)
	Withdraw(ctx context.Context, caller types.Address, shares sdkmath.Int) (sdkmath.Int, error)
	Earn(ctx context.Context, caller types.Address) (sdkmath.Int, error)
	Harvest(ctx context.Context, caller types.Address) (types.HarvestEvent, error)
	Distribute(ctx context.Context, caller types.Address, epochCount uint32) error
	Pause(caller types.Address) error
	Unpause(caller types.Address) error
}

// HarvestHistory serves stored harvest events.
type HarvestHistory interface {
	Recent(ctx context.Context, limit int) ([]state.HarvestRecord, error)
	Latest(ctx context.Context) (*state.HarvestRecord, error)
	ByID(ctx context.Context, rowID int64) (*state.HarvestRecord, error)
	FeeTotals(ctx context.Context) (*state.FeeTotals, error)
}

// LedgerService is the asset ledger behind the vault.
type LedgerService interface {
	BalanceOf(ctx context.Context, account types.Address) (sdkmath.Int, error)
	Approve(ctx context.Context, owner, spender types.Address, amount sdkmath.Int) error
}

// Config holds the dependencies of the web server
type Config struct {
	Port        string
	Vault       VaultService
	Ledger      LedgerService  // Optional; ledger routes return 503 without it
	History     HarvestHistory // Optional; history routes return 503 without it
	HealthCheck func() error   // Optional database probe

	// SimulationActions mounts the POST routes that act on the vault and ledger.
	// They take the acting address from the request body and check nothing
	// else, so they are only mounted for a simulated vault.
	SimulationActions bool
}

// WebServer serves the vault API
type WebServer struct {
	router  *mux.Router
	port    string
	vault   VaultService
	ledger  LedgerService
	history HarvestHistory
	health  func() error
	actions bool
	started time.Time
	logger  zerolog.Logger
	server  *http.Server
}

// NewWebServer creates a new web server instance
func NewWebServer(cfg Config) (*WebServer, error) {
	if cfg.Vault == nil {
		return nil, fmt.Errorf("web server configuration validation failed: vault cannot be nil")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	server := &WebServer{
		router:  mux.NewRouter(),
		port:    cfg.Port,
		vault:   cfg.Vault,
		ledger:  cfg.Ledger,
		history: cfg.History,
		health:  cfg.HealthCheck,
		actions: cfg.SimulationActions,
		started: time.Now(),
		logger:  logger.GetForComponent("web_server"),
	}

	server.setupRoutes()
	server.server = &http.Server{
		Addr:         ":" + server.port,
		Handler:      server.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server, nil
}

// Handler returns the routed handler, mainly for tests.
func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")
	ws.router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/vault/summary", ws.handleGetVaultSummary).Methods("GET")
	api.HandleFunc("/vault/accounts/{address}", ws.handleGetAccount).Methods("GET")
	api.HandleFunc("/harvests", ws.handleGetHarvests).Methods("GET")
	api.HandleFunc("/harvests/latest", ws.handleGetLatestHarvest).Methods("GET")
	api.HandleFunc("/harvests/{id:[0-9]+}", ws.handleGetHarvest).Methods("GET")
	api.HandleFunc("/fees/totals", ws.handleGetFeeTotals).Methods("GET")
	api.HandleFunc("/ledger/balances/{address}", ws.handleGetBalance).Methods("GET")

	// Simulation surface. The caller named in the body is trusted as is: any
	// client can act as any role, including governance and keeper.
	if ws.actions {
		api.HandleFunc("/ledger/approve", ws.handleApprove).Methods("POST", "OPTIONS")
		api.HandleFunc("/vault/deposit", ws.handleDeposit).Methods("POST", "OPTIONS")
		api.HandleFunc("/vault/withdraw", ws.handleWithdraw).Methods("POST", "OPTIONS")
		api.HandleFunc("/vault/earn", ws.handleEarn).Methods("POST", "OPTIONS")
		api.HandleFunc("/vault/harvest", ws.handleHarvest).Methods("POST", "OPTIONS")
		api.HandleFunc("/vault/distribute", ws.handleDistribute).Methods("POST", "OPTIONS")
		api.HandleFunc("/vault/pause", ws.handlePause).Methods("POST", "OPTIONS")
		api.HandleFunc("/vault/unpause", ws.handleUnpause).Methods("POST", "OPTIONS")
	}

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server. It returns http.ErrServerClosed after Shutdown.
func (ws *WebServer) Start() error {
	ws.logger.Info().Str("port", ws.port).Msg("Starting web server")
	return ws.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (ws *WebServer) Shutdown(ctx context.Context) error {
	ws.logger.Info().Msg("Shutting down web server")
	return ws.server.Shutdown(ctx)
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	hasErrors := false

	dbHealthy := true
	if ws.health != nil {
		if err := ws.health(); err != nil {
			ws.logger.Warn().Err(err).Msg("Health check failed")
			dbHealthy = false
			hasErrors = true
		}
	}

	vaultInfo := map[string]interface{}{}
	if summary, err := ws.vault.Summary(r.Context()); err != nil {
		hasErrors = true
	} else {
		vaultInfo["status"] = summary.Status
		vaultInfo["last_harvest"] = summary.LastHarvest
		vaultInfo["price_per_share"] = summary.PricePerShare
	}

	overallStatus := "OK"
	statusCode := http.StatusOK
	if hasErrors {
		overallStatus = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
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
			"uptime_seconds":   int64(time.Since(ws.started).Seconds()),
		},
		"component": map[string]interface{}{
			"name":    "yvault",
			"version": "1.0.0",
		},
		"vault_status": map[string]interface{}{
			"database_healthy": dbHealthy,
			"vault":            vaultInfo,
		},
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleGetVaultSummary returns the live vault summary
func (ws *WebServer) handleGetVaultSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := ws.vault.Summary(r.Context())
	if err != nil {
		ws.logger.Error().Err(err).Msg("Failed to get vault summary")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve vault summary")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, summary)
}

// handleGetAccount returns the shares and redeemable claim of an account
func (ws *WebServer) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	address := types.Address(mux.Vars(r)["address"])

	claim, err := ws.vault.ClaimOf(r.Context(), address)
	if err != nil {
		ws.logger.Error().Err(err).Str("address", address.String()).Msg("Failed to get account claim")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve account")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"address": address,
		"shares":  ws.vault.SharesOf(address),
		"claim":   claim,
	})
}

// handleGetHarvests returns recent harvests
func (ws *WebServer) handleGetHarvests(w http.ResponseWriter, r *http.Request) {
	if !ws.requireHistory(w) {
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	harvests, err := ws.history.Recent(r.Context(), limit)
	if err != nil {
		ws.logger.Error().Err(err).Msg("Failed to get recent harvests")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve harvests")
		return
	}

	response := map[string]interface{}{
		"harvests": harvests,
		"count":    len(harvests),
		"limit":    limit,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetHarvest returns a specific harvest by row id
func (ws *WebServer) handleGetHarvest(w http.ResponseWriter, r *http.Request) {
	if !ws.requireHistory(w) {
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid harvest ID")
		return
	}

	harvest, err := ws.history.ByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, state.ErrHarvestNotFound) {
			ws.writeErrorResponse(w, http.StatusNotFound, "Harvest not found")
			return
		}
		ws.logger.Error().Err(err).Int64("harvestId", id).Msg("Failed to get harvest")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve harvest")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, harvest)
}

// handleGetLatestHarvest returns the most recent harvest
func (ws *WebServer) handleGetLatestHarvest(w http.ResponseWriter, r *http.Request) {
	if !ws.requireHistory(w) {
		return
	}

	harvest, err := ws.history.Latest(r.Context())
	if err != nil {
		if errors.Is(err, state.ErrHarvestNotFound) {
			ws.writeErrorResponse(w, http.StatusNotFound, "No harvests found")
			return
		}
		ws.logger.Error().Err(err).Msg("Failed to get latest harvest")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve harvest")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, harvest)
}

// handleGetFeeTotals returns fees aggregated over all harvests
func (ws *WebServer) handleGetFeeTotals(w http.ResponseWriter, r *http.Request) {
	if !ws.requireHistory(w) {
		return
	}

	totals, err := ws.history.FeeTotals(r.Context())
	if err != nil {
		ws.logger.Error().Err(err).Msg("Failed to get fee totals")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve fee totals")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, totals)
}

// handleGetBalance returns the want balance of an account
func (ws *WebServer) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	if !ws.requireLedger(w) {
		return
	}
	address := types.Address(mux.Vars(r)["address"])

	balance, err := ws.ledger.BalanceOf(r.Context(), address)
	if err != nil {
		ws.logger.Error().Err(err).Str("address", address.String()).Msg("Failed to get ledger balance")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve balance")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"address": address,
		"balance": balance,
	})
}

func (ws *WebServer) requireLedger(w http.ResponseWriter) bool {
	if ws.ledger == nil {
		ws.writeErrorResponse(w, http.StatusServiceUnavailable, "Ledger is not available")
		return false
	}
	return true
}

func (ws *WebServer) requireHistory(w http.ResponseWriter) bool {
	if ws.history == nil {
		ws.writeErrorResponse(w, http.StatusServiceUnavailable, "Harvest history is not available")
		return false
	}
	return true
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		ws.logger.Error().Err(err).Msg("Failed to encode JSON response")
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
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
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

		ws.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
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
