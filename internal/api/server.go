// Package api provides the HTTP and WebSocket server for the journal
// analytics backend.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"
	"github.com/tradevault/journal-backend/internal/analytics"
	"github.com/tradevault/journal-backend/internal/journal"
	"github.com/tradevault/journal-backend/internal/patterns"
	"github.com/tradevault/journal-backend/internal/strategy"
	"github.com/tradevault/journal-backend/internal/workers"
	"github.com/tradevault/journal-backend/pkg/types"
	"go.uber.org/zap"
)

// Server is the HTTP/WebSocket API server
type Server struct {
	logger      *zap.Logger
	config      *types.ServerConfig
	router      *mux.Router
	httpServer  *http.Server
	hub         *Hub
	metrics     *Metrics
	pool        *workers.Pool
	store       *journal.Store
	engine      *analytics.Engine
	miner       *patterns.Miner
	insights    *strategy.InsightGenerator
	advisor     *strategy.Advisor
	correlation *strategy.CorrelationDetector
	performance *strategy.PerformanceCalculator
}

// NewServer creates a new API server
func NewServer(logger *zap.Logger, config *types.ServerConfig, store *journal.Store, analyticsConfig types.AnalyticsConfig) *Server {
	server := &Server{
		logger:      logger,
		config:      config,
		router:      mux.NewRouter(),
		hub:         NewHub(logger),
		metrics:     NewMetrics(),
		pool:        workers.NewPool(logger, workers.DefaultPoolConfig("analytics-broadcast")),
		store:       store,
		engine:      analytics.NewEngine(logger, store, analyticsConfig),
		miner:       patterns.NewMiner(logger, analyticsConfig),
		insights:    strategy.NewInsightGenerator(logger, analyticsConfig),
		advisor:     strategy.NewAdvisor(logger, analyticsConfig),
		correlation: strategy.NewCorrelationDetector(logger, analyticsConfig),
		performance: strategy.NewPerformanceCalculator(logger),
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(s.metrics.Middleware)

	// Health check
	s.router.HandleFunc("/api/v1/health", s.handleHealth).Methods("GET")

	// Journal entries
	s.router.HandleFunc("/api/v1/entries/{userId}", s.handleGetEntries).Methods("GET")
	s.router.HandleFunc("/api/v1/entries", s.handleUpsertEntry).Methods("PUT")

	// Analytics
	s.router.HandleFunc("/api/v1/analytics/{userId}", s.handleGetAnalytics).Methods("GET")

	// Strategy analytics
	s.router.HandleFunc("/api/v1/strategies/insights", s.handleStrategyInsights).Methods("POST")
	s.router.HandleFunc("/api/v1/strategies/patterns", s.handlePatterns).Methods("POST")
	s.router.HandleFunc("/api/v1/strategies/optimizations", s.handleOptimizations).Methods("POST")
	s.router.HandleFunc("/api/v1/strategies/correlations", s.handleCorrelations).Methods("POST")
	s.router.HandleFunc("/api/v1/strategies/performance", s.handlePerformance).Methods("POST")

	if s.config.EnableMetrics {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	}

	// WebSocket
	s.router.HandleFunc(s.config.WebSocketPath, s.handleWebSocket)
}

// Router returns the configured router, for tests
func (s *Server) Router() *mux.Router {
	return s.router
}

// Start starts the HTTP server and the WebSocket hub
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(s.router)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	go s.hub.Run()
	s.pool.Start()

	s.logger.Info("Starting API server", zap.String("addr", addr))

	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.hub.Close()
	if err := s.pool.Stop(); err != nil {
		s.logger.Warn("Worker pool did not drain cleanly", zap.Error(err))
	}
	return s.httpServer.Shutdown(ctx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// handleGetEntries returns a user's journal entries
func (s *Server) handleGetEntries(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["userId"]

	entries := s.store.EntriesForUser(userID)

	s.writeJSON(w, map[string]interface{}{
		"userId":  userID,
		"entries": entries,
		"count":   len(entries),
	})
}

// handleUpsertEntry inserts or replaces a journal entry, then recomputes and
// broadcasts the user's analytics to subscribed dashboard clients.
func (s *Server) handleUpsertEntry(w http.ResponseWriter, r *http.Request) {
	var entry types.JournalEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	saved, err := s.store.UpsertEntry(&entry)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Recompute in the background; rapid saves for one user coalesce
	userID := saved.UserID
	if !s.pool.SubmitKeyed("analytics:"+userID, func() error {
		return s.broadcastAnalytics(userID)
	}) {
		go s.broadcastAnalytics(userID)
	}

	s.writeJSON(w, saved)
}

// handleGetAnalytics runs the full analytics pipeline for a user and range
func (s *Server) handleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["userId"]

	end := time.Now().UTC()
	start := end.AddDate(0, -3, 0) // Default: last 3 months

	if v := r.URL.Query().Get("start"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			start = t
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			end = t
		}
	}

	data, err := s.engine.GetAnalyticsData(r.Context(), userID, start, end)
	if err != nil {
		s.logger.Error("Analytics computation failed", zap.String("userId", userID), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.metrics.AnalyticsComputed()

	s.writeJSON(w, data)
}

// strategyRequest is the body shared by the strategy analytics endpoints
type strategyRequest struct {
	Strategy   *types.ProfessionalStrategy   `json:"strategy"`
	Strategies []*types.ProfessionalStrategy `json:"strategies,omitempty"`
	Trades     []*types.Trade                `json:"trades"`
	Series     []types.MarketConditionPoint  `json:"series,omitempty"`
}

// handleStrategyInsights generates per-strategy insights
func (s *Server) handleStrategyInsights(w http.ResponseWriter, r *http.Request) {
	var req strategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Strategy == nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	insights := s.insights.Generate(req.Strategy, req.Trades, time.Now().UTC())

	s.writeJSON(w, map[string]interface{}{
		"strategyId": req.Strategy.ID,
		"insights":   insights,
	})
}

// handlePatterns mines cross-strategy performance patterns
func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	var req strategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	mined := s.miner.IdentifyPatterns(req.Strategies, req.Trades)

	s.writeJSON(w, map[string]interface{}{
		"patterns": mined,
		"count":    len(mined),
	})
}

// handleOptimizations generates optimization suggestions for a strategy
func (s *Server) handleOptimizations(w http.ResponseWriter, r *http.Request) {
	var req strategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Strategy == nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	suggestions := s.advisor.Suggest(req.Strategy)

	s.writeJSON(w, map[string]interface{}{
		"strategyId":  req.Strategy.ID,
		"suggestions": suggestions,
	})
}

// handleCorrelations detects market-condition correlations for a strategy
func (s *Server) handleCorrelations(w http.ResponseWriter, r *http.Request) {
	var req strategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Strategy == nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	correlations := s.correlation.Detect(req.Strategy.ID, req.Trades, req.Series)

	s.writeJSON(w, map[string]interface{}{
		"strategyId":   req.Strategy.ID,
		"correlations": correlations,
	})
}

// handlePerformance computes aggregate performance for a trade history
func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Trades         []*types.Trade  `json:"trades"`
		InitialCapital decimal.Decimal `json:"initialCapital"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.InitialCapital.IsZero() {
		req.InitialCapital = decimal.NewFromInt(10000)
	}

	perf := s.performance.Calculate(req.Trades, req.InitialCapital)

	s.writeJSON(w, perf)
}

// broadcastAnalytics recomputes a user's analytics and pushes the result to
// the user's dashboard channel.
func (s *Server) broadcastAnalytics(userID string) error {
	end := time.Now().UTC()
	start := end.AddDate(0, -3, 0)

	data, err := s.engine.GetAnalyticsData(context.Background(), userID, start, end)
	if err != nil {
		s.logger.Warn("Failed to recompute analytics for broadcast",
			zap.String("userId", userID), zap.Error(err))
		return err
	}

	s.metrics.AnalyticsComputed()
	s.hub.PublishToChannel("analytics:"+userID, MsgTypeAnalyticsUpdate, data)
	return nil
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}
