// Package api provides the HTTP and WebSocket trigger surface for the
// trading engine. Every inbound trigger is normalized into a
// types.TriggerRequest and dispatched to the cycle engine; the HTTP
// status mirrors the cycle outcome (200 for success and skipped, 500
// for error).
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/indexflow/trading-engine/pkg/types"
)

// CycleRunner is the engine surface the server needs.
type CycleRunner interface {
	RunCycle(ctx context.Context, trigger types.TriggerRequest) types.CycleResult
	HealthCheck(ctx context.Context) types.HealthReport
}

// Server is the HTTP/WebSocket API server.
type Server struct {
	logger     *zap.Logger
	config     *types.ServerConfig
	router     *mux.Router
	httpServer *http.Server
	upgrader   websocket.Upgrader
	engine     CycleRunner
	hub        *Hub
	registry   *prometheus.Registry
}

// NewServer creates a new API server around the cycle engine. The
// registry may be nil, in which case /metrics is not served.
func NewServer(logger *zap.Logger, config *types.ServerConfig, engine CycleRunner, registry *prometheus.Registry) *Server {
	server := &Server{
		logger:   logger.Named("api"),
		config:   config,
		router:   mux.NewRouter(),
		engine:   engine,
		hub:      NewHub(logger),
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for development
			},
		},
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures HTTP routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/v1/cycle/run", s.handleRunCycle).Methods("POST")
	s.router.HandleFunc("/api/v1/health", s.handleHealth).Methods("GET")

	if s.config.EnableMetrics && s.registry != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	// WebSocket
	s.router.HandleFunc(s.config.WebSocketPath, s.handleWebSocket)
}

// Start starts the HTTP server and the WebSocket hub.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
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

	s.logger.Info("Starting API server", zap.String("addr", addr))

	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	s.hub.CloseAll()
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the route handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// handleRunCycle accepts a trigger request and runs the corresponding
// action. An empty body or missing action defaults to a trading cycle.
func (s *Server) handleRunCycle(w http.ResponseWriter, r *http.Request) {
	var trigger types.TriggerRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&trigger); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid trigger payload: %v", err))
			return
		}
	}
	if trigger.Action == "" {
		trigger.Action = types.ActionTrading
	}

	switch trigger.Action {
	case types.ActionTrading, types.ActionAnalysis:
		// Analysis triggers run the same cycle path as trading ones.
		result := s.engine.RunCycle(r.Context(), trigger)
		s.hub.BroadcastCycleResult(result)

		status := http.StatusOK
		if result.Status == types.CycleError {
			status = http.StatusInternalServerError
		}
		s.writeJSON(w, status, result)

	case types.ActionHealthCheck:
		s.writeJSON(w, http.StatusOK, s.engine.HealthCheck(r.Context()))

	default:
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", trigger.Action))
	}
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.engine.HealthCheck(r.Context())
	s.writeJSON(w, http.StatusOK, report)
}

// handleWebSocket upgrades a connection and attaches it to the hub.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(uuid.NewString(), s.hub, conn)
	s.hub.register <- client

	go client.WritePump()
	go client.ReadPump()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"status": "error",
		"error":  message,
	})
}
