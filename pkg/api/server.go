// Package api implements the node's HTTP control surface: starting the
// miner and transaction generator, pinging the network, and exposing
// Prometheus metrics — the same three-route surface as the reference
// implementation's tiny_http server, translated to gorilla/mux.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prism-labs/prism/pkg/logger"
	"github.com/prism-labs/prism/pkg/metrics"
	"github.com/prism-labs/prism/pkg/miner"
	"github.com/prism-labs/prism/pkg/net"
	"github.com/prism-labs/prism/pkg/perrors"
	"github.com/prism-labs/prism/pkg/txgen"
)

// Config holds the API server's wiring. Miner, TxGen, Transport, and
// Metrics are all optional — a nil component simply makes its routes
// no-ops (or, for /metrics, absent entirely).
type Config struct {
	Port      int
	Miner     *miner.Miner
	TxGen     *txgen.Generator
	Transport net.Transport
	Metrics   *metrics.Registry
	Logger    *logger.Logger
}

// DefaultConfig returns the API server configuration used in
// production: port 7000, no components wired.
func DefaultConfig() *Config {
	return &Config{Port: 7000, Logger: logger.NewLogger(logger.DefaultConfig())}
}

// Server is the node's HTTP control surface.
type Server struct {
	router    *mux.Router
	miner     *miner.Miner
	txgen     *txgen.Generator
	transport net.Transport
	metrics   *metrics.Registry
	log       *logger.Logger
	port      int
}

// response is the JSON envelope every route replies with, matching
// the reference implementation's ApiResponse struct.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewServer builds a Server from cfg and wires its routes.
func NewServer(cfg *Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewLogger(logger.DefaultConfig())
	}
	s := &Server{
		router:    mux.NewRouter(),
		miner:     cfg.Miner,
		txgen:     cfg.TxGen,
		transport: cfg.Transport,
		metrics:   cfg.Metrics,
		log:       cfg.Logger,
		port:      cfg.Port,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/miner/start", s.minerStartHandler).Methods("GET")
	s.router.HandleFunc("/network/ping", s.networkPingHandler).Methods("GET")
	if s.metrics != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	}
	s.router.NotFoundHandler = http.HandlerFunc(s.notFoundHandler)
}

// Start blocks serving the API on its configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.log.Info("api: listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

func respond(w http.ResponseWriter, success bool, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response{Success: success, Message: message})
}

// minerStartHandler starts both the transaction generator and the
// miner with the same lambda (microseconds between attempts), index
// derived as lambda%3 — matching the reference implementation's
// /miner/start exactly, including the 1-second stagger between
// starting the generator and starting the miner so the mempool has a
// chance to fill first.
func (s *Server) minerStartHandler(w http.ResponseWriter, r *http.Request) {
	lambdaStr := r.URL.Query().Get("lambda")
	if lambdaStr == "" {
		respond(w, false, "missing lambda", http.StatusBadRequest)
		return
	}
	lambdaMicros, err := strconv.ParseUint(lambdaStr, 10, 64)
	if err != nil {
		respond(w, false, fmt.Sprintf("error parsing lambda: %v", err), http.StatusBadRequest)
		return
	}

	lambda := time.Duration(lambdaMicros) * time.Microsecond
	index := int32(lambdaMicros % 3)

	if s.txgen != nil {
		s.txgen.Start(lambda, int(index))
	}
	time.Sleep(time.Second)
	if s.miner != nil {
		s.miner.Start(lambda, index)
	}
	respond(w, true, "ok", http.StatusOK)
}

func (s *Server) networkPingHandler(w http.ResponseWriter, r *http.Request) {
	if s.transport != nil {
		if err := s.transport.Broadcast(net.Ping(0)); err != nil {
			s.log.Error("api: ping broadcast failed: %v", fmt.Errorf("%v: %w", err, perrors.ErrTransportError))
		}
	}
	respond(w, true, "ok", http.StatusOK)
}

func (s *Server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	respond(w, false, "endpoint not found", http.StatusNotFound)
}
