package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/groupshard/groupshard/pkg/arbiter"
	"github.com/groupshard/groupshard/pkg/metrics"
	"github.com/groupshard/groupshard/pkg/types"
)

// HealthServer provides HTTP health check endpoints for an arbiter
// process, served alongside the gRPC ArbServerRpcService on a separate
// port (spec.md §6's "Prometheus /metrics endpoint" supplement).
type HealthServer struct {
	arb *arbiter.Arbiter
	mux *http.ServeMux
}

// NewHealthServer creates a new health check HTTP server. arb may be nil
// in tests exercising the handlers directly.
func NewHealthServer(arb *arbiter.Arbiter) *HealthServer {
	mux := http.NewServeMux()
	hs := &HealthServer{
		arb: arb,
		mux: mux,
	}

	mux.HandleFunc("/health", hs.healthHandler)
	mux.HandleFunc("/ready", hs.readyHandler)
	mux.Handle("/metrics", metrics.Handler())

	return hs
}

// Start starts the health check HTTP server.
func (hs *HealthServer) Start(addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      hs.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// HealthResponse represents the liveness check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Message   string            `json:"message,omitempty"`
}

// healthHandler implements /health: a liveness check, 200 if the process
// is alive regardless of Raft state.
func (hs *HealthServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// readyHandler implements /ready: ready only once this arbiter has a
// leader (itself or otherwise). The registry is read, but its result is
// not checked: the "registry" entry always reports "ok".
func (hs *HealthServer) readyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	checks := make(map[string]string)
	ready := true
	var message string

	if hs.arb != nil {
		if hs.arb.IsLeader() {
			checks["raft"] = "leader"
		} else {
			leaderAddr := hs.arb.LeaderAddr()
			if leaderAddr != "" {
				checks["raft"] = fmt.Sprintf("follower (leader: %s)", leaderAddr)
			} else {
				checks["raft"] = "no leader elected"
				ready = false
				message = "Waiting for leader election"
			}
		}

		_ = hs.arb.ListAllNodes(types.NodeTypeGroupShard)
		checks["registry"] = "ok"
	} else {
		checks["raft"] = "not initialized"
		checks["registry"] = "not initialized"
		ready = false
		message = "Arbiter not initialized"
	}

	status := "ready"
	statusCode := http.StatusOK
	if !ready {
		status = "not ready"
		statusCode = http.StatusServiceUnavailable
	}

	response := ReadyResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
		Message:   message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// GetHandler returns the HTTP handler for embedding in other servers.
func (hs *HealthServer) GetHandler() http.Handler {
	return hs.mux
}
