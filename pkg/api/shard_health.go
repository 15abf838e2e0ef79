package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/groupshard/groupshard/pkg/metrics"
	"github.com/groupshard/groupshard/pkg/shard"
	"github.com/groupshard/groupshard/pkg/types"
)

// ShardHealthServer mirrors HealthServer for a shard node process: a
// liveness check that is always 200, and a readiness check gated on the
// node's lifecycle state instead of Raft leadership.
type ShardHealthServer struct {
	node *shard.Node
	mux  *http.ServeMux
}

// NewShardHealthServer creates a new health check HTTP server for a shard
// node. node may be nil in tests exercising the handlers directly.
func NewShardHealthServer(node *shard.Node) *ShardHealthServer {
	mux := http.NewServeMux()
	hs := &ShardHealthServer{node: node, mux: mux}

	mux.HandleFunc("/health", hs.healthHandler)
	mux.HandleFunc("/ready", hs.readyHandler)
	mux.Handle("/metrics", metrics.Handler())

	return hs
}

// Start starts the health check HTTP server.
func (hs *ShardHealthServer) Start(addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      hs.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

func (hs *ShardHealthServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{Status: "healthy", Timestamp: time.Now()}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// readyHandler implements /ready: ready only once the node has climbed to
// Normal, per spec.md §4.1's lifecycle chain.
func (hs *ShardHealthServer) readyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	checks := make(map[string]string)
	ready := true
	var message string

	if hs.node != nil {
		state := hs.node.State()
		checks["lifecycle"] = string(state)
		if state != types.StateNormal {
			ready = false
			message = "Shard not yet in Normal state"
		}
	} else {
		checks["lifecycle"] = "not initialized"
		ready = false
		message = "Shard node not initialized"
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
func (hs *ShardHealthServer) GetHandler() http.Handler {
	return hs.mux
}
