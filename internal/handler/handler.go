// Package handler exposes the scan results over HTTP for the dashboard.
package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"netwarden/internal/conflict"
	"netwarden/internal/repository"
	"netwarden/internal/topology"
)

// ErrorResponse is the JSON body for failed requests
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Summary is the headline counts for a scan.
type Summary struct {
	TotalNetworks   int `json:"total_networks"`
	TotalContainers int `json:"total_containers"`
	Critical        int `json:"critical"`
	High            int `json:"high"`
	Warnings        int `json:"warnings"`
}

// NetworkView is one network and its attached containers.
type NetworkView struct {
	Name       string           `json:"name"`
	Containers []*topology.Node `json:"containers"`
}

// ScanResponse is the full payload for GET /api/conflicts.
type ScanResponse struct {
	ScannedAt time.Time            `json:"scanned_at"`
	Summary   Summary              `json:"summary"`
	Conflicts []*conflict.Conflict `json:"conflicts"`
	Networks  []NetworkView        `json:"networks"`
}

// CrossNetworkResponse is the payload for GET /api/cross-network.
type CrossNetworkResponse struct {
	Containers []conflict.MultiHomed `json:"containers"`
}

// ConflictHandler handles conflict API requests
type ConflictHandler struct {
	scan           ScanFunc
	detector       *conflict.Detector
	history        repository.Repository
	includeDefault bool
}

// ScanFunc produces a topology snapshot. It matches the signature of
// dockerd.Scanner.Scan bound to a client.
type ScanFunc func(ctx context.Context, includeDefault bool) (*topology.Topology, error)

// NewConflictHandler creates a new conflict handler
func NewConflictHandler(scan ScanFunc, detector *conflict.Detector, includeDefault bool) *ConflictHandler {
	return &ConflictHandler{
		scan:           scan,
		detector:       detector,
		includeDefault: includeDefault,
	}
}

// SetHistory attaches a scan-history repository; without one the
// history endpoint returns 503.
func (h *ConflictHandler) SetHistory(repo repository.Repository) {
	h.history = repo
}

// GetConflicts runs a fresh scan and returns the complete analysis
func (h *ConflictHandler) GetConflicts(w http.ResponseWriter, r *http.Request) {
	topo, err := h.scan(r.Context(), h.includeDefault)
	if err != nil {
		log.Printf("Failed to scan topology: %v", err)
		h.writeError(w, "Failed to scan topology", err.Error(), http.StatusBadGateway)
		return
	}

	report := h.detector.Analyze(topo)

	resp := ScanResponse{
		ScannedAt: time.Now().UTC(),
		Summary: Summary{
			TotalNetworks:   report.TotalNetworks,
			TotalContainers: report.TotalContainers,
			Critical:        report.CriticalCount(),
			High:            report.HighCount(),
			Warnings:        report.WarningCount(),
		},
		Conflicts: report.Conflicts,
		Networks:  networkViews(topo),
	}
	if resp.Conflicts == nil {
		resp.Conflicts = []*conflict.Conflict{}
	}

	h.writeJSON(w, resp, http.StatusOK)
}

// GetCrossNetwork returns containers attached to multiple networks
func (h *ConflictHandler) GetCrossNetwork(w http.ResponseWriter, r *http.Request) {
	topo, err := h.scan(r.Context(), h.includeDefault)
	if err != nil {
		log.Printf("Failed to scan topology: %v", err)
		h.writeError(w, "Failed to scan topology", err.Error(), http.StatusBadGateway)
		return
	}

	multi := conflict.CrossNetwork(topo)
	if multi == nil {
		multi = []conflict.MultiHomed{}
	}

	h.writeJSON(w, CrossNetworkResponse{Containers: multi}, http.StatusOK)
}

// GetHistory returns recent persisted scan results, newest first
func (h *ConflictHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, "History not configured", "No history database is attached", http.StatusServiceUnavailable)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			h.writeError(w, "Invalid limit", "limit must be an integer between 1 and 500", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	entries, err := h.history.RecentReports(r.Context(), limit)
	if err != nil {
		log.Printf("Failed to load history: %v", err)
		h.writeError(w, "Failed to load history", err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []repository.HistoryEntry{}
	}

	h.writeJSON(w, entries, http.StatusOK)
}

func networkViews(topo *topology.Topology) []NetworkView {
	views := make([]NetworkView, 0, topo.NetworkCount())
	for _, name := range topo.NetworkNames() {
		views = append(views, NetworkView{
			Name:       name,
			Containers: topo.Nodes(name),
		})
	}
	return views
}

func (h *ConflictHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *ConflictHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
