package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"netwarden/internal/conflict"
	"netwarden/internal/repository"
	"netwarden/internal/topology"
)

func testTopology() *topology.Topology {
	topo := topology.New()
	topo.AddContainer("backend", &topology.Node{
		ContainerID:   "aaa111222333",
		ContainerName: "db",
		ShortID:       "aaa111222333",
	})
	topo.AddContainer("backend", &topology.Node{
		ContainerID:   "bbb444555666",
		ContainerName: "db",
		ShortID:       "bbb444555666",
	})
	topo.AddContainer("frontend", &topology.Node{
		ContainerID:   "ccc777888999",
		ContainerName: "proxy",
		ShortID:       "ccc777888999",
	})
	return topo
}

func newTestHandler(topo *topology.Topology, scanErr error) *ConflictHandler {
	scan := func(ctx context.Context, includeDefault bool) (*topology.Topology, error) {
		if scanErr != nil {
			return nil, scanErr
		}
		return topo, nil
	}
	return NewConflictHandler(scan, conflict.NewDetector(conflict.DefaultConfig()), false)
}

func TestGetConflicts(t *testing.T) {
	t.Run("returns scan with conflicts", func(t *testing.T) {
		h := newTestHandler(testTopology(), nil)

		rec := httptest.NewRecorder()
		h.GetConflicts(rec, httptest.NewRequest(http.MethodGet, "/api/conflicts", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var resp ScanResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}

		if resp.Summary.TotalNetworks != 2 {
			t.Errorf("total networks = %d, want 2", resp.Summary.TotalNetworks)
		}
		if resp.Summary.TotalContainers != 3 {
			t.Errorf("total containers = %d, want 3", resp.Summary.TotalContainers)
		}
		if resp.Summary.Critical != 1 {
			t.Errorf("critical = %d, want 1", resp.Summary.Critical)
		}
		if len(resp.Conflicts) == 0 {
			t.Fatal("expected at least one conflict")
		}
		if resp.Conflicts[0].DNSName != "db" || resp.Conflicts[0].Network != "backend" {
			t.Errorf("conflict = %s on %s, want db on backend", resp.Conflicts[0].DNSName, resp.Conflicts[0].Network)
		}
		if len(resp.Networks) != 2 {
			t.Errorf("networks in view = %d, want 2", len(resp.Networks))
		}
	})

	t.Run("clean topology returns empty conflict list", func(t *testing.T) {
		topo := topology.New()
		topo.AddContainer("web", &topology.Node{
			ContainerID:   "aaa111222333",
			ContainerName: "app-frontend",
			ShortID:       "aaa111222333",
		})
		h := newTestHandler(topo, nil)

		rec := httptest.NewRecorder()
		h.GetConflicts(rec, httptest.NewRequest(http.MethodGet, "/api/conflicts", nil))

		var resp ScanResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Conflicts == nil || len(resp.Conflicts) != 0 {
			t.Errorf("conflicts = %v, want empty array", resp.Conflicts)
		}
	})

	t.Run("scan failure returns 502", func(t *testing.T) {
		h := newTestHandler(nil, errors.New("engine unreachable"))

		rec := httptest.NewRecorder()
		h.GetConflicts(rec, httptest.NewRequest(http.MethodGet, "/api/conflicts", nil))

		if rec.Code != http.StatusBadGateway {
			t.Fatalf("status = %d, want 502", rec.Code)
		}

		var resp ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode error response: %v", err)
		}
		if resp.Error == "" {
			t.Error("expected error message in body")
		}
	})
}

func TestGetCrossNetwork(t *testing.T) {
	topo := testTopology()
	topo.AddContainer("frontend", &topology.Node{
		ContainerID:   "aaa111222333",
		ContainerName: "db",
		ShortID:       "aaa111222333",
	})
	h := newTestHandler(topo, nil)

	rec := httptest.NewRecorder()
	h.GetCrossNetwork(rec, httptest.NewRequest(http.MethodGet, "/api/cross-network", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp CrossNetworkResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Containers) != 1 {
		t.Fatalf("multi-homed containers = %d, want 1", len(resp.Containers))
	}
	if resp.Containers[0].Container != "db" {
		t.Errorf("container = %q, want db", resp.Containers[0].Container)
	}
}

// fakeHistory implements repository.Repository for handler tests
type fakeHistory struct {
	entries []repository.HistoryEntry
	err     error
}

func (f *fakeHistory) SaveReport(ctx context.Context, scannedAt time.Time, report *conflict.Report) (int64, error) {
	return 0, nil
}

func (f *fakeHistory) RecentReports(ctx context.Context, limit int) ([]repository.HistoryEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func (f *fakeHistory) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeHistory) Close() error { return nil }

func TestGetHistory(t *testing.T) {
	t.Run("no repository attached", func(t *testing.T) {
		h := newTestHandler(testTopology(), nil)

		rec := httptest.NewRecorder()
		h.GetHistory(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("returns entries", func(t *testing.T) {
		h := newTestHandler(testTopology(), nil)
		h.SetHistory(&fakeHistory{entries: []repository.HistoryEntry{
			{ID: 2, CriticalCount: 1, Report: &conflict.Report{}},
			{ID: 1, Report: &conflict.Report{}},
		}})

		rec := httptest.NewRecorder()
		h.GetHistory(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var entries []repository.HistoryEntry
		if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(entries) != 2 || entries[0].ID != 2 {
			t.Errorf("entries = %+v, want 2 entries newest first", entries)
		}
	})

	t.Run("respects limit", func(t *testing.T) {
		h := newTestHandler(testTopology(), nil)
		h.SetHistory(&fakeHistory{entries: []repository.HistoryEntry{
			{ID: 3}, {ID: 2}, {ID: 1},
		}})

		rec := httptest.NewRecorder()
		h.GetHistory(rec, httptest.NewRequest(http.MethodGet, "/api/history?limit=2", nil))

		var entries []repository.HistoryEntry
		if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(entries) != 2 {
			t.Errorf("entries = %d, want 2", len(entries))
		}
	})

	t.Run("rejects bad limit", func(t *testing.T) {
		h := newTestHandler(testTopology(), nil)
		h.SetHistory(&fakeHistory{})

		for _, raw := range []string{"0", "-5", "abc", "9999"} {
			rec := httptest.NewRecorder()
			h.GetHistory(rec, httptest.NewRequest(http.MethodGet, "/api/history?limit="+raw, nil))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("limit=%s: status = %d, want 400", raw, rec.Code)
			}
		}
	})

	t.Run("repository error returns 500", func(t *testing.T) {
		h := newTestHandler(testTopology(), nil)
		h.SetHistory(&fakeHistory{err: errors.New("db locked")})

		rec := httptest.NewRecorder()
		h.GetHistory(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
	})
}

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("recover catches panics", func(t *testing.T) {
		panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		})
		rec := httptest.NewRecorder()
		Recover(panicky).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})

	t.Run("cors handles preflight", func(t *testing.T) {
		rec := httptest.NewRecorder()
		CORS(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/conflicts", nil))

		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("missing CORS origin header")
		}
	})

	t.Run("chain order", func(t *testing.T) {
		var order []string
		mk := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		rec := httptest.NewRecorder()
		Chain(ok, mk("outer"), mk("inner")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
			t.Errorf("middleware order = %v, want [outer inner]", order)
		}
	})
}

func TestBasicAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("generate hash: %v", err)
	}

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	protected := BasicAuth("admin", string(hash))(ok)

	t.Run("missing credentials", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if rec.Header().Get("WWW-Authenticate") == "" {
			t.Error("missing WWW-Authenticate header")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetBasicAuth("admin", "wrong")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("valid credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetBasicAuth("admin", "hunter2")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("disabled with empty username", func(t *testing.T) {
		open := BasicAuth("", "")(ok)
		rec := httptest.NewRecorder()
		open.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}
