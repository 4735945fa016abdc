// Copyright (C) 2025  Diarmuid O'Neill

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.

// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package gateway

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ecoconcurrent "ecosim/concurrent"
	"ecosim/ecosystem"
)

func newServer(t *testing.T, staticDir string) *Server {
	t.Helper()
	cfg := ecosystem.DefaultConfig()
	cfg.Seed = 5
	cfg.Logger = log.New(io.Discard, "", 0)
	sim, err := ecoconcurrent.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sim.Close() })
	return New(sim, cfg.Logger, staticDir)
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) ecosystem.Snapshot {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var snap ecosystem.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decoding snapshot: %v\n%s", err, rec.Body)
	}
	return snap
}

func TestStartSimulation(t *testing.T) {
	srv := newServer(t, "")
	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"plants": 20, "herbivores": 10, "carnivores": 5}`)
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/start-simulation", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body)
	}
	snap := decodeSnapshot(t, rec)
	want := ecosystem.Census{Plants: 20, Herbivores: 10, Carnivores: 5}
	if got := snap.Census(); got != want {
		t.Errorf("census = %+v, want %+v", got, want)
	}
	if len(snap) != ecosystem.DefaultSize {
		t.Errorf("rows = %d, want %d", len(snap), ecosystem.DefaultSize)
	}
}

func TestStartSimulationRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"too many", `{"plants": 200, "herbivores": 20, "carnivores": 6}`, "Too many entities"},
		{"malformed", `{"plants": `, "Invalid request body"},
		{"negative", `{"plants": -1, "herbivores": 0, "carnivores": 0}`, "Invalid request body"},
		{"missing", `{"plants": 1}`, "required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, "")
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/start-simulation", strings.NewReader(tt.body)))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body = %q, want it to contain %q", rec.Body, tt.want)
			}
		})
	}
}

func TestNextIteration(t *testing.T) {
	srv := newServer(t, "")
	start := httptest.NewRecorder()
	srv.ServeHTTP(start, httptest.NewRequest(http.MethodPost, "/start-simulation",
		strings.NewReader(`{"plants": 30, "herbivores": 0, "carnivores": 0}`)))
	if start.Code != http.StatusOK {
		t.Fatalf("start status = %d", start.Code)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/next-iteration", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	for _, row := range decodeSnapshot(t, rec) {
		for _, r := range row {
			if r.Kind == ecosystem.Plant && r.Age > 1 {
				t.Errorf("plant aged %d after one round", r.Age)
			}
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newServer(t, "")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/start-simulation", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>ecosim</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}
	srv := newServer(t, dir)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ecosim") {
		t.Errorf("GET / = %d %q", rec.Code, rec.Body)
	}

	bare := newServer(t, "")
	rec = httptest.NewRecorder()
	bare.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET / without static dir = %d, want 404", rec.Code)
	}
}
