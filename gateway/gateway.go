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

// Package gateway serves a simulation over HTTP: one request starts a new
// population, the next ones advance it a round at a time. Every response
// carries the grid as JSON.
package gateway

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"ecosim/ecosystem"
)

// Engine is the part of a simulation the gateway drives.
type Engine interface {
	InitializePopulation(plants, herbivores, carnivores uint) (ecosystem.Snapshot, error)
	AdvanceRound() ecosystem.Snapshot
}

// Server routes the simulation endpoints.
type Server struct {
	engine Engine
	logger *log.Logger
	mux    *http.ServeMux
}

// New returns a Server driving engine. When staticDir is not empty its
// files are served under /.
func New(engine Engine, logger *log.Logger, staticDir string) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		engine: engine,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /start-simulation", s.startSimulation)
	s.mux.HandleFunc("GET /next-iteration", s.nextIteration)
	if staticDir != "" {
		s.mux.Handle("GET /", http.FileServer(http.Dir(staticDir)))
	}
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// startRequest is the body of POST /start-simulation.
type startRequest struct {
	Plants     *uint `json:"plants"`
	Herbivores *uint `json:"herbivores"`
	Carnivores *uint `json:"carnivores"`
}

func (s *Server) startSimulation(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Plants == nil || req.Herbivores == nil || req.Carnivores == nil {
		http.Error(w, "plants, herbivores and carnivores are required", http.StatusBadRequest)
		return
	}

	snap, err := s.engine.InitializePopulation(*req.Plants, *req.Herbivores, *req.Carnivores)
	var verr *ecosystem.ValidationError
	switch {
	case errors.As(err, &verr):
		http.Error(w, "Too many entities", http.StatusBadRequest)
		return
	case err != nil:
		s.logger.Printf("start-simulation: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	s.writeSnapshot(w, snap)
}

func (s *Server) nextIteration(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	snap := s.engine.AdvanceRound()
	c := snap.Census()
	s.logger.Printf("round advanced in %s: %d plants, %d herbivores, %d carnivores",
		time.Since(start), c.Plants, c.Herbivores, c.Carnivores)
	s.writeSnapshot(w, snap)
}

func (s *Server) writeSnapshot(w http.ResponseWriter, snap ecosystem.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Printf("encoding snapshot: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
