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

// Sequential predator-prey simulation in Go

// package ecosequential implements the predator-prey simulation on a single
// goroutine. It follows the same rules and contract as ecoconcurrent and is
// fully deterministic for a given seed.
package ecosequential

import (
	"fmt"
	"log"
	"math/rand/v2"
	"sync"

	"ecosim/ecosystem"
)

// Simulation is a single-goroutine engine. ids holds the identity of the
// entity in each cell (0 when empty), which is how a round tells an entity
// that was eaten before its turn from one that is still waiting.
type Simulation struct {
	cfg    ecosystem.Config
	logger *log.Logger

	mu     sync.Mutex
	grid   *ecosystem.Grid
	rng    *rand.Rand
	ids    []uint64
	nextID uint64
	alive  int
	round  uint64
}

// New creates an empty simulation.
func New(cfg ecosystem.Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("ecosequential: %w", err)
	}
	return &Simulation{
		cfg:    cfg,
		logger: cfg.LoggerOrDefault(),
		grid:   ecosystem.NewGrid(cfg.Size),
		rng:    ecosystem.NewRand(cfg.Seed),
		ids:    make([]uint64, cfg.Size*cfg.Size),
	}, nil
}

// InitializePopulation discards the current population and places a new one
// on distinct random cells. See ecoconcurrent.Simulation.InitializePopulation.
func (s *Simulation) InitializePopulation(plants, herbivores, carnivores uint) (ecosystem.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	layout, err := ecosystem.Layout(s.rng, s.cfg.Size, plants, herbivores, carnivores)
	if err != nil {
		return nil, err
	}

	s.grid.Reset()
	clear(s.ids)
	s.alive = 0
	for _, p := range layout {
		s.grid.Set(p.Pos, ecosystem.Record{Kind: p.Kind, Energy: s.cfg.RulesFor(p.Kind).StartEnergy})
		s.register(p.Pos)
	}
	s.logger.Printf("population initialised: %d plants, %d herbivores, %d carnivores", plants, herbivores, carnivores)
	return s.grid.Snapshot(), nil
}

// Place puts a single entity with its kind's start energy on a chosen cell.
func (s *Simulation) Place(pos ecosystem.Position, kind ecosystem.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case !kind.Alive():
		return fmt.Errorf("ecosequential: place %v: %w", kind, ecosystem.ErrNotAlive)
	case !s.grid.InBounds(pos):
		return fmt.Errorf("ecosequential: place at %v: %w", pos, ecosystem.ErrOutOfBounds)
	case s.grid.Get(pos).Kind != ecosystem.Empty:
		return fmt.Errorf("ecosequential: place at %v: %w", pos, ecosystem.ErrOccupied)
	}
	s.grid.Set(pos, ecosystem.Record{Kind: kind, Energy: s.cfg.RulesFor(kind).StartEnergy})
	s.register(pos)
	return nil
}

// visit is one entity scheduled for the current round.
type visit struct {
	id  uint64
	pos ecosystem.Position
}

// AdvanceRound steps every entity alive at the start of the round once, in
// a shuffled order. Entities eaten before their turn are skipped and
// entities born during the round wait for the next one.
//
// Returns:
//
//	ecosystem.Snapshot - the grid after the round.
func (s *Simulation) AdvanceRound() ecosystem.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.round++
	visits := make([]visit, 0, s.alive)
	for i, id := range s.ids {
		if id != 0 {
			visits = append(visits, visit{id: id, pos: ecosystem.Position{Row: i / s.cfg.Size, Col: i % s.cfg.Size}})
		}
	}
	s.rng.Shuffle(len(visits), func(i, j int) {
		visits[i], visits[j] = visits[j], visits[i]
	})

	for _, v := range visits {
		if s.ids[s.grid.Index(v.pos)] != v.id {
			continue
		}
		out := ecosystem.Step(world{s}, &s.cfg, v.pos)
		if !out.Alive {
			s.unregister(out.Pos)
		}
	}
	return s.grid.Snapshot()
}

// Snapshot returns a copy of the grid.
func (s *Simulation) Snapshot() ecosystem.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Snapshot()
}

// Population returns the number of living entities.
func (s *Simulation) Population() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alive
}

// Round returns the number of rounds advanced so far.
func (s *Simulation) Round() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

// Close empties the grid.
func (s *Simulation) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid.Reset()
	clear(s.ids)
	s.alive = 0
	return nil
}

func (s *Simulation) register(pos ecosystem.Position) {
	s.nextID++
	s.ids[s.grid.Index(pos)] = s.nextID
	s.alive++
}

func (s *Simulation) unregister(pos ecosystem.Position) {
	idx := s.grid.Index(pos)
	if s.ids[idx] == 0 {
		s.logger.Panicf("ecosequential: no entity registered at %v", pos)
	}
	s.ids[idx] = 0
	s.alive--
}

type world struct {
	s *Simulation
}

func (w world) Grid() *ecosystem.Grid        { return w.s.grid }
func (w world) Float64() float64             { return w.s.rng.Float64() }
func (w world) IntN(n int) int               { return w.s.rng.IntN(n) }
func (w world) Spawned(p ecosystem.Position) { w.s.register(p) }
func (w world) Removed(p ecosystem.Position) { w.s.unregister(p) }

func (w world) Moved(from, to ecosystem.Position) {
	ids := w.s.ids
	g := w.s.grid
	ids[g.Index(to)], ids[g.Index(from)] = ids[g.Index(from)], 0
}
