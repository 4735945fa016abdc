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

// Concurrent predator-prey simulation in Go

// package ecoconcurrent runs every living entity as its own goroutine and
// advances the whole population one synchronised round at a time.
package ecoconcurrent

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"

	"golang.org/x/sync/semaphore"

	"ecosim/ecosystem"
)

// Simulation is the round coordinator of one population.
//
// Two locks are involved. ops serialises the public operations so that at
// most one round is ever in flight. token is the exclusivity token: the
// grid, the task registry, the cell owners and the random source are only
// read or written while it is held, by the coordinator or by exactly one
// entity task.
type Simulation struct {
	cfg    ecosystem.Config
	logger *log.Logger

	ops   sync.Mutex
	token *semaphore.Weighted

	grid   *ecosystem.Grid
	rng    *rand.Rand
	owners []*task
	live   map[uint64]*task
	nextID uint64
	round  uint64
}

// New creates an empty simulation.
//
// Parameters:
//
//	cfg - ecosystem constants, seed and safety-net timeout.
//
// Returns:
//
//	*Simulation - idle, with an all-empty grid.
//	error - if cfg does not validate.
func New(cfg ecosystem.Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("ecoconcurrent: %w", err)
	}
	return &Simulation{
		cfg:    cfg,
		logger: cfg.LoggerOrDefault(),
		token:  semaphore.NewWeighted(1),
		grid:   ecosystem.NewGrid(cfg.Size),
		rng:    ecosystem.NewRand(cfg.Seed),
		owners: make([]*task, cfg.Size*cfg.Size),
		live:   make(map[uint64]*task),
	}, nil
}

func (s *Simulation) acquire() {
	if err := s.token.Acquire(context.Background(), 1); err != nil {
		s.logger.Panicf("ecoconcurrent: acquiring exclusivity token: %v", err)
	}
}

func (s *Simulation) release() {
	s.token.Release(1)
}

// InitializePopulation discards the current population and places a new one
// on distinct random cells, every entity with its kind's start energy and
// age 0, each with its own task. A request larger than the grid returns a
// *ecosystem.ValidationError and leaves everything untouched.
//
// Parameters:
//
//	plants, herbivores, carnivores - number of entities of each kind.
//
// Returns:
//
//	ecosystem.Snapshot - the grid right after placement.
//	error - *ecosystem.ValidationError when the counts exceed the grid.
func (s *Simulation) InitializePopulation(plants, herbivores, carnivores uint) (ecosystem.Snapshot, error) {
	s.ops.Lock()
	defer s.ops.Unlock()
	s.acquire()
	defer s.release()

	layout, err := ecosystem.Layout(s.rng, s.cfg.Size, plants, herbivores, carnivores)
	if err != nil {
		return nil, err
	}

	s.discard()
	for _, p := range layout {
		s.grid.Set(p.Pos, ecosystem.Record{Kind: p.Kind, Energy: s.cfg.RulesFor(p.Kind).StartEnergy})
		s.start(p.Pos)
	}
	s.logger.Printf("population initialised: %d plants, %d herbivores, %d carnivores", plants, herbivores, carnivores)
	return s.grid.Snapshot(), nil
}

// Place puts a single entity with its kind's start energy on a chosen
// cell and starts its task. It takes part from the next round on.
func (s *Simulation) Place(pos ecosystem.Position, kind ecosystem.Kind) error {
	s.ops.Lock()
	defer s.ops.Unlock()
	s.acquire()
	defer s.release()

	switch {
	case !kind.Alive():
		return fmt.Errorf("ecoconcurrent: place %v: %w", kind, ecosystem.ErrNotAlive)
	case !s.grid.InBounds(pos):
		return fmt.Errorf("ecoconcurrent: place at %v: %w", pos, ecosystem.ErrOutOfBounds)
	case s.grid.Get(pos).Kind != ecosystem.Empty:
		return fmt.Errorf("ecoconcurrent: place at %v: %w", pos, ecosystem.ErrOccupied)
	}
	s.grid.Set(pos, ecosystem.Record{Kind: kind, Energy: s.cfg.RulesFor(kind).StartEnergy})
	s.start(pos)
	return nil
}

// AdvanceRound runs exactly one round. The tasks registered when the round
// starts each receive the round's barrier; entities born during the round
// first act in the next one, and entities that die during the round are not
// counted again. It returns once every counted task has transitioned or
// terminated.
//
// Returns:
//
//	ecosystem.Snapshot - the grid after the round.
func (s *Simulation) AdvanceRound() ecosystem.Snapshot {
	s.ops.Lock()
	defer s.ops.Unlock()

	s.acquire()
	s.round++
	b := newBarrier(s.round, len(s.live))
	for _, t := range s.live {
		t.wake <- b
	}
	s.release()

	if err := b.wait(s.cfg.RoundTimeout); err != nil {
		s.logger.Panicf("ecoconcurrent: %v", err)
	}

	s.acquire()
	defer s.release()
	return s.grid.Snapshot()
}

// Snapshot returns a copy of the grid.
func (s *Simulation) Snapshot() ecosystem.Snapshot {
	s.acquire()
	defer s.release()
	return s.grid.Snapshot()
}

// Population returns the number of living entities.
func (s *Simulation) Population() int {
	s.acquire()
	defer s.release()
	return len(s.live)
}

// Round returns the number of rounds advanced so far.
func (s *Simulation) Round() uint64 {
	s.acquire()
	defer s.release()
	return s.round
}

// Close stops every entity task and empties the grid.
func (s *Simulation) Close() error {
	s.ops.Lock()
	defer s.ops.Unlock()
	s.acquire()
	defer s.release()
	s.discard()
	return nil
}

// start registers a task for the entity just written at pos and launches it.
func (s *Simulation) start(pos ecosystem.Position) {
	idx := s.grid.Index(pos)
	if s.owners[idx] != nil {
		s.logger.Panicf("ecoconcurrent: spawning at %v owned by task %d", pos, s.owners[idx].id)
	}
	s.nextID++
	t := newTask(s.nextID, pos)
	s.owners[idx] = t
	s.live[t.id] = t
	go t.run(s)
}

// retire unregisters the task owning pos, whose cell has already been
// cleared, and ends it. A task retired before its turn in the current round
// still arrives at that round's barrier.
func (s *Simulation) retire(pos ecosystem.Position) {
	idx := s.grid.Index(pos)
	t := s.owners[idx]
	if t == nil {
		s.logger.Panicf("ecoconcurrent: no task owns %v", pos)
	}
	s.owners[idx] = nil
	delete(s.live, t.id)
	t.dead = true
	close(t.wake)
}

// discard ends every task and empties the grid.
func (s *Simulation) discard() {
	for _, t := range s.live {
		t.dead = true
		close(t.wake)
	}
	clear(s.live)
	clear(s.owners)
	s.grid.Reset()
}

// world exposes the simulation to the rule engine while a task holds the token.
type world struct {
	s *Simulation
}

func (w world) Grid() *ecosystem.Grid { return w.s.grid }
func (w world) Float64() float64      { return w.s.rng.Float64() }
func (w world) IntN(n int) int        { return w.s.rng.IntN(n) }

func (w world) Spawned(p ecosystem.Position) { w.s.start(p) }
func (w world) Removed(p ecosystem.Position) { w.s.retire(p) }

func (w world) Moved(from, to ecosystem.Position) {
	s := w.s
	t := s.owners[s.grid.Index(from)]
	s.owners[s.grid.Index(from)] = nil
	s.owners[s.grid.Index(to)] = t
	t.pos = to
}
