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

package ecoconcurrent

import "ecosim/ecosystem"

// task is the goroutine of one living entity.
//
// Fields:
//
//	id	unique within a Simulation, for diagnostics
//	pos	current cell; changes when the entity moves
//	wake	delivers the barrier of each round the task takes part in;
//		closed when the entity dies or the population is discarded
//	dead	set once the entity has left the grid
//
// pos and dead are only touched while the exclusivity token is held.
// wake has room for one barrier: a task always receives round k's barrier
// before the coordinator can deliver round k+1's.
type task struct {
	id   uint64
	pos  ecosystem.Position
	wake chan *barrier
	dead bool
}

func newTask(id uint64, pos ecosystem.Position) *task {
	return &task{
		id:   id,
		pos:  pos,
		wake: make(chan *barrier, 1),
	}
}

// run performs one transition per delivered barrier until the entity dies.
func (t *task) run(s *Simulation) {
	for b := range t.wake {
		if !s.transition(t, b) {
			return
		}
	}
}

// transition is one round of one entity. Every path through it arrives at
// b exactly once, after the token has been released.
//
// Parameters:
//
//	t - the stepping task.
//	b - barrier of the current round.
//
// Returns:
//
//	bool - whether the entity is still alive and the task should keep running.
func (s *Simulation) transition(t *task, b *barrier) (alive bool) {
	defer b.arrive()
	s.acquire()
	defer s.release()

	// Eaten earlier in this round, before its own turn came.
	if t.dead {
		return false
	}
	if s.owners[s.grid.Index(t.pos)] != t {
		s.logger.Panicf("ecoconcurrent: task %d lost ownership of %v", t.id, t.pos)
	}

	out := ecosystem.Step(world{s}, &s.cfg, t.pos)
	if !out.Alive {
		s.retire(out.Pos)
		return false
	}
	return true
}
