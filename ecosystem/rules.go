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

package ecosystem

// World is what the rule engine needs from an engine while one entity steps.
// Step performs every grid write itself; the hooks let the engine keep its
// own bookkeeping (tasks, ids, population) in line with the grid.
// Every method is called with the engine's exclusivity token held.
type World interface {
	// Grid returns the shared grid.
	Grid() *Grid
	// Float64 draws uniformly from [0,1).
	Float64() float64
	// IntN draws uniformly from [0,n).
	IntN(n int) int
	// Spawned is called after a newborn has been written at p. The newborn
	// first acts in the next round.
	Spawned(p Position)
	// Removed is called after the prey at p has been eaten and its cell cleared.
	Removed(p Position)
	// Moved is called after the stepping entity has moved from one cell to another.
	Moved(from, to Position)
}

// Outcome is the result of one step.
type Outcome struct {
	// Pos is where the entity ended the step.
	Pos Position
	// Alive is false when the entity died and its cell was cleared.
	Alive bool
}

// Terminal reports whether an entity with record r must die: it has reached
// its kind's maximum age, or it is an animal without energy.
func Terminal(r Record, rules *Rules) bool {
	if r.Age >= rules.MaxAge {
		return true
	}
	return r.Kind.Animal() && r.Energy <= 0
}

// Step advances the living entity at pos by one round: eat, reproduce, move,
// age. An entity that is already terminal, or becomes terminal by the end of
// the step, is removed from the grid.
//
// Parameters:
//
//	w - the engine's view of the shared state.
//	cfg - the ecosystem constants.
//	pos - cell of the stepping entity.
//
// Returns:
//
//	Outcome - final position and whether the entity survived.
func Step(w World, cfg *Config, pos Position) Outcome {
	g := w.Grid()
	self := g.Get(pos)
	rules := cfg.RulesFor(self.Kind)

	if Terminal(self, rules) {
		g.Clear(pos)
		return Outcome{Pos: pos}
	}

	neighbors := g.Neighbors(pos)

	if prey := self.Kind.Prey(); prey != Empty {
		for _, n := range neighbors {
			if g.Get(n).Kind != prey || w.Float64() >= rules.EatProbability {
				continue
			}
			g.Clear(n)
			w.Removed(n)
			self.Energy = min(self.Energy+rules.EnergyGain, cfg.MaxEnergy)
		}
	}

	free := make([]Position, 0, len(neighbors))
	for _, n := range neighbors {
		if g.Get(n).Kind == Empty {
			free = append(free, n)
		}
	}

	if w.Float64() < rules.ReproductionProbability &&
		(!self.Kind.Animal() || self.Energy > rules.ReproductionThreshold) &&
		len(free) > 0 {
		i := w.IntN(len(free))
		g.Set(free[i], Record{Kind: self.Kind, Energy: rules.StartEnergy})
		w.Spawned(free[i])
		free = append(free[:i], free[i+1:]...)
		if self.Kind.Animal() {
			self.Energy = max(self.Energy-rules.ReproductionCost, 0)
		}
	}

	if self.Kind.Animal() && w.Float64() < rules.MoveProbability && len(free) > 0 {
		to := free[w.IntN(len(free))]
		g.Clear(pos)
		w.Moved(pos, to)
		self.Energy = max(self.Energy-rules.MoveCost, 0)
		pos = to
	}

	self.Age++

	if Terminal(self, rules) {
		g.Clear(pos)
		return Outcome{Pos: pos}
	}
	g.Set(pos, self)
	return Outcome{Pos: pos, Alive: true}
}
