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

import "math/rand/v2"

// Placement is one entity of an initial population.
type Placement struct {
	Pos  Position
	Kind Kind
}

// Layout picks a distinct, uniformly random cell for every requested entity.
// All cells are shuffled and taken in order, plants first, then herbivores,
// then carnivores, so no two entities share a cell.
//
// Parameters:
//
//	rng - random source, drawn from by the caller's exclusivity discipline.
//	size - grid dimension.
//	plants, herbivores, carnivores - requested counts.
//
// Returns:
//
//	[]Placement - one entry per requested entity.
//	error - *ValidationError when the request exceeds size*size. rng is not drawn from.
func Layout(rng *rand.Rand, size int, plants, herbivores, carnivores uint) ([]Placement, error) {
	capacity := uint64(size) * uint64(size)
	var requested uint64
	for _, n := range []uint{plants, herbivores, carnivores} {
		if uint64(n) > capacity-requested {
			return nil, &ValidationError{Requested: saturatingSum(plants, herbivores, carnivores), Capacity: capacity}
		}
		requested += uint64(n)
	}

	coords := make([]Position, 0, capacity)
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			coords = append(coords, Position{Row: row, Col: col})
		}
	}
	rng.Shuffle(len(coords), func(i, j int) {
		coords[i], coords[j] = coords[j], coords[i]
	})

	layout := make([]Placement, 0, requested)
	next := 0
	for _, group := range []struct {
		kind  Kind
		count uint
	}{{Plant, plants}, {Herbivore, herbivores}, {Carnivore, carnivores}} {
		for i := uint(0); i < group.count; i++ {
			layout = append(layout, Placement{Pos: coords[next], Kind: group.kind})
			next++
		}
	}
	return layout, nil
}

func saturatingSum(counts ...uint) uint64 {
	var sum uint64
	for _, n := range counts {
		if uint64(n) > ^uint64(0)-sum {
			return ^uint64(0)
		}
		sum += uint64(n)
	}
	return sum
}
