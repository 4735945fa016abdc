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

import "fmt"

// Grid is a fixed size square of cells, each holding at most one entity.
// It has no locking of its own: callers mutate it only while holding their
// engine's exclusivity token.
type Grid struct {
	size  int
	cells []Record
}

// NewGrid returns an all-empty size x size grid.
func NewGrid(size int) *Grid {
	return &Grid{
		size:  size,
		cells: make([]Record, size*size),
	}
}

// Size returns the grid dimension.
func (g *Grid) Size() int {
	return g.size
}

// InBounds reports whether p addresses a cell of the grid.
func (g *Grid) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < g.size && p.Col >= 0 && p.Col < g.size
}

// Index returns the row-major offset of p. p must be in bounds.
func (g *Grid) Index(p Position) int {
	if !g.InBounds(p) {
		panic(fmt.Sprintf("ecosystem: position %v outside %dx%d grid", p, g.size, g.size))
	}
	return p.Row*g.size + p.Col
}

// Get returns the record at p.
func (g *Grid) Get(p Position) Record {
	return g.cells[g.Index(p)]
}

// Set writes r at p. Writing a record that breaks the empty-cell invariant
// is a logic error and panics.
func (g *Grid) Set(p Position, r Record) {
	if !r.Valid() {
		panic(fmt.Sprintf("ecosystem: invalid record %+v written at %v", r, p))
	}
	g.cells[g.Index(p)] = r
}

// Clear empties the cell at p.
func (g *Grid) Clear(p Position) {
	g.cells[g.Index(p)] = Record{}
}

// Neighbors returns the in-bounds cells directly above, below, left and
// right of p, in that order. The grid does not wrap: edge cells have three
// neighbors and corner cells two.
//
// Parameters:
//
//	p - the cell whose neighborhood is enumerated.
//
// Returns:
//
//	[]Position - in-bounds neighbors; never contains negative or >= size coordinates.
func (g *Grid) Neighbors(p Position) []Position {
	candidates := [4]Position{
		{Row: p.Row - 1, Col: p.Col},
		{Row: p.Row + 1, Col: p.Col},
		{Row: p.Row, Col: p.Col - 1},
		{Row: p.Row, Col: p.Col + 1},
	}
	neighbors := make([]Position, 0, len(candidates))
	for _, c := range candidates {
		if g.InBounds(c) {
			neighbors = append(neighbors, c)
		}
	}
	return neighbors
}

// Reset empties every cell.
func (g *Grid) Reset() {
	clear(g.cells)
}

// Census counts the living entities on the grid.
func (g *Grid) Census() Census {
	var c Census
	for _, r := range g.cells {
		c.add(r.Kind)
	}
	return c
}

// Snapshot returns a deep copy of the grid as rows of records.
func (g *Grid) Snapshot() Snapshot {
	snap := make(Snapshot, g.size)
	for row := range snap {
		snap[row] = make([]Record, g.size)
		copy(snap[row], g.cells[row*g.size:(row+1)*g.size])
	}
	return snap
}

// Census holds per-kind population counts.
type Census struct {
	Plants     int
	Herbivores int
	Carnivores int
}

func (c *Census) add(k Kind) {
	switch k {
	case Plant:
		c.Plants++
	case Herbivore:
		c.Herbivores++
	case Carnivore:
		c.Carnivores++
	}
}

// Total returns the number of living entities counted.
func (c Census) Total() int {
	return c.Plants + c.Herbivores + c.Carnivores
}

// Snapshot is an immutable copy of the grid: size rows of size records.
// It encodes to JSON as an array of rows of {"type","energy","age"} objects.
type Snapshot [][]Record

// At returns the record at p.
func (s Snapshot) At(p Position) Record {
	return s[p.Row][p.Col]
}

// Census counts the living entities in the snapshot.
func (s Snapshot) Census() Census {
	var c Census
	for _, row := range s {
		for _, r := range row {
			c.add(r.Kind)
		}
	}
	return c
}
