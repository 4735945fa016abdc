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

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when placing an entity outside the grid.
	ErrOutOfBounds = errors.New("position out of bounds")
	// ErrOccupied is returned when placing an entity on a non-empty cell.
	ErrOccupied = errors.New("cell occupied")
	// ErrNotAlive is returned when placing the Empty kind.
	ErrNotAlive = errors.New("kind is not a living entity")
)

// ValidationError reports a population request the grid cannot hold.
// Nothing is mutated when it is returned.
type ValidationError struct {
	Requested uint64
	Capacity  uint64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("too many entities: %d requested, grid holds %d", e.Requested, e.Capacity)
}
