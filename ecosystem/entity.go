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

// Package ecosystem holds the grid, the entity records and the per-kind rules
// shared by the concurrent and sequential predator-prey engines.
package ecosystem

import (
	"encoding/json"
	"fmt"
)

// Kind identifies what occupies a cell.
type Kind uint8

const (
	Empty Kind = iota
	Plant
	Herbivore
	Carnivore
)

var kindTokens = [...]string{
	Empty:     " ",
	Plant:     "P",
	Herbivore: "H",
	Carnivore: "C",
}

// String returns the single character token used in snapshots.
func (k Kind) String() string {
	if int(k) < len(kindTokens) {
		return kindTokens[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Alive reports whether k is a living entity.
func (k Kind) Alive() bool {
	return k == Plant || k == Herbivore || k == Carnivore
}

// Animal reports whether k eats, moves and spends energy.
func (k Kind) Animal() bool {
	return k == Herbivore || k == Carnivore
}

// Prey returns the kind k eats, or Empty for kinds that do not eat.
func (k Kind) Prey() Kind {
	switch k {
	case Herbivore:
		return Plant
	case Carnivore:
		return Herbivore
	}
	return Empty
}

// MarshalJSON encodes the kind as its snapshot token.
func (k Kind) MarshalJSON() ([]byte, error) {
	if int(k) >= len(kindTokens) {
		return nil, fmt.Errorf("ecosystem: cannot encode kind %d", uint8(k))
	}
	return json.Marshal(kindTokens[k])
}

// UnmarshalJSON decodes a snapshot token.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return err
	}
	for i, t := range kindTokens {
		if t == token {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("ecosystem: unknown kind token %q", token)
}

// Record is the state held by one grid cell.
//
// Fields:
//
//	Kind	what occupies the cell
//	Energy	consumed by moving and reproducing, gained by eating
//	Age	rounds survived
//
// A record is empty exactly when Kind is Empty, Energy is 0 and Age is 0.
type Record struct {
	Kind   Kind `json:"type"`
	Energy int  `json:"energy"`
	Age    int  `json:"age"`
}

// Valid reports whether r satisfies the empty-cell invariant.
func (r Record) Valid() bool {
	if r.Kind == Empty {
		return r.Energy == 0 && r.Age == 0
	}
	return r.Kind.Alive() && r.Energy >= 0 && r.Age >= 0 && (r.Energy != 0 || r.Age != 0)
}

// Position addresses a cell. Rows and columns are 0-indexed.
type Position struct {
	Row int
	Col int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}
