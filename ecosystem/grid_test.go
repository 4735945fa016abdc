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
	"encoding/json"
	"reflect"
	"testing"
)

func TestNeighbors(t *testing.T) {
	g := NewGrid(DefaultSize)
	tests := []struct {
		name string
		pos  Position
		want []Position
	}{
		{"top-left corner", Position{0, 0}, []Position{{1, 0}, {0, 1}}},
		{"bottom-right corner", Position{14, 14}, []Position{{13, 14}, {14, 13}}},
		{"top edge", Position{0, 7}, []Position{{1, 7}, {0, 6}, {0, 8}}},
		{"left edge", Position{7, 0}, []Position{{6, 0}, {8, 0}, {7, 1}}},
		{"interior", Position{7, 7}, []Position{{6, 7}, {8, 7}, {7, 6}, {7, 8}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Neighbors(tt.pos)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Neighbors(%v) = %v, want %v", tt.pos, got, tt.want)
			}
			for _, n := range got {
				if !g.InBounds(n) {
					t.Errorf("neighbor %v of %v is out of bounds", n, tt.pos)
				}
			}
		})
	}
}

func TestInBounds(t *testing.T) {
	g := NewGrid(3)
	for _, p := range []Position{{-1, 0}, {0, -1}, {3, 0}, {0, 3}, {-1, -1}} {
		if g.InBounds(p) {
			t.Errorf("InBounds(%v) = true, want false", p)
		}
	}
	if !g.InBounds(Position{2, 2}) {
		t.Error("InBounds((2,2)) = false, want true")
	}
}

func TestSetRejectsInvalidRecord(t *testing.T) {
	g := NewGrid(3)
	for _, r := range []Record{
		{Kind: Empty, Energy: 5},
		{Kind: Plant},
		{Kind: Herbivore, Energy: -1, Age: 2},
		{Kind: Kind(9), Energy: 1},
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Set(%+v) did not panic", r)
				}
			}()
			g.Set(Position{1, 1}, r)
		}()
	}
}

func TestGetOutOfBoundsPanics(t *testing.T) {
	g := NewGrid(3)
	defer func() {
		if recover() == nil {
			t.Error("Get((-1,0)) did not panic")
		}
	}()
	g.Get(Position{-1, 0})
}

func TestSnapshotIsCopy(t *testing.T) {
	g := NewGrid(4)
	g.Set(Position{1, 2}, Record{Kind: Herbivore, Energy: 100})
	snap := g.Snapshot()
	g.Clear(Position{1, 2})

	if got := snap.At(Position{1, 2}); got.Kind != Herbivore || got.Energy != 100 {
		t.Errorf("snapshot changed with grid: %+v", got)
	}
	if len(snap) != 4 || len(snap[0]) != 4 {
		t.Errorf("snapshot is %dx%d, want 4x4", len(snap), len(snap[0]))
	}
}

func TestCensus(t *testing.T) {
	g := NewGrid(5)
	g.Set(Position{0, 0}, Record{Kind: Plant, Energy: 100})
	g.Set(Position{0, 1}, Record{Kind: Plant, Energy: 100})
	g.Set(Position{2, 2}, Record{Kind: Herbivore, Energy: 100})
	g.Set(Position{4, 4}, Record{Kind: Carnivore, Energy: 100})

	want := Census{Plants: 2, Herbivores: 1, Carnivores: 1}
	if got := g.Census(); got != want {
		t.Errorf("grid census = %+v, want %+v", got, want)
	}
	if got := g.Snapshot().Census(); got != want {
		t.Errorf("snapshot census = %+v, want %+v", got, want)
	}
	if want.Total() != 4 {
		t.Errorf("Total() = %d, want 4", want.Total())
	}

	g.Reset()
	if got := g.Census().Total(); got != 0 {
		t.Errorf("census after Reset = %d, want 0", got)
	}
}

func TestSnapshotJSON(t *testing.T) {
	g := NewGrid(2)
	g.Set(Position{0, 1}, Record{Kind: Plant, Energy: 100, Age: 3})
	g.Set(Position{1, 0}, Record{Kind: Carnivore, Energy: 120, Age: 1})

	data, err := json.Marshal(g.Snapshot())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `[[{"type":" ","energy":0,"age":0},{"type":"P","energy":100,"age":3}],` +
		`[{"type":"C","energy":120,"age":1},{"type":" ","energy":0,"age":0}]]`
	if string(data) != want {
		t.Errorf("Marshal = %s\nwant %s", data, want)
	}

	var back Snapshot
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.At(Position{1, 0}).Kind != Carnivore {
		t.Errorf("decoded kind = %v, want C", back.At(Position{1, 0}).Kind)
	}
}

func TestKindTokens(t *testing.T) {
	for k, want := range map[Kind]string{Empty: " ", Plant: "P", Herbivore: "H", Carnivore: "C"} {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
	var k Kind
	if err := json.Unmarshal([]byte(`"X"`), &k); err == nil {
		t.Error("Unmarshal of unknown token succeeded")
	}
}
