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

package bench

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	ecoconcurrent "ecosim/concurrent"
	"ecosim/ecosystem"
	ecosequential "ecosim/sequential"
)

func baseOptions(engine string) Options {
	cfg := ecosystem.DefaultConfig()
	cfg.Seed = 1
	cfg.RoundTimeout = 10 * time.Second
	cfg.Logger = log.New(io.Discard, "", 0)
	return Options{
		Engine:     engine,
		Runs:       3,
		Rounds:     10,
		Plants:     30,
		Herbivores: 15,
		Carnivores: 5,
		Config:     cfg,
	}
}

func sequentialFactory(cfg ecosystem.Config) (Engine, error) { return ecosequential.New(cfg) }
func concurrentFactory(cfg ecosystem.Config) (Engine, error) { return ecoconcurrent.New(cfg) }

func TestRun(t *testing.T) {
	for name, factory := range map[string]Factory{
		"sequential": sequentialFactory,
		"concurrent": concurrentFactory,
	} {
		t.Run(name, func(t *testing.T) {
			results, err := Run(context.Background(), baseOptions(name), factory)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if len(results) != 3 {
				t.Fatalf("got %d results, want 3", len(results))
			}
			for i, r := range results {
				if r.Seed != uint64(1+i) {
					t.Errorf("result %d seed = %d, want %d", i, r.Seed, 1+i)
				}
				if r.Initial != 50 || r.Engine != name || r.Rounds != 10 || r.Grid != 15 {
					t.Errorf("result %d = %+v", i, r)
				}
			}
		})
	}
}

func TestRunPropagatesErrors(t *testing.T) {
	opts := baseOptions("sequential")
	opts.Plants = 500
	_, err := Run(context.Background(), opts, sequentialFactory)
	var verr *ecosystem.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}

	if _, err := Run(context.Background(), Options{}, sequentialFactory); err == nil {
		t.Error("zero runs accepted")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, baseOptions("sequential"), sequentialFactory); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestAppendCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	host := Host{LogicalCPUs: 8, PhysicalCPUs: 4, Model: "test cpu"}
	rows := []Result{{Engine: "sequential", Seed: 1, Grid: 15, Rounds: 10, Initial: 50, Final: 42, Elapsed: 1500 * time.Microsecond}}

	for range 2 {
		if err := AppendCSV(path, rows, host); err != nil {
			t.Fatalf("AppendCSV: %v", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}
	if records[0][0] != "engine" {
		t.Errorf("header = %v", records[0])
	}
	want := []string{"sequential", "1", "15", "10", "50", "42", "1.500", "8", "4", "test cpu"}
	for i, v := range want {
		if records[2][i] != v {
			t.Errorf("column %s = %q, want %q", records[0][i], records[2][i], v)
		}
	}
}
