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

// Package bench runs headless simulations and records how long they take.
package bench

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"golang.org/x/sync/errgroup"

	"ecosim/ecosystem"
)

// Engine is a simulation the benchmark can drive and dispose of.
type Engine interface {
	InitializePopulation(plants, herbivores, carnivores uint) (ecosystem.Snapshot, error)
	AdvanceRound() ecosystem.Snapshot
	Population() int
	Close() error
}

// Factory builds a fresh engine for one run.
type Factory func(cfg ecosystem.Config) (Engine, error)

// Options describe a benchmark.
type Options struct {
	// Engine names the engine in the results.
	Engine string
	// Runs is the number of independent simulations; run i uses seed Config.Seed+i.
	Runs int
	// Rounds is the number of rounds each simulation advances.
	Rounds int
	// Plants, Herbivores and Carnivores are the initial population.
	Plants, Herbivores, Carnivores uint
	// Config is the base configuration of every run.
	Config ecosystem.Config
}

// Result is the outcome of one run.
type Result struct {
	Engine  string
	Seed    uint64
	Grid    int
	Rounds  int
	Initial int
	Final   int
	Elapsed time.Duration
}

// Host describes the machine a benchmark ran on.
type Host struct {
	LogicalCPUs  int
	PhysicalCPUs int
	Model        string
}

// Run executes opts.Runs simulations, at most GOMAXPROCS at a time, and
// returns their results in run order. The first failing run cancels the
// ones not yet started.
//
// Parameters:
//
//	ctx - cancels runs between rounds.
//	opts - what to run.
//	factory - builds the engine of each run.
//
// Returns:
//
//	[]Result - one per run.
//	error - the first run error, or ctx's error.
func Run(ctx context.Context, opts Options, factory Factory) ([]Result, error) {
	if opts.Runs <= 0 || opts.Rounds < 0 {
		return nil, fmt.Errorf("bench: need at least one run and non-negative rounds, got %d runs %d rounds", opts.Runs, opts.Rounds)
	}
	results := make([]Result, opts.Runs)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range opts.Runs {
		g.Go(func() error {
			cfg := opts.Config
			cfg.Seed += uint64(i)
			res, err := runOne(ctx, opts, cfg, factory)
			if err != nil {
				return fmt.Errorf("bench: run %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runOne(ctx context.Context, opts Options, cfg ecosystem.Config, factory Factory) (Result, error) {
	engine, err := factory(cfg)
	if err != nil {
		return Result{}, err
	}
	defer engine.Close()

	if _, err := engine.InitializePopulation(opts.Plants, opts.Herbivores, opts.Carnivores); err != nil {
		return Result{}, err
	}
	res := Result{
		Engine:  opts.Engine,
		Seed:    cfg.Seed,
		Grid:    cfg.Size,
		Rounds:  opts.Rounds,
		Initial: engine.Population(),
	}
	start := time.Now()
	for range opts.Rounds {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		engine.AdvanceRound()
	}
	res.Elapsed = time.Since(start)
	res.Final = engine.Population()
	return res, nil
}

// DescribeHost reads the CPU counts and model of the current machine.
func DescribeHost(ctx context.Context) (Host, error) {
	logical, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return Host{}, fmt.Errorf("bench: counting logical cpus: %w", err)
	}
	physical, err := cpu.CountsWithContext(ctx, false)
	if err != nil {
		return Host{}, fmt.Errorf("bench: counting physical cpus: %w", err)
	}
	h := Host{LogicalCPUs: logical, PhysicalCPUs: physical}
	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		h.Model = infos[0].ModelName
	}
	return h, nil
}

var header = []string{"engine", "seed", "grid", "rounds", "initial", "final", "elapsed_ms", "logical_cpus", "physical_cpus", "cpu_model"}

// AppendCSV appends one row per result to the CSV file at path, creating it
// with a header row if it does not exist or is empty.
func AppendCSV(path string, results []Result, host Host) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("bench: opening %s: %w", path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("bench: stat %s: %w", path, err)
	}

	writer := csv.NewWriter(file)
	if stat.Size() == 0 {
		writer.Write(header)
	}
	for _, r := range results {
		writer.Write([]string{
			r.Engine,
			strconv.FormatUint(r.Seed, 10),
			strconv.Itoa(r.Grid),
			strconv.Itoa(r.Rounds),
			strconv.Itoa(r.Initial),
			strconv.Itoa(r.Final),
			strconv.FormatFloat(float64(r.Elapsed)/float64(time.Millisecond), 'f', 3, 64),
			strconv.Itoa(host.LogicalCPUs),
			strconv.Itoa(host.PhysicalCPUs),
			host.Model,
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("bench: writing %s: %w", path, err)
	}
	return file.Close()
}
