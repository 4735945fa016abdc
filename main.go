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

// Predator-prey simulation in Go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"ecosim/bench"
	ecoconcurrent "ecosim/concurrent"
	"ecosim/ecosystem"
	"ecosim/gateway"
	ecosequential "ecosim/sequential"
)

var (
	addr      = flag.String("addr", ":8080", "address the HTTP gateway listens on")
	engine    = flag.String("engine", "concurrent", "simulation engine: concurrent or sequential")
	seed      = flag.Uint64("seed", 0, "random seed; 0 picks one from the clock")
	staticDir = flag.String("static", "", "directory of static files served under /")
	timeout   = flag.Duration("round-timeout", 30*time.Second, "abort when a round takes longer than this; 0 disables")

	benchRounds = flag.Int("bench", 0, "run a headless benchmark of this many rounds instead of serving")
	benchRuns   = flag.Int("bench-runs", 4, "independent simulations per benchmark")
	benchOut    = flag.String("bench-out", "simulation_results.csv", "CSV file benchmark results are appended to")
	plants      = flag.Uint("plants", 60, "benchmark initial plants")
	herbivores  = flag.Uint("herbivores", 30, "benchmark initial herbivores")
	carnivores  = flag.Uint("carnivores", 10, "benchmark initial carnivores")
)

// factory returns the constructor of the named engine.
//
// Parameters:
//
//	name - "concurrent" or "sequential".
//
// Returns:
//
//	bench.Factory - builds a fresh engine from a configuration.
//	error - if name is unknown.
func factory(name string) (bench.Factory, error) {
	switch name {
	case "concurrent":
		return func(cfg ecosystem.Config) (bench.Engine, error) { return ecoconcurrent.New(cfg) }, nil
	case "sequential":
		return func(cfg ecosystem.Config) (bench.Engine, error) { return ecosequential.New(cfg) }, nil
	}
	return nil, fmt.Errorf("unknown engine %q", name)
}

func main() {
	flag.Parse()

	cfg := ecosystem.DefaultConfig()
	cfg.Seed = *seed
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	cfg.RoundTimeout = *timeout

	newEngine, err := factory(*engine)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *benchRounds > 0 {
		runBench(ctx, cfg, newEngine)
		return
	}

	sim, err := newEngine(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer sim.Close()

	server := &http.Server{
		Addr:              *addr,
		Handler:           gateway.New(sim, cfg.LoggerOrDefault(), *staticDir),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("%s simulation (seed %d) listening on %s", *engine, cfg.Seed, *addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// runBench runs the headless benchmark and appends its results to the CSV file.
func runBench(ctx context.Context, cfg ecosystem.Config, newEngine bench.Factory) {
	// Quiet the per-run initialisation messages.
	cfg.Logger = log.New(io.Discard, "", 0)

	start := time.Now()
	results, err := bench.Run(ctx, bench.Options{
		Engine:     *engine,
		Runs:       *benchRuns,
		Rounds:     *benchRounds,
		Plants:     *plants,
		Herbivores: *herbivores,
		Carnivores: *carnivores,
		Config:     cfg,
	}, newEngine)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Elapsed time for %d runs of %d rounds : %s", *benchRuns, *benchRounds, time.Since(start))

	host, err := bench.DescribeHost(ctx)
	if err != nil {
		log.Printf("host description unavailable: %v", err)
	}
	if err := bench.AppendCSV(*benchOut, results, host); err != nil {
		log.Fatal(err)
	}
}
