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
	"log"
	"math/rand/v2"
	"time"
)

// DefaultSize is the grid dimension used when none is configured.
const DefaultSize = 15

// Rules are the per-kind constants driving a step.
//
// Fields:
//
//	MaxAge			age at which the entity dies
//	StartEnergy		energy of a newly placed or newborn entity
//	EatProbability		chance of eating each adjacent prey
//	EnergyGain		energy gained per prey eaten
//	ReproductionProbability	chance of reproducing in a round
//	ReproductionThreshold	energy that must be exceeded to reproduce (animals only)
//	ReproductionCost	energy paid by an animal parent
//	MoveProbability		chance of moving in a round (animals only)
//	MoveCost		energy paid per move
type Rules struct {
	MaxAge                  int
	StartEnergy             int
	EatProbability          float64
	EnergyGain              int
	ReproductionProbability float64
	ReproductionThreshold   int
	ReproductionCost        int
	MoveProbability         float64
	MoveCost                int
}

// Config configures an engine.
type Config struct {
	// Size is the grid dimension N; the grid holds N*N cells.
	Size int
	// Seed seeds the engine's random source.
	Seed uint64
	// MaxEnergy caps the energy of every living entity.
	MaxEnergy int

	Plant     Rules
	Herbivore Rules
	Carnivore Rules

	// RoundTimeout bounds how long a round may take before the engine
	// aborts with a diagnostic. Zero waits forever.
	RoundTimeout time.Duration

	// Logger receives lifecycle messages. Nil uses log.Default().
	Logger *log.Logger
}

// DefaultConfig returns the standard ecosystem: a 15x15 grid with the
// plant, herbivore and carnivore constants of the simulation.
func DefaultConfig() Config {
	return Config{
		Size:      DefaultSize,
		MaxEnergy: 200,
		Plant: Rules{
			MaxAge:                  10,
			StartEnergy:             100,
			ReproductionProbability: 0.2,
		},
		Herbivore: Rules{
			MaxAge:                  50,
			StartEnergy:             100,
			EatProbability:          0.9,
			EnergyGain:              30,
			ReproductionProbability: 0.075,
			ReproductionThreshold:   20,
			ReproductionCost:        10,
			MoveProbability:         0.7,
			MoveCost:                5,
		},
		Carnivore: Rules{
			MaxAge:                  80,
			StartEnergy:             100,
			EatProbability:          1.0,
			EnergyGain:              20,
			ReproductionProbability: 0.025,
			ReproductionThreshold:   20,
			ReproductionCost:        10,
			MoveProbability:         0.5,
			MoveCost:                5,
		},
	}
}

// RulesFor returns the rules of a living kind.
func (c *Config) RulesFor(k Kind) *Rules {
	switch k {
	case Plant:
		return &c.Plant
	case Herbivore:
		return &c.Herbivore
	case Carnivore:
		return &c.Carnivore
	}
	panic(fmt.Sprintf("ecosystem: no rules for kind %v", k))
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("ecosystem: grid size must be positive, got %d", c.Size)
	}
	if c.MaxEnergy <= 0 {
		return fmt.Errorf("ecosystem: max energy must be positive, got %d", c.MaxEnergy)
	}
	var errs []error
	for _, k := range []Kind{Plant, Herbivore, Carnivore} {
		if err := c.RulesFor(k).validate(c.MaxEnergy); err != nil {
			errs = append(errs, fmt.Errorf("ecosystem: %s rules: %w", kindNames[k], err))
		}
	}
	return errors.Join(errs...)
}

var kindNames = map[Kind]string{
	Plant:     "plant",
	Herbivore: "herbivore",
	Carnivore: "carnivore",
}

func (r *Rules) validate(maxEnergy int) error {
	switch {
	case r.MaxAge <= 0:
		return fmt.Errorf("max age must be positive, got %d", r.MaxAge)
	case r.StartEnergy <= 0 || r.StartEnergy > maxEnergy:
		return fmt.Errorf("start energy must be in (0,%d], got %d", maxEnergy, r.StartEnergy)
	case r.EnergyGain < 0 || r.ReproductionCost < 0 || r.MoveCost < 0:
		return errors.New("energy gains and costs must not be negative")
	}
	for _, p := range []float64{r.EatProbability, r.ReproductionProbability, r.MoveProbability} {
		if p < 0 || p > 1 {
			return fmt.Errorf("probability %v outside [0,1]", p)
		}
	}
	return nil
}

// NewRand returns the seeded random source engines draw from.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// LoggerOrDefault returns c.Logger, or the standard logger when unset.
func (c *Config) LoggerOrDefault() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}
