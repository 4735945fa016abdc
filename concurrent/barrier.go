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

package ecoconcurrent

import (
	"fmt"
	"sync/atomic"
	"time"
)

// barrier is the single-use rendezvous of one round. It is sized to the
// population at the start of the round and opens once every counted task
// has arrived, either after its transition or after terminating.
//
// Fields:
//
//	round	round number the barrier belongs to
//	total	number of arrivals required
//	pending	arrivals still outstanding
//	done	closed when pending reaches zero
type barrier struct {
	round   uint64
	total   int64
	pending atomic.Int64
	done    chan struct{}
}

// newBarrier creates the barrier for a round with n participants.
// A barrier with no participants is open immediately.
func newBarrier(round uint64, n int) *barrier {
	b := &barrier{
		round: round,
		total: int64(n),
		done:  make(chan struct{}),
	}
	b.pending.Store(int64(n))
	if n == 0 {
		close(b.done)
	}
	return b
}

// arrive records one participant reaching the end of its round.
// Arriving more often than the barrier was sized for is a lifecycle bug.
func (b *barrier) arrive() {
	switch left := b.pending.Add(-1); {
	case left == 0:
		close(b.done)
	case left < 0:
		panic(fmt.Sprintf("ecoconcurrent: round %d barrier sized %d received an extra arrival", b.round, b.total))
	}
}

// wait blocks until every participant has arrived. With a positive timeout
// it gives up after that long and reports how many participants are missing.
//
// Parameters:
//
//	timeout - maximum wait; zero or negative waits forever.
//
// Returns:
//
//	error - nil once the barrier opens, otherwise a stall diagnostic.
func (b *barrier) wait(timeout time.Duration) error {
	if timeout <= 0 {
		<-b.done
		return nil
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-b.done:
		return nil
	case <-timer.C:
		return fmt.Errorf("round %d stalled after %s: %d of %d tasks never arrived",
			b.round, timeout, b.pending.Load(), b.total)
	}
}
