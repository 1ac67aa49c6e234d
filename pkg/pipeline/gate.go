/*
 * Copyright 2025 The Trapwatch Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package pipeline runs the single-slot classification pipeline: one global
// gate caps in-flight classification at exactly one operation, and the
// dispatcher pushes each stable file through it on its own goroutine.
package pipeline

import (
	"sync"
	"time"

	"github.com/trapwatch/trapwatch/pkg/logger"
)

// Gate serializes access to the classification resource across every
// observed folder. Acquire blocks with no timeout and no cancellation; this
// is deliberate admission control for constrained hardware, not an
// oversight.
type Gate struct {
	mu     sync.Mutex
	logger logger.Logger
}

func NewGate(log logger.Logger) *Gate {
	return &Gate{logger: log}
}

// Acquire blocks until the slot is free and returns the held slot with its
// acquisition instant stamped.
func (g *Gate) Acquire() *Slot {
	start := time.Now()

	g.mu.Lock()

	waited := time.Since(start)

	g.logger.Debug().
		Dur("waited", waited).
		Msg("classification slot acquired")

	return &Slot{
		gate:       g,
		acquiredAt: time.Now(),
		waited:     waited,
	}
}

// Slot is a held gate. Callers must release exactly once, via defer at the
// acquisition site; a second Release inherits the underlying mutex's
// unlock-of-unlocked fault.
type Slot struct {
	gate   *Gate
	waited time.Duration

	mu         sync.Mutex
	acquiredAt time.Time
}

// Release frees the gate and clears the acquisition instant.
func (s *Slot) Release() {
	s.mu.Lock()
	held := time.Since(s.acquiredAt)
	s.acquiredAt = time.Time{}
	s.mu.Unlock()

	s.gate.logger.Debug().
		Dur("held", held).
		Msg("classification slot released")

	s.gate.mu.Unlock()
}

// HeldFor returns the elapsed time since acquisition, or zero when the slot
// is no longer held.
func (s *Slot) HeldFor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.acquiredAt.IsZero() {
		return 0
	}

	return time.Since(s.acquiredAt)
}

// Waited reports how long the caller blocked before acquiring.
func (s *Slot) Waited() time.Duration {
	return s.waited
}
