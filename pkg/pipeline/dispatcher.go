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

package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trapwatch/trapwatch/pkg/history"
	"github.com/trapwatch/trapwatch/pkg/logger"
)

var (
	errNilGate       = errors.New("dispatcher requires a gate")
	errNilClassifier = errors.New("dispatcher requires a classifier")
	errNilLogger     = errors.New("dispatcher requires a logger")
)

// Actuator fires side effects (sound, plug control) after a detection. It
// is fire-and-forget: no error return, and a panic never leaves the job.
type Actuator interface {
	Trigger(ctx context.Context, path string, score float64)
}

// ActuatorFunc adapts a function to the Actuator interface.
type ActuatorFunc func(ctx context.Context, path string, score float64)

func (f ActuatorFunc) Trigger(ctx context.Context, path string, score float64) {
	f(ctx, path, score)
}

// Recorder receives the outcome of every completed classification.
type Recorder interface {
	Record(ctx context.Context, d history.Detection) error
}

// DispatcherOptions carries the dispatcher collaborators. Actuator and
// Recorder are optional.
type DispatcherOptions struct {
	Gate       *Gate
	Classifier Classifier
	Actuator   Actuator
	Recorder   Recorder
	Threshold  float64
	Logger     logger.Logger
}

// Dispatcher runs one classification job per stable file. Jobs are spawned
// onto their own goroutines, serialized through the gate, and never
// cancelled once started; a failing job terminates only itself.
type Dispatcher struct {
	gate       *Gate
	classifier Classifier
	actuator   Actuator
	recorder   Recorder
	threshold  float64
	logger     logger.Logger

	wg sync.WaitGroup
}

func NewDispatcher(opts DispatcherOptions) (*Dispatcher, error) {
	switch {
	case opts.Gate == nil:
		return nil, errNilGate
	case opts.Classifier == nil:
		return nil, errNilClassifier
	case opts.Logger == nil:
		return nil, errNilLogger
	}

	return &Dispatcher{
		gate:       opts.Gate,
		classifier: opts.Classifier,
		actuator:   opts.Actuator,
		recorder:   opts.Recorder,
		threshold:  opts.Threshold,
		logger:     opts.Logger,
	}, nil
}

// Dispatch starts a classification job for path and returns immediately.
func (d *Dispatcher) Dispatch(path string) {
	jobID := uuid.New().String()

	d.wg.Add(1)

	go d.run(jobID, path)
}

// Wait blocks until every in-flight job has finished. Used on shutdown and
// in tests; the observers never call it.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) run(jobID, path string) {
	defer d.wg.Done()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().
				Interface("panic", r).
				Str("job_id", jobID).
				Str("file", path).
				Msg("classification job panicked")
		}
	}()

	// In-flight jobs run to completion; the classifier applies its own
	// timeout.
	ctx := context.Background()

	score, elapsed, waited, err := d.classify(ctx, path)
	if err != nil {
		d.logger.Warn().
			Err(err).
			Str("job_id", jobID).
			Str("file", path).
			Msg("classification failed")

		return
	}

	triggered := score >= d.threshold

	d.logger.Info().
		Str("job_id", jobID).
		Str("file", path).
		Float64("score", score).
		Bool("triggered", triggered).
		Dur("elapsed", elapsed).
		Dur("waited", waited).
		Msg("classification complete")

	if triggered && d.actuator != nil {
		d.actuate(ctx, jobID, path, score)
	}

	if d.recorder != nil {
		detection := history.Detection{
			ID:        jobID,
			File:      path,
			Score:     score,
			Duration:  elapsed,
			Triggered: triggered,
			Timestamp: time.Now().UTC(),
		}

		if err := d.recorder.Record(ctx, detection); err != nil {
			d.logger.Error().
				Err(err).
				Str("job_id", jobID).
				Msg("failed to record detection")
		}
	}
}

// classify holds the gate only for the classification call itself;
// actuation and recording run after release.
func (d *Dispatcher) classify(ctx context.Context, path string) (score float64, elapsed, waited time.Duration, err error) {
	slot := d.gate.Acquire()
	defer slot.Release()

	start := time.Now()
	score, err = d.classifier.Classify(ctx, path)

	return score, time.Since(start), slot.Waited(), err
}

func (d *Dispatcher) actuate(ctx context.Context, jobID, path string, score float64) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().
				Interface("panic", r).
				Str("job_id", jobID).
				Msg("actuator panicked")
		}
	}()

	d.actuator.Trigger(ctx, path, score)
}

// LogActuator is the default actuation sink: it only logs. Real deployments
// hang sound or relay control off the same interface.
type LogActuator struct {
	Logger logger.Logger
}

var _ Actuator = (*LogActuator)(nil)

func (a *LogActuator) Trigger(_ context.Context, path string, score float64) {
	a.Logger.Info().
		Str("file", path).
		Float64("score", score).
		Msg("detection actuation triggered")
}
