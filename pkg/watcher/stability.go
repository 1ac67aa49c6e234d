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

package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trapwatch/trapwatch/pkg/logger"
)

// ErrInvalidStabilityTimeout is returned when the stability wait is called
// with a non-positive timeout. This is a caller error, not a transient
// condition.
var ErrInvalidStabilityTimeout = errors.New("stability timeout must be positive")

// WaitForStability blocks until no process holds path open, polling every
// interval. It reports false when the timeout window is exhausted with the
// file still open. A checker error is treated as the facility being
// temporarily unavailable and retried, not surfaced as failure. The check
// runs before the first sleep, so a file that is already closed confirms on
// the first attempt.
func WaitForStability(ctx context.Context, checker Checker, path string, timeout, interval time.Duration, log logger.Logger) (bool, error) {
	if timeout <= 0 {
		return false, fmt.Errorf("%w: got %v", ErrInvalidStabilityTimeout, timeout)
	}

	deadline := time.Now().Add(timeout)

	for {
		inUse, err := checker.InUse(ctx, path)
		if err != nil {
			log.Debug().
				Err(err).
				Str("file", path).
				Msg("Open-file query unavailable, retrying")
		} else if !inUse {
			return true, nil
		}

		if time.Now().After(deadline) {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(interval):
		}
	}
}
