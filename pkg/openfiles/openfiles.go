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

// Package openfiles answers "does any process hold this file open". The
// folder observer uses it to decide when a freshly captured image has
// finished being written.
package openfiles

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/trapwatch/trapwatch/pkg/logger"
)

// Checker reports whether any process currently holds path open. An error
// means the facility itself is unavailable, not that the file is closed;
// callers treat it as a transient condition.
type Checker interface {
	InUse(ctx context.Context, path string) (bool, error)
}

// ProcChecker walks the process table. Per-process failures are skipped:
// processes vanish mid-scan and foreign processes may refuse inspection.
type ProcChecker struct {
	logger logger.Logger
}

var _ Checker = (*ProcChecker)(nil)

func NewProcChecker(log logger.Logger) *ProcChecker {
	return &ProcChecker{logger: log}
}

func (c *ProcChecker) InUse(ctx context.Context, path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("resolving path: %w", err)
	}

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return false, fmt.Errorf("listing processes: %w", err)
	}

	for _, p := range procs {
		files, err := p.OpenFilesWithContext(ctx)
		if err != nil {
			continue
		}

		for _, f := range files {
			if f.Path == abs {
				return true, nil
			}
		}
	}

	return false, nil
}
