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
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/trapwatch/trapwatch/pkg/logger"
)

var (
	errEmptyClassifierCommand = errors.New("classifier command is empty")
	errScoreOutOfRange        = errors.New("classifier score outside [0,1]")
)

// Classifier scores a captured file. The inference itself is an external
// collaborator; only the score in [0,1] crosses this boundary.
type Classifier interface {
	Classify(ctx context.Context, path string) (float64, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, path string) (float64, error)

func (f ClassifierFunc) Classify(ctx context.Context, path string) (float64, error) {
	return f(ctx, path)
}

// ExecClassifier bridges to an external classifier process: it runs the
// configured command with the file path appended and parses a single float
// score from stdout.
type ExecClassifier struct {
	command []string
	timeout time.Duration
	logger  logger.Logger
}

var _ Classifier = (*ExecClassifier)(nil)

func NewExecClassifier(command []string, timeout time.Duration, log logger.Logger) (*ExecClassifier, error) {
	if len(command) == 0 {
		return nil, errEmptyClassifierCommand
	}

	return &ExecClassifier{
		command: command,
		timeout: timeout,
		logger:  log,
	}, nil
}

func (c *ExecClassifier) Classify(ctx context.Context, path string) (float64, error) {
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := make([]string, 0, len(c.command))
	args = append(args, c.command[1:]...)
	args = append(args, path)

	cmd := exec.CommandContext(runCtx, c.command[0], args...)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("classifier command failed: %w", err)
	}

	raw := strings.TrimSpace(string(output))

	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("classifier output %q is not a score: %w", raw, err)
	}

	if score < 0 || score > 1 {
		return 0, fmt.Errorf("%w: %v", errScoreOutOfRange, score)
	}

	return score, nil
}
