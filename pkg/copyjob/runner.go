// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package copyjob

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// 🎯 Operation is a unit of background work
type Operation interface {
	Execute(ctx context.Context) error
}

// cancellable operations can be woken while waiting for a slot
type cancellable interface {
	CancelRequested() <-chan struct{}
}

// 🚀 Launcher starts an operation without waiting for it
type Launcher interface {
	Launch(ctx context.Context, op Operation)
}

// 🏃 OperationRunner launches every operation on its own goroutine,
// optionally capped to a number of concurrent executions
type OperationRunner struct {
	slots *semaphore.Weighted
}

// 🏗️ NewRunner creates a runner, maxConcurrent <= 0 means unbounded
func NewRunner(maxConcurrent int64) *OperationRunner {
	r := &OperationRunner{}
	if maxConcurrent > 0 {
		r.slots = semaphore.NewWeighted(maxConcurrent)
	}
	return r
}

// Launch implements Launcher
func (r *OperationRunner) Launch(ctx context.Context, op Operation) {
	go r.run(ctx, op)
}

func (r *OperationRunner) run(ctx context.Context, op Operation) {
	logger := zerolog.Ctx(ctx)

	if r.slots != nil {
		acquired := r.acquire(ctx, op)
		if acquired {
			defer r.slots.Release(1)
		}
		// without a slot the operation only gets to observe its cancellation
	}

	if err := op.Execute(ctx); err != nil {
		logger.Debug().Err(err).Msg("operation finished with error")
	}
}

// acquire waits for a slot until ctx is done or the operation is cancelled
func (r *OperationRunner) acquire(ctx context.Context, op Operation) bool {
	waitCtx, stop := context.WithCancel(ctx)
	defer stop()

	if c, ok := op.(cancellable); ok {
		go func() {
			select {
			case <-c.CancelRequested():
				stop()
			case <-waitCtx.Done():
			}
		}()
	}

	return r.slots.Acquire(waitCtx, 1) == nil
}
