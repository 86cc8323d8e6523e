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
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/camorg/pkg/plan"
	"gitlab.com/tozd/go/errors"
)

// ID identifies a job for its whole lifetime
type ID string

// 📦 Job copies a fixed list of files into target_root/label.
//
// Only the goroutine running Execute writes state and progress. Any
// goroutine may request cancellation, and everyone else reads through
// Snapshot.
type Job struct {
	id         ID
	files      []string
	targetRoot string
	label      string
	notifier   Notifier
	planner    *plan.Planner

	cancelRequested atomic.Bool
	cancelOnce      sync.Once
	cancelCh        chan struct{}
	finishOnce      sync.Once
	finished        chan struct{}

	mu             sync.Mutex
	state          State
	filesCompleted int
	errMsg         string
	submittedAt    time.Time
	startedAt      time.Time
	finishedAt     time.Time
}

// 🏭 newJob creates a queued job, the file list is copied
func newJob(files []string, targetRoot, label string, notifier Notifier) (*Job, error) {
	if len(files) == 0 {
		return nil, errors.Errorf("%w: no files to copy", ErrInvalidRequest)
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Job{
		files:       append([]string(nil), files...),
		targetRoot:  targetRoot,
		label:       label,
		notifier:    notifier,
		planner:     plan.New(),
		cancelCh:    make(chan struct{}),
		finished:    make(chan struct{}),
		state:       StateQueued,
		submittedAt: time.Now(),
	}, nil
}

// ID returns the registry-assigned identifier
func (j *Job) ID() ID {
	return j.id
}

// Done is closed once the job is terminal and its last event was delivered
func (j *Job) Done() <-chan struct{} {
	return j.finished
}

// CancelRequested is closed when cancellation is first requested
func (j *Job) CancelRequested() <-chan struct{} {
	return j.cancelCh
}

// requestCancel sets the cancellation flag, it reports false when the flag
// was already set
func (j *Job) requestCancel() bool {
	if !j.cancelRequested.CompareAndSwap(false, true) {
		return false
	}
	j.cancelOnce.Do(func() { close(j.cancelCh) })
	return true
}

// 📸 Snapshot copies out a consistent view of the job
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Snapshot{
		ID:              j.id,
		Label:           j.label,
		TargetRoot:      j.targetRoot,
		State:           j.state,
		TotalFiles:      len(j.files),
		FilesCompleted:  j.filesCompleted,
		Error:           j.errMsg,
		CancelRequested: j.cancelRequested.Load(),
		SubmittedAt:     j.submittedAt,
		StartedAt:       j.startedAt,
		FinishedAt:      j.finishedAt,
	}
}

func (j *Job) currentState() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// finishedBefore reports whether the job went terminal before t
func (j *Job) finishedBefore(t time.Time) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state.IsTerminal() && j.finishedAt.Before(t)
}

// 🏃 Execute runs the copy loop. Failures end up in the job state; the
// returned error only mirrors them for the runner's log.
func (j *Job) Execute(ctx context.Context) (err error) {
	logger := zerolog.Ctx(ctx).With().Str("job", string(j.id)).Str("label", j.label).Logger()

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("job panicked: %v", r)
			j.transition(StateFailed, err.Error())
			j.markFinished()
		}
	}()

	if reason, ok := j.shouldStop(ctx); ok {
		logger.Debug().Str("reason", reason).Msg("cancelled before start")
		j.transition(StateCancelled, reason)
		return nil
	}

	j.transition(StateRunning, "")
	logger.Debug().Int("files", len(j.files)).Msg("copy started")

	for _, src := range j.files {
		if reason, ok := j.shouldStop(ctx); ok {
			j.transition(StateCancelled, reason)
			return nil
		}

		dest, err := j.planner.Plan(j.targetRoot, j.label, src)
		if err != nil {
			err = errors.Errorf("planning %s: %w", src, err)
			j.transition(StateFailed, err.Error())
			return err
		}

		if err := copyFile(src, dest); err != nil {
			err = errors.Errorf("copying %s: %w", src, err)
			j.transition(StateFailed, err.Error())
			return err
		}

		completed := j.advance()
		logger.Trace().Str("source", src).Str("destination", dest).Msg("file copied")
		j.notifier.JobProgressed(ProgressEvent{
			JobID:          j.id,
			Label:          j.label,
			FilesCompleted: completed,
			TotalFiles:     len(j.files),
			Source:         src,
			Destination:    dest,
		})
	}

	j.transition(StateCompleted, "")
	return nil
}

func (j *Job) shouldStop(ctx context.Context) (string, bool) {
	if j.cancelRequested.Load() {
		return "cancellation requested", true
	}
	if err := ctx.Err(); err != nil {
		return fmt.Sprintf("context done: %v", err), true
	}
	return "", false
}

func (j *Job) advance() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.filesCompleted++
	return j.filesCompleted
}

// 🔄 transition applies one state machine edge and emits it. Invalid edges
// are ignored, which keeps terminal states absorbing.
func (j *Job) transition(to State, reason string) bool {
	j.mu.Lock()
	from := j.state
	if !canTransition(from, to) {
		j.mu.Unlock()
		return false
	}
	now := time.Now()
	j.state = to
	if to == StateRunning {
		j.startedAt = now
	}
	if to == StateFailed {
		j.errMsg = reason
	}
	if to.IsTerminal() {
		j.finishedAt = now
	}
	j.mu.Unlock()

	j.notifier.JobStateChanged(StateEvent{
		JobID:  j.id,
		Label:  j.label,
		From:   from,
		To:     to,
		Reason: reason,
	})

	if to.IsTerminal() {
		j.markFinished()
	}
	return true
}

func (j *Job) markFinished() {
	j.finishOnce.Do(func() { close(j.finished) })
}
