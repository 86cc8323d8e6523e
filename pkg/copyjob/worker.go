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
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📝 Request describes one copy job
type Request struct {
	// Files are copied in this order
	Files []string
	// TargetRoot is created if missing and must be writable
	TargetRoot string
	// Label becomes the folder under TargetRoot
	Label string
}

// 🔧 Options configures a Worker
type Options struct {
	// Notifier receives every job event, defaults to NopNotifier
	Notifier Notifier
	// Launcher starts job execution, defaults to a runner bounded by MaxConcurrent
	Launcher Launcher
	// MaxConcurrent caps running jobs when Launcher is nil, 0 means no cap
	MaxConcurrent int64
}

// 👷 Worker accepts copy requests and runs each as an independent job
type Worker struct {
	ctx      context.Context
	registry *Registry
	notifier Notifier
	launcher Launcher
}

// 🏭 NewWorker creates a worker. Jobs execute under ctx, so cancelling it
// stops every job at its next file boundary.
func NewWorker(ctx context.Context, opts Options) *Worker {
	w := &Worker{
		ctx:      ctx,
		registry: NewRegistry(),
		notifier: opts.Notifier,
		launcher: opts.Launcher,
	}
	if w.notifier == nil {
		w.notifier = NopNotifier{}
	}
	if w.launcher == nil {
		w.launcher = NewRunner(opts.MaxConcurrent)
	}
	return w
}

// 📥 Submit validates the request, registers a job and launches it. It
// never waits for copy I/O.
func (w *Worker) Submit(ctx context.Context, req Request) (ID, error) {
	label, err := validateRequest(req)
	if err != nil {
		return "", err
	}

	job, err := newJob(req.Files, req.TargetRoot, label, w.notifier)
	if err != nil {
		return "", err
	}

	id := w.registry.Register(job)
	zerolog.Ctx(ctx).Debug().
		Str("job", string(id)).
		Str("label", label).
		Str("target", req.TargetRoot).
		Int("files", len(req.Files)).
		Msg("job submitted")

	w.launcher.Launch(w.ctx, job)
	return id, nil
}

// Cancel requests cooperative cancellation
func (w *Worker) Cancel(id ID) error {
	return w.registry.Cancel(id)
}

// CancelAll requests cancellation of every queued or running job and
// returns how many were asked
func (w *Worker) CancelAll() int {
	n := 0
	for _, snap := range w.registry.List() {
		if err := w.registry.Cancel(snap.ID); err == nil {
			n++
		}
	}
	return n
}

// Status returns a snapshot of one job
func (w *Worker) Status(id ID) (Snapshot, error) {
	return w.registry.Get(id)
}

// List returns snapshots of every tracked job in submission order
func (w *Worker) List() []Snapshot {
	return w.registry.List()
}

// ActiveCount returns the number of queued or running jobs
func (w *Worker) ActiveCount() int {
	return w.registry.ActiveCount()
}

// Prune removes jobs that have been terminal for longer than olderThan
func (w *Worker) Prune(olderThan time.Duration) int {
	return w.registry.Prune(olderThan)
}

// Remove drops one terminal job from the registry
func (w *Worker) Remove(id ID) error {
	return w.registry.Remove(id)
}

// ⏳ Wait blocks until the job is terminal and all of its events were
// delivered, or until ctx is done
func (w *Worker) Wait(ctx context.Context, id ID) (Snapshot, error) {
	job, err := w.registry.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}

	select {
	case <-job.Done():
		return job.Snapshot(), nil
	case <-ctx.Done():
		return job.Snapshot(), errors.Errorf("waiting for %s: %w", id, ctx.Err())
	}
}

// 🧹 RunPruner prunes every interval until ctx is done
func (w *Worker) RunPruner(ctx context.Context, every, olderThan time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := w.Prune(olderThan); n > 0 {
				zerolog.Ctx(ctx).Debug().Int("removed", n).Msg("pruned finished jobs")
			}
		}
	}
}

// validateRequest returns the trimmed label
func validateRequest(req Request) (string, error) {
	if len(req.Files) == 0 {
		return "", errors.Errorf("%w: no files to copy", ErrInvalidRequest)
	}
	for i, f := range req.Files {
		if strings.TrimSpace(f) == "" {
			return "", errors.Errorf("%w: file %d has an empty path", ErrInvalidRequest, i)
		}
	}

	label := strings.TrimSpace(req.Label)
	if label == "" {
		return "", errors.Errorf("%w: label is empty", ErrInvalidRequest)
	}
	if label == "." || label == ".." || strings.ContainsAny(label, `/\`) {
		return "", errors.Errorf("%w: label %q is not a single folder name", ErrInvalidRequest, label)
	}

	if strings.TrimSpace(req.TargetRoot) == "" {
		return "", errors.Errorf("%w: target root is empty", ErrInvalidRequest)
	}
	if err := checkWritable(req.TargetRoot); err != nil {
		return "", errors.Errorf("%w: target root %s: %s", ErrInvalidRequest, req.TargetRoot, err.Error())
	}

	return label, nil
}

// checkWritable creates dir if needed and writes a probe file into it
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Errorf("creating directory: %w", err)
	}
	probe, err := os.CreateTemp(dir, ".camorg-probe-*")
	if err != nil {
		return errors.Errorf("not writable: %w", err)
	}
	name := probe.Name()
	closeErr := probe.Close()
	if err := os.Remove(filepath.Clean(name)); err != nil {
		return errors.Errorf("removing probe file: %w", err)
	}
	if closeErr != nil {
		return errors.Errorf("not writable: %w", closeErr)
	}
	return nil
}
