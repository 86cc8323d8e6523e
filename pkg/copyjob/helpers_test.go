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
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func setupTestContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

// writeSource creates dir/name with content and returns its path
func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755), "creating source dir")
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "writing source file")
	return path
}

// 📼 recorder keeps every event and optionally reacts to progress
type recorder struct {
	mu         sync.Mutex
	states     []StateEvent
	progress   []ProgressEvent
	onState    func(StateEvent)
	onProgress func(ProgressEvent)
}

func (r *recorder) JobStateChanged(ev StateEvent) {
	r.mu.Lock()
	r.states = append(r.states, ev)
	hook := r.onState
	r.mu.Unlock()
	if hook != nil {
		hook(ev)
	}
}

func (r *recorder) JobProgressed(ev ProgressEvent) {
	r.mu.Lock()
	r.progress = append(r.progress, ev)
	hook := r.onProgress
	r.mu.Unlock()
	if hook != nil {
		hook(ev)
	}
}

func (r *recorder) statesFor(id ID) []StateEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []StateEvent
	for _, ev := range r.states {
		if ev.JobID == id {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recorder) progressFor(id ID) []ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ProgressEvent
	for _, ev := range r.progress {
		if ev.JobID == id {
			out = append(out, ev)
		}
	}
	return out
}

// 🕰️ deferredLauncher holds operations until runAll is called
type deferredLauncher struct {
	mu  sync.Mutex
	ops []Operation
}

func (d *deferredLauncher) Launch(ctx context.Context, op Operation) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ops = append(d.ops, op)
}

func (d *deferredLauncher) runAll(ctx context.Context) {
	d.mu.Lock()
	ops := d.ops
	d.ops = nil
	d.mu.Unlock()
	for _, op := range ops {
		_ = op.Execute(ctx)
	}
}
