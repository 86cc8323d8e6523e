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

package status

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/camorg/pkg/copyjob"
)

func TestTrackerRows(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	tr := New(&logger)

	tr.JobStateChanged(copyjob.StateEvent{JobID: "job-1", Label: "a", From: copyjob.StateQueued, To: copyjob.StateRunning})
	tr.JobProgressed(copyjob.ProgressEvent{JobID: "job-1", Label: "a", FilesCompleted: 1, TotalFiles: 2, Destination: "/out/a/jpg/x.jpg"})
	tr.Seed(copyjob.Snapshot{ID: "job-2", Label: "b", TotalFiles: 5})
	tr.JobProgressed(copyjob.ProgressEvent{JobID: "job-1", Label: "a", FilesCompleted: 2, TotalFiles: 2, Destination: "/out/a/jpg/y.jpg"})
	tr.JobStateChanged(copyjob.StateEvent{JobID: "job-1", Label: "a", From: copyjob.StateRunning, To: copyjob.StateCompleted})
	tr.JobStateChanged(copyjob.StateEvent{JobID: "job-3", Label: "c", From: copyjob.StateRunning, To: copyjob.StateFailed, Reason: "disk full"})

	rows := tr.Rows()
	require.Len(t, rows, 3)

	assert.Equal(t, Row{ID: "job-1", Label: "a", State: copyjob.StateCompleted, Completed: 2, Total: 2, LastFile: "/out/a/jpg/y.jpg"}, rows[0])
	assert.Equal(t, Row{ID: "job-2", Label: "b", State: copyjob.StateQueued, Total: 5}, rows[1])
	assert.Equal(t, copyjob.StateFailed, rows[2].State)
	assert.Equal(t, "disk full", rows[2].Error)

	assert.Equal(t, Totals{Jobs: 3, Completed: 1, Failed: 1, Active: 1, Files: 2}, tr.Totals())

	_, ok := tr.Get("job-9")
	assert.False(t, ok)
	r, ok := tr.Get("job-2")
	require.True(t, ok)
	assert.Equal(t, "b", r.Label)

	out := buf.String()
	assert.Contains(t, out, "⏳ Progress: 1/2 (50%)")
	assert.Contains(t, out, "✅ Progress: 2/2 (100%)")
	assert.Contains(t, out, "❌ Failed c: disk full")
	assert.Contains(t, out, `"level":"error"`)
}

type upperFormatter struct{ *DefaultFileFormatter }

func (upperFormatter) FormatProgress(current, total int) string { return "PROGRESS" }

func TestTrackerWithFormatter(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	tr := New(&logger).WithFormatter(upperFormatter{NewDefaultFileFormatter()})

	tr.JobProgressed(copyjob.ProgressEvent{JobID: "job-1", FilesCompleted: 1, TotalFiles: 1})
	assert.Contains(t, buf.String(), "PROGRESS")
}

func TestTrackerWithWorker(t *testing.T) {
	logger := zerolog.New(zerolog.TestWriter{T: t})
	ctx := logger.WithContext(context.Background())

	src := t.TempDir()
	var files []string
	for _, name := range []string{"a.jpg", "b.mov", "c.jpg"} {
		p := filepath.Join(src, name)
		require.NoError(t, os.WriteFile(p, []byte(name), 0o644))
		files = append(files, p)
	}

	tr := New(&logger)
	w := copyjob.NewWorker(ctx, copyjob.Options{Notifier: tr})

	id, err := w.Submit(ctx, copyjob.Request{Files: files, TargetRoot: t.TempDir(), Label: "2024-06-01"})
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	snap, err := w.Wait(waitCtx, id)
	require.NoError(t, err)
	assert.Equal(t, copyjob.StateCompleted, snap.State)

	row, ok := tr.Get(id)
	require.True(t, ok)
	assert.Equal(t, copyjob.StateCompleted, row.State)
	assert.Equal(t, 3, row.Completed)
	assert.Equal(t, 3, row.Total)
}
