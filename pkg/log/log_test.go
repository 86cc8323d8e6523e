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

package log

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/camorg/pkg/copyjob"
)

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "job_events",
			op: func(t *testing.T, logger *Logger) {
				logger.JobStateChanged(copyjob.StateEvent{JobID: "job-1", Label: "2024-06-01", From: copyjob.StateQueued, To: copyjob.StateRunning})
				logger.JobProgressed(copyjob.ProgressEvent{
					JobID: "job-1", Label: "2024-06-01", FilesCompleted: 1, TotalFiles: 2,
					Destination: "/out/2024-06-01/jpg/a.jpg",
				})
				logger.JobProgressed(copyjob.ProgressEvent{
					JobID: "job-1", Label: "2024-06-01", FilesCompleted: 2, TotalFiles: 2,
					Destination: "/out/2024-06-01/no_extension/README",
				})
				logger.JobStateChanged(copyjob.StateEvent{JobID: "job-1", Label: "2024-06-01", From: copyjob.StateRunning, To: copyjob.StateCompleted})
			},
			wantLogs: []string{
				"[copying /out/2024-06-01]",
				"◆ 2024-06-01 • job-1",
				"✓ jpg/a.jpg                           jpg             1/2",
				"✓ no_extension/README                 no_extension    2/2",
				"✅ 2024-06-01 finished",
			},
		},
		{
			name: "failed_and_cancelled",
			op: func(t *testing.T, logger *Logger) {
				logger.JobStateChanged(copyjob.StateEvent{JobID: "job-2", Label: "a", To: copyjob.StateFailed, Reason: "copying x: disk full"})
				logger.JobStateChanged(copyjob.StateEvent{JobID: "job-3", Label: "b", To: copyjob.StateCancelled, Reason: "cancellation requested"})
			},
			wantLogs: []string{
				"❌ a failed: copying x: disk full",
				"⚠️  b cancelled",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Infof("info %s", "test")
				logger.Warningf("warning %s", "test")
				logger.Errorf("error %s", "test")
				logger.Successf("success %s", "test")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
				"❌ error test",
				"✅ success test",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("copying 3 date groups")
			},
			wantLogs: []string{
				"camorg • copying 3 date groups",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("first")
				logger.LogNewline()
				logger.Info("second")
			},
			wantLogs: []string{
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewWithLogger(buf, zerolog.New(zerolog.TestWriter{T: t}))

			tt.op(t, logger)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestFileOperationFormatting(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name string
		op   FileOperation
		want string
	}{
		{
			name: "copied_file",
			op:   FileOperation{Path: "jpg/a.jpg", Type: "jpg", Status: "1/3"},
			want: "    ✓ jpg/a.jpg                           jpg             1/3            ",
		},
		{
			name: "failed_file",
			op:   FileOperation{Path: "mov/b.mov", Type: "mov", Status: "2/3", IsFailed: true},
			want: "    ✗ mov/b.mov                           mov             2/3            ",
		},
	}

	logger := NewWithLogger(io.Discard, zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.formatFileOperation(tt.op))
		})
	}
}
