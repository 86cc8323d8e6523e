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

// Package scan finds camera files under a folder and groups them by the
// day they were captured.
package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrScanCancelled is returned when ctx is done before the scan finishes
var ErrScanCancelled = errors.Base("scan cancelled")

// DefaultExtensions are the camera formats picked up by default
var DefaultExtensions = []string{
	// images
	".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".tif",
	// raw
	".nef", ".cr2", ".cr3", ".arw", ".dng", ".raw", ".orf",
	// video
	".mp4", ".mov", ".avi", ".mkv", ".m4v",
}

// PreviewExtensions are the formats a preview can show
var PreviewExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".tif"}

// 🔧 Options configures a scan
type Options struct {
	// Extensions overrides DefaultExtensions, with or without the leading dot
	Extensions []string
	// IgnorePatterns are doublestar globs matched against slash separated
	// paths relative to the root
	IgnorePatterns []string
	// DateSource defaults to DateSourceFilesystem
	DateSource DateSource
	// Progress is called with (0, total) once candidates are known and after
	// every grouped file
	Progress func(processed, total int)
}

// 🔍 Scan walks root and groups supported files by date. A missing root
// yields an empty result.
func Scan(ctx context.Context, root string, opts Options) (*Result, error) {
	logger := zerolog.Ctx(ctx).With().Str("root", root).Logger()
	result := &Result{Root: root, groups: make(map[string][]string)}

	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		logger.Debug().Msg("source folder does not exist")
		return result, nil
	}
	if err != nil {
		return nil, errors.Errorf("reading source folder: %w", err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("source %s is not a directory", root)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Errorf("%w: %s", ErrScanCancelled, err.Error())
	}

	extensions := normalizeExtensions(opts.Extensions)
	candidates, err := collect(ctx, root, extensions, opts.IgnorePatterns)
	if err != nil {
		return nil, err
	}

	source := opts.DateSource
	if source == "" {
		source = DateSourceFilesystem
	}

	total := len(candidates)
	if opts.Progress != nil {
		opts.Progress(0, total)
	}

	processed := 0
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("%w: %s", ErrScanCancelled, err.Error())
		}

		date, err := resolveDate(c.path, c.ext, source)
		if err != nil {
			logger.Warn().Err(err).Str("file", c.path).Msg("skipping file without a date")
			continue
		}
		result.groups[date] = append(result.groups[date], c.path)

		processed++
		if opts.Progress != nil {
			opts.Progress(processed, total)
		}
	}

	for date := range result.groups {
		slices.Sort(result.groups[date])
	}

	logger.Debug().Int("files", processed).Int("dates", len(result.groups)).Msg("scan finished")
	return result, nil
}

type candidate struct {
	path string
	ext  string
}

func collect(ctx context.Context, root string, extensions map[string]bool, ignore []string) ([]candidate, error) {
	logger := zerolog.Ctx(ctx)
	var out []candidate

	err := doublestar.GlobWalk(os.DirFS(root), "**", func(rel string, d fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("%w: %s", ErrScanCancelled, err.Error())
		}
		if !d.Type().IsRegular() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(rel))
		if !extensions[ext] {
			return nil
		}

		for _, pattern := range ignore {
			matched, err := doublestar.Match(pattern, rel)
			if err != nil {
				logger.Debug().Str("pattern", pattern).Str("path", rel).Err(err).Msg("error matching pattern")
				continue
			}
			if matched {
				logger.Debug().Str("file", rel).Str("pattern", pattern).Msg("file ignored by pattern")
				return nil
			}
		}

		out = append(out, candidate{path: filepath.Join(root, filepath.FromSlash(rel)), ext: ext})
		return nil
	}, doublestar.WithFilesOnly())
	if err != nil {
		if errors.Is(err, ErrScanCancelled) {
			return nil, err
		}
		return nil, errors.Errorf("walking %s: %w", root, err)
	}

	return out, nil
}

func normalizeExtensions(exts []string) map[string]bool {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	out := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out[e] = true
	}
	return out
}

// 📚 Result holds files grouped by date
type Result struct {
	Root   string
	groups map[string][]string
}

// Dates returns the date groups in ascending order
func (r *Result) Dates() []string {
	dates := make([]string, 0, len(r.groups))
	for d := range r.groups {
		dates = append(dates, d)
	}
	slices.Sort(dates)
	return dates
}

// Files returns the sorted files of one date
func (r *Result) Files(date string) []string {
	return slices.Clone(r.groups[date])
}

// Count returns the number of files of one date
func (r *Result) Count(date string) int {
	return len(r.groups[date])
}

// Total returns the number of grouped files
func (r *Result) Total() int {
	n := 0
	for _, files := range r.groups {
		n += len(files)
	}
	return n
}

// Previews returns at most limit image files of one date
func (r *Result) Previews(date string, limit int) []string {
	var out []string
	for _, f := range r.groups[date] {
		if limit > 0 && len(out) >= limit {
			break
		}
		if slices.Contains(PreviewExtensions, strings.ToLower(filepath.Ext(f))) {
			out = append(out, f)
		}
	}
	return out
}

// Remove drops a date group, typically after its files were copied
func (r *Result) Remove(date string) {
	delete(r.groups, date)
}
