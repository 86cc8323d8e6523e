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

// Package plan computes destination paths for copied files.
//
// Files land in target_root/label/ext/filename. A path that is already
// claimed by the same planner or that exists on disk gets a numeric suffix
// before the extension (a.jpg, a_1.jpg, a_2.jpg, ...).
//
// A Planner is not safe for concurrent use; each copy job owns one and
// calls it sequentially. Two planners writing to the same label and
// extension can still race between the existence check and the write.
package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// NoExtensionDir is the folder for files without an extension
const NoExtensionDir = "no_extension"

// 🗺️ Planner hands out collision-free destination paths for one job
type Planner struct {
	claimed map[string]struct{}
}

// 🏭 New creates an empty planner
func New() *Planner {
	return &Planner{
		claimed: make(map[string]struct{}),
	}
}

// ExtensionDir returns the lower-cased extension folder name for a file
func ExtensionDir(filePath string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filePath)), ".")
	if ext == "" {
		return NoExtensionDir
	}
	return ext
}

// 📍 Plan returns and claims the destination for filePath, creating the
// destination directory if needed
func (p *Planner) Plan(targetRoot, label, filePath string) (string, error) {
	dir := filepath.Join(targetRoot, label, ExtensionDir(filePath))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Errorf("creating destination directory %s: %w", dir, err)
	}

	name := filepath.Base(filePath)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	candidate := filepath.Join(dir, name)
	for n := 1; ; n++ {
		free, err := p.free(candidate)
		if err != nil {
			return "", err
		}
		if free {
			break
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
	}

	p.claimed[candidate] = struct{}{}
	return candidate, nil
}

// Claimed reports whether path was handed out by this planner
func (p *Planner) Claimed(path string) bool {
	_, ok := p.claimed[path]
	return ok
}

func (p *Planner) free(path string) (bool, error) {
	if _, ok := p.claimed[path]; ok {
		return false, nil
	}
	_, err := os.Lstat(path)
	if err == nil {
		return false, nil
	}
	if os.IsNotExist(err) {
		return true, nil
	}
	return false, errors.Errorf("checking destination %s: %w", path, err)
}
