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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	// DefaultFileName lives in the user's home directory
	DefaultFileName = ".camorg.yaml"
	// DefaultPreviewCount is how many images a date preview shows
	DefaultPreviewCount = 10
	// DefaultPruneAfter is how long finished jobs stay visible
	DefaultPruneAfter = "1h"

	DateSourceFilesystem = "filesystem"
	DateSourceMetadata   = "metadata"
)

// 🔌 Parser is the interface for settings formats
type Parser interface {
	// 📝 Parse decodes settings from bytes
	Parse(ctx context.Context, data []byte) (*Settings, error)

	// 💾 Encode renders settings in this format
	Encode(ctx context.Context, s *Settings) ([]byte, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Settings is everything camorg remembers between runs
type Settings struct {
	SourceFolder      string   `json:"source_folder" yaml:"source_folder" hcl:"source_folder,optional"`
	TargetFolder      string   `json:"target_folder" yaml:"target_folder" hcl:"target_folder,optional"`
	PreviewCount      int      `json:"preview_count" yaml:"preview_count" hcl:"preview_count,optional"`
	DateSource        string   `json:"date_source" yaml:"date_source" hcl:"date_source,optional"`
	Extensions        []string `json:"extensions" yaml:"extensions" hcl:"extensions,optional"`
	IgnorePatterns    []string `json:"ignore_patterns" yaml:"ignore_patterns" hcl:"ignore_patterns,optional"`
	MaxConcurrentJobs int      `json:"max_concurrent_jobs" yaml:"max_concurrent_jobs" hcl:"max_concurrent_jobs,optional"`
	PruneAfter        string   `json:"prune_after" yaml:"prune_after" hcl:"prune_after,optional"`
}

// Default returns settings with every default filled in
func Default() *Settings {
	return &Settings{
		PreviewCount: DefaultPreviewCount,
		DateSource:   DateSourceFilesystem,
		PruneAfter:   DefaultPruneAfter,
	}
}

// DefaultPath returns ~/.camorg.yaml, or the file name alone when the home
// directory is unknown
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(home, DefaultFileName)
}

// 🎯 Load reads settings from path. A missing file yields Default().
func Load(ctx context.Context, path string) (*Settings, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading settings")

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Debug().Str("path", path).Msg("settings file not found, using defaults")
		return Default(), nil
	}
	if err != nil {
		return nil, errors.Errorf("reading settings file: %w", err)
	}

	s, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, errors.Errorf("validating settings: %w", err)
	}

	return s, nil
}

// 💾 Save writes settings to path through a temp file and rename
func (s *Settings) Save(ctx context.Context, path string) error {
	p := GetParser(path)
	if p == nil {
		return errors.Errorf("no parser found for file: %s", path)
	}

	if err := s.Validate(); err != nil {
		return errors.Errorf("validating settings: %w", err)
	}

	data, err := p.Encode(ctx, s)
	if err != nil {
		return errors.Errorf("encoding settings: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Errorf("creating settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Errorf("replacing settings file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("settings saved")
	return nil
}

// 🔍 Validate normalizes values and fills defaults
func (s *Settings) Validate() error {
	if s.SourceFolder = strings.TrimSpace(s.SourceFolder); s.SourceFolder != "" {
		s.SourceFolder = filepath.Clean(s.SourceFolder)
	}
	if s.TargetFolder = strings.TrimSpace(s.TargetFolder); s.TargetFolder != "" {
		s.TargetFolder = filepath.Clean(s.TargetFolder)
	}

	if s.PreviewCount < 0 {
		return errors.Errorf("preview_count must not be negative, got %d", s.PreviewCount)
	}
	if s.PreviewCount == 0 {
		s.PreviewCount = DefaultPreviewCount
	}

	s.DateSource = strings.ToLower(strings.TrimSpace(s.DateSource))
	switch s.DateSource {
	case "":
		s.DateSource = DateSourceFilesystem
	case DateSourceFilesystem, DateSourceMetadata:
	default:
		return errors.Errorf("date_source must be %q or %q, got %q", DateSourceFilesystem, DateSourceMetadata, s.DateSource)
	}

	var exts []string
	for _, e := range s.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	s.Extensions = exts

	if s.MaxConcurrentJobs < 0 {
		return errors.Errorf("max_concurrent_jobs must not be negative, got %d", s.MaxConcurrentJobs)
	}

	if s.PruneAfter == "" {
		s.PruneAfter = DefaultPruneAfter
	}
	d, err := time.ParseDuration(s.PruneAfter)
	if err != nil {
		return errors.Errorf("prune_after: %w", err)
	}
	if d < 0 {
		return errors.Errorf("prune_after must not be negative, got %s", s.PruneAfter)
	}

	return nil
}

// PruneDuration returns PruneAfter as a duration, zero when it does not parse
func (s *Settings) PruneDuration() time.Duration {
	d, err := time.ParseDuration(s.PruneAfter)
	if err != nil {
		return 0
	}
	return d
}

// 📝 String returns a one-line summary
func (s *Settings) String() string {
	return fmt.Sprintf("%s -> %s (dates from %s)", orDash(s.SourceFolder), orDash(s.TargetFolder), s.DateSource)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
