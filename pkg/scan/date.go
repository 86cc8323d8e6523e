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

package scan

import (
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"gitlab.com/tozd/go/errors"
)

// DateLayout is the format of every date group key
const DateLayout = "2006-01-02"

// 📅 DateSource selects where a file's captured date comes from
type DateSource string

const (
	// DateSourceFilesystem uses the modification time
	DateSourceFilesystem DateSource = "filesystem"
	// DateSourceMetadata reads EXIF and falls back to the modification time
	DateSourceMetadata DateSource = "metadata"
)

// ParseDateSource resolves a persisted value, unknown values mean filesystem
func ParseDateSource(s string) DateSource {
	switch DateSource(strings.ToLower(strings.TrimSpace(s))) {
	case DateSourceMetadata:
		return DateSourceMetadata
	default:
		return DateSourceFilesystem
	}
}

// metadataExtensions can carry EXIF
var metadataExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".tif": true, ".tiff": true,
	".dng": true, ".nef": true, ".cr2": true, ".arw": true, ".orf": true,
}

// resolveDate returns the date group for path
func resolveDate(path, ext string, source DateSource) (string, error) {
	if source == DateSourceMetadata && metadataExtensions[ext] {
		if t, err := exifDate(path); err == nil {
			return t.Format(DateLayout), nil
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Errorf("reading file info: %w", err)
	}
	return info.ModTime().Local().Format(DateLayout), nil
}

// exifDate reads DateTimeOriginal, falling back to DateTime
func exifDate(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, errors.Errorf("opening file: %w", err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, errors.Errorf("decoding exif: %w", err)
	}

	t, err := x.DateTime()
	if err != nil {
		return time.Time{}, errors.Errorf("reading exif date: %w", err)
	}
	return t, nil
}
