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
	"io"
	"os"

	"gitlab.com/tozd/go/errors"
)

// 📋 copyFile copies src to dst and carries over the permission bits and
// modification time. A partially written dst is removed on failure.
func copyFile(src, dst string) (err error) {
	source, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return errors.Errorf("reading source info: %w", err)
	}
	if !info.Mode().IsRegular() {
		return errors.Errorf("source %s is not a regular file", src)
	}

	destination, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}
	defer func() {
		if err != nil {
			destination.Close()
			os.Remove(dst)
		}
	}()

	if _, err = io.Copy(destination, source); err != nil {
		return errors.Errorf("copying file content: %w", err)
	}

	if err = destination.Close(); err != nil {
		return errors.Errorf("closing destination file: %w", err)
	}

	// the platform may not allow it, a copy without metadata is still a copy
	_ = os.Chmod(dst, info.Mode().Perm())
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())

	return nil
}
