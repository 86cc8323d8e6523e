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

package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtensionDir(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "lower", path: "/src/a.jpg", want: "jpg"},
		{name: "upper", path: "/src/IMG_0001.JPG", want: "jpg"},
		{name: "mixed", path: "/src/clip.MoV", want: "mov"},
		{name: "none", path: "/src/README", want: NoExtensionDir},
		{name: "multi_dot", path: "/src/archive.tar.GZ", want: "gz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtensionDir(tt.path))
		})
	}
}

func TestPlan(t *testing.T) {
	t.Run("groups_by_extension", func(t *testing.T) {
		root := t.TempDir()
		p := New()

		dest, err := p.Plan(root, "trip", "/src/a.JPG")
		require.NoError(t, err, "planning")
		assert.Equal(t, filepath.Join(root, "trip", "jpg", "a.JPG"), dest)

		info, err := os.Stat(filepath.Join(root, "trip", "jpg"))
		require.NoError(t, err, "destination dir should exist")
		assert.True(t, info.IsDir())
		assert.True(t, p.Claimed(dest))
	})

	t.Run("claims_within_planner", func(t *testing.T) {
		root := t.TempDir()
		p := New()

		var got []string
		for _, src := range []string{"/one/a.jpg", "/two/a.jpg", "/three/a.jpg"} {
			dest, err := p.Plan(root, "trip", src)
			require.NoError(t, err, "planning %s", src)
			got = append(got, dest)
		}

		assert.Equal(t, []string{
			filepath.Join(root, "trip", "jpg", "a.jpg"),
			filepath.Join(root, "trip", "jpg", "a_1.jpg"),
			filepath.Join(root, "trip", "jpg", "a_2.jpg"),
		}, got)
	})

	t.Run("skips_existing_files", func(t *testing.T) {
		root := t.TempDir()
		dir := filepath.Join(root, "trip", "jpg")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("x"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a_1.jpg"), []byte("x"), 0o644))

		dest, err := New().Plan(root, "trip", "/src/a.jpg")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "a_2.jpg"), dest)
	})

	t.Run("no_extension", func(t *testing.T) {
		root := t.TempDir()
		p := New()

		first, err := p.Plan(root, "trip", "/src/notes")
		require.NoError(t, err)
		second, err := p.Plan(root, "trip", "/other/notes")
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(root, "trip", NoExtensionDir, "notes"), first)
		assert.Equal(t, filepath.Join(root, "trip", NoExtensionDir, "notes_1"), second)
	})

	t.Run("mkdir_error_propagates", func(t *testing.T) {
		root := t.TempDir()
		// a regular file where the label directory should go
		require.NoError(t, os.WriteFile(filepath.Join(root, "trip"), []byte("x"), 0o644))

		_, err := New().Plan(root, "trip", "/src/a.jpg")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "creating destination directory")
	})

	t.Run("recreates_removed_directory", func(t *testing.T) {
		root := t.TempDir()
		p := New()

		first, err := p.Plan(root, "trip", "/src/a.jpg")
		require.NoError(t, err)
		require.NoError(t, os.RemoveAll(filepath.Join(root, "trip")))

		second, err := p.Plan(root, "trip", "/src/b.jpg")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "trip", "jpg", "b.jpg"), second)
		assert.NotEqual(t, first, second)

		info, err := os.Stat(filepath.Dir(second))
		require.NoError(t, err, "destination dir should be recreated")
		assert.True(t, info.IsDir())
	})
}
