//
//  Copyright 2024 The VFS authors
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//  	http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//

package vfs

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// Concurrent readers against one Drive (spec.md §5): many goroutines
// opening, reading and closing distinct files through the same shared
// search path must all succeed, with no goroutine's last-error state
// leaking into another's.
func TestConcurrentReadersOnSharedDrive(t *testing.T) {
	dataDir := t.TempDir()

	const n = 64

	for i := 0; i < n; i++ {
		name := fmt.Sprintf("f%03d.txt", i)
		content := fmt.Sprintf("content-%03d", i)
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, name), []byte(content), 0o644))
	}

	d := newTestDrive(t)
	require.NoError(t, d.Mount(dataDir, "", true))

	var g errgroup.Group

	for i := 0; i < n; i++ {
		i := i

		g.Go(func() error {
			name := fmt.Sprintf("f%03d.txt", i)
			want := fmt.Sprintf("content-%03d", i)

			fh, err := d.OpenRead(name)
			if err != nil {
				return fmt.Errorf("OpenRead(%s): %w", name, err)
			}

			got := make([]byte, len(want))

			if _, err := d.ReadBytes(fh, got); err != nil {
				return fmt.Errorf("ReadBytes(%s): %w", name, err)
			}

			if string(got) != want {
				return fmt.Errorf("%s: got %q, want %q", name, got, want)
			}

			// Every seventh goroutine makes a deliberate failing lookup
			// before closing, to confirm it does not corrupt a sibling
			// goroutine's state.
			if i%7 == 0 {
				_, _ = d.OpenRead("does-not-exist.txt")
			}

			return d.Close(fh)
		})
	}

	require.NoError(t, g.Wait())

	assert.Equal(t, OK, d.GetLastErrorCode(), "the fan-out goroutines' errors must not leak onto the caller's goroutine")
}

// Concurrent writers against distinct names in one write directory must
// not corrupt each other's files (spec.md §5: coarse per-instance locking
// serializes mutation of shared Drive state, but each FileHandle's I/O is
// independent once open).
func TestConcurrentWritersOnSharedDrive(t *testing.T) {
	writeDir := t.TempDir()

	d := newTestDrive(t)
	require.NoError(t, d.SetWriteDir(writeDir))
	require.NoError(t, d.Mount(writeDir, "", true))

	const n = 32

	var g errgroup.Group

	for i := 0; i < n; i++ {
		i := i

		g.Go(func() error {
			name := fmt.Sprintf("w%03d.bin", i)
			payload := []byte(fmt.Sprintf("payload-%03d", i))

			fh, err := d.OpenWrite(name)
			if err != nil {
				return err
			}

			if _, err := d.WriteBytes(fh, payload); err != nil {
				return err
			}

			return d.Close(fh)
		})
	}

	require.NoError(t, g.Wait())

	for i := 0; i < n; i++ {
		name := fmt.Sprintf("w%03d.bin", i)
		want := fmt.Sprintf("payload-%03d", i)

		got, err := os.ReadFile(filepath.Join(writeDir, name))
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
}
