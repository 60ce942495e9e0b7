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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Round-trip (spec.md §8): openWrite; writeBytes(B); close; openRead;
// readBytes yields B exactly, with and without an intermediate
// setBuffer(n) for n in {0, 1, 3, len(B), 2*len(B)}.
func TestRoundTripAcrossBufferSizes(t *testing.T) {
	writeDir := t.TempDir()

	d := newTestDrive(t)
	require.NoError(t, d.SetWriteDir(writeDir))
	require.NoError(t, d.Mount(writeDir, "", true))

	b := []byte("the quick brown fox jumps over the lazy dog")

	for _, n := range []int{0, 1, 3, len(b), 2 * len(b)} {
		wfh, err := d.OpenWrite("roundtrip.bin")
		require.NoError(t, err)

		if n > 0 {
			require.NoError(t, d.SetBuffer(wfh, n))
		}

		written, err := d.WriteBytes(wfh, b)
		require.NoError(t, err)
		require.Equal(t, int64(len(b)), written)
		require.NoError(t, d.Close(wfh))

		rfh, err := d.OpenRead("roundtrip.bin")
		require.NoError(t, err)

		if n > 0 {
			require.NoError(t, d.SetBuffer(rfh, n))
		}

		got := make([]byte, len(b))
		read, err := d.ReadBytes(rfh, got)
		require.NoError(t, err)
		assert.Equal(t, int64(len(b)), read, "bufsize=%d", n)
		assert.Equal(t, b, got, "bufsize=%d", n)
		require.NoError(t, d.Close(rfh))
	}
}

// Buffered tell invariant (spec.md §8): for a read handle
// tell() = io.tell() - buffill + bufpos; for a write handle
// tell() = io.tell() + buffill. Checked after reads, writes and seeks.
func TestBufferedTellInvariant(t *testing.T) {
	writeDir := t.TempDir()

	d := newTestDrive(t)
	require.NoError(t, d.SetWriteDir(writeDir))
	require.NoError(t, d.Mount(writeDir, "", true))

	b := make([]byte, 100)
	for i := range b {
		b[i] = byte(i)
	}

	wfh, err := d.OpenWrite("tell.bin")
	require.NoError(t, err)
	require.NoError(t, d.SetBuffer(wfh, 16))

	_, err = d.WriteBytes(wfh, b[:10])
	require.NoError(t, err)
	assertTellInvariant(t, wfh)

	_, err = d.WriteBytes(wfh, b[10:40]) // forces an internal flush, bufsize=16
	require.NoError(t, err)
	assertTellInvariant(t, wfh)

	require.NoError(t, d.Close(wfh))

	rfh, err := d.OpenRead("tell.bin")
	require.NoError(t, err)
	require.NoError(t, d.SetBuffer(rfh, 16))

	got := make([]byte, 5)
	_, err = d.ReadBytes(rfh, got)
	require.NoError(t, err)
	assertTellInvariant(t, rfh)

	_, err = d.ReadBytes(rfh, make([]byte, 30))
	require.NoError(t, err)
	assertTellInvariant(t, rfh)

	pos, err := d.Tell(rfh)
	require.NoError(t, err)
	require.NoError(t, d.Seek(rfh, pos+1))
	assertTellInvariant(t, rfh)

	require.NoError(t, d.Close(rfh))
}

func assertTellInvariant(t *testing.T, fh *FileHandle) {
	t.Helper()

	raw, err := fh.io.Tell()
	require.NoError(t, err)

	got, err := fh.drive.Tell(fh)
	require.NoError(t, err)

	if fh.forReading {
		assert.Equal(t, raw-int64(fh.buffill)+int64(fh.bufpos), got)
	} else {
		assert.Equal(t, raw+int64(fh.buffill), got)
	}
}
