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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Seek-within-buffer preserves buffer (spec.md §8): after a read of
// k < bufsize bytes, seeking within the still-buffered range leaves the
// underlying stream's position untouched.
func TestSeekWithinBufferPreservesStreamPosition(t *testing.T) {
	writeDir := t.TempDir()

	d := newTestDrive(t)
	require.NoError(t, d.SetWriteDir(writeDir))
	require.NoError(t, d.Mount(writeDir, "", true))

	b := make([]byte, 64)
	for i := range b {
		b[i] = byte(i)
	}

	wfh, err := d.OpenWrite("seek.bin")
	require.NoError(t, err)
	_, err = d.WriteBytes(wfh, b)
	require.NoError(t, err)
	require.NoError(t, d.Close(wfh))

	rfh, err := d.OpenRead("seek.bin")
	require.NoError(t, err)
	require.NoError(t, d.SetBuffer(rfh, 32))

	got := make([]byte, 10)
	_, err = d.ReadBytes(rfh, got)
	require.NoError(t, err)

	rawBefore, err := rfh.io.Tell()
	require.NoError(t, err)

	pos, err := d.Tell(rfh)
	require.NoError(t, err)
	require.NoError(t, d.Seek(rfh, pos+5)) // still within the 32-byte buffer

	rawAfter, err := rfh.io.Tell()
	require.NoError(t, err)

	assert.Equal(t, rawBefore, rawAfter, "seek within the buffered window must not move the stream")

	got2 := make([]byte, 5)
	_, err = d.ReadBytes(rfh, got2)
	require.NoError(t, err)
	assert.Equal(t, b[15:20], got2)

	require.NoError(t, d.Close(rfh))
}

// fakeWriteIO is a minimal Io whose Write fails once writtenLimit bytes
// have been accepted in total, used to exercise Close's "flush failure
// leaves the handle open, buffer intact" path (spec.md §8 Scenario 3),
// which no real os.File error is convenient to trigger on demand.
type fakeWriteIO struct {
	data         []byte
	pos          int64
	writtenLimit int
}

var errFakeWriteFailed = errors.New("fakeWriteIO: simulated write failure")

func (f *fakeWriteIO) Read(p []byte) (int, error) { return 0, errFakeWriteFailed }

func (f *fakeWriteIO) Write(p []byte) (int, error) {
	allowed := f.writtenLimit - len(f.data)
	if allowed <= 0 {
		return 0, errFakeWriteFailed
	}

	if allowed > len(p) {
		allowed = len(p)
	}

	f.data = append(f.data, p[:allowed]...)
	f.pos += int64(allowed)

	if allowed < len(p) {
		return allowed, errFakeWriteFailed
	}

	return allowed, nil
}

func (f *fakeWriteIO) Seek(pos int64) error    { f.pos = pos; return nil }
func (f *fakeWriteIO) Tell() (int64, error)    { return f.pos, nil }
func (f *fakeWriteIO) Length() (int64, error)  { return int64(len(f.data)), nil }
func (f *fakeWriteIO) Duplicate() (Io, error)  { return nil, newError(Unsupported) }
func (f *fakeWriteIO) Flush() error            { return nil }
func (f *fakeWriteIO) Close() error            { return nil }

// Scenario 3 (spec.md §8): writes with buffer size 7 totaling 20 bytes,
// then close, produce a 20-byte file; a partial flush failure leaves the
// handle open and its buffer contents intact.
func TestScenario3_BufferedWritesAndPartialFlushFailure(t *testing.T) {
	d := newTestDrive(t)

	fio := &fakeWriteIO{writtenLimit: 1 << 30}
	fh := &FileHandle{io: fio, forReading: false, drive: d}

	require.NoError(t, d.SetBuffer(fh, 7))

	payload := []byte("12345678901234567890") // 20 bytes
	written, err := d.WriteBytes(fh, payload)
	require.NoError(t, err)
	require.Equal(t, int64(len(payload)), written)

	require.NoError(t, d.Flush(fh))
	assert.Equal(t, payload, fio.data)
	assert.Equal(t, 20, len(fio.data))

	// Now a handle whose backing Io can only accept a few more bytes:
	// a partial flush failure must leave the handle on the open-write
	// list (closeLocked relinks it) with its buffered bytes untouched.
	limited := &fakeWriteIO{writtenLimit: 3}
	fh2 := &FileHandle{io: limited, forReading: false, drive: d}
	d.pushWriteLocked(fh2)
	require.NoError(t, d.SetBuffer(fh2, 16))

	_, err = d.WriteBytes(fh2, []byte("abcdefghij")) // 10 bytes, fits in the 16-byte buffer
	require.NoError(t, err)

	closeErr := d.Close(fh2)
	require.Error(t, closeErr, "flush should fail: backend only accepts 3 bytes")

	assert.Equal(t, []byte("abcdefghij"), fh2.buffer[fh2.bufpos:fh2.buffill],
		"buffer contents must survive a failed flush")

	found := false

	for cur := d.openWriteHead; cur != nil; cur = cur.next {
		if cur == fh2 {
			found = true
		}
	}

	assert.True(t, found, "handle must remain open (relinked) after a failed close")
}
