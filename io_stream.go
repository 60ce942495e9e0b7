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
	"io"
	"os"
)

// Io is the polymorphic byte-stream contract described in spec.md §3/§9.
// Every backend that hands a stream to the core implements it; the core
// itself only knows two concrete shapes (nativeFileIO and handleIO).
type Io interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Seek(pos int64) error
	Tell() (int64, error)
	Length() (int64, error)
	// Duplicate returns a new, independent stream over the same
	// underlying source, positioned at offset 0. The archive-probing
	// logic in mount.go does not use it: it hands the same Io to each
	// archiver in turn, rewinding it with Seek(0) first.
	Duplicate() (Io, error)
	Flush() error
	Close() error
}

// nativeFileIO wraps an OS file handle. This is what the DIR backend's
// openRead/openWrite/openAppend hand back.
type nativeFileIO struct {
	f    *os.File
	path string
	mode int
}

func newNativeFileIO(path string, mode int, perm os.FileMode) (*nativeFileIO, error) {
	f, err := os.OpenFile(path, mode, perm)
	if err != nil {
		return nil, newPassthroughError(err)
	}

	return &nativeFileIO{f: f, path: path, mode: mode}, nil
}

func (n *nativeFileIO) Read(p []byte) (int, error) {
	c, err := n.f.Read(p)
	if err != nil && err != io.EOF {
		return c, newPassthroughError(err)
	}

	return c, err
}

func (n *nativeFileIO) Write(p []byte) (int, error) {
	c, err := n.f.Write(p)
	if err != nil {
		return c, newPassthroughError(err)
	}

	return c, nil
}

func (n *nativeFileIO) Seek(pos int64) error {
	_, err := n.f.Seek(pos, io.SeekStart)
	if err != nil {
		return newPassthroughError(err)
	}

	return nil
}

func (n *nativeFileIO) Tell() (int64, error) {
	pos, err := n.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return -1, newPassthroughError(err)
	}

	return pos, nil
}

func (n *nativeFileIO) Length() (int64, error) {
	fi, err := n.f.Stat()
	if err != nil {
		return -1, newPassthroughError(err)
	}

	return fi.Size(), nil
}

func (n *nativeFileIO) Duplicate() (Io, error) {
	return newNativeFileIO(n.path, n.mode, 0)
}

func (n *nativeFileIO) Flush() error {
	if err := n.f.Sync(); err != nil {
		return newPassthroughError(err)
	}

	return nil
}

func (n *nativeFileIO) Close() error {
	if err := n.f.Close(); err != nil {
		return newPassthroughError(err)
	}

	return nil
}

// handleIO wraps an already-open FileHandle of this same package, used
// to mount an archive that lives inside another mount (spec.md §2.3).
type handleIO struct {
	h *FileHandle
}

// newHandleIO adapts an open read FileHandle into an Io stream.
func newHandleIO(h *FileHandle) *handleIO {
	return &handleIO{h: h}
}

func (h *handleIO) Read(p []byte) (int, error) {
	n, err := h.h.readBytes(p)
	return n, err
}

func (h *handleIO) Write(p []byte) (int, error) {
	n, err := h.h.writeBytes(p)
	return n, err
}

func (h *handleIO) Seek(pos int64) error {
	return h.h.drive.Seek(h.h, pos)
}

func (h *handleIO) Tell() (int64, error) {
	return h.h.drive.Tell(h.h)
}

func (h *handleIO) Length() (int64, error) {
	return h.h.drive.FileLength(h.h)
}

func (h *handleIO) Duplicate() (Io, error) {
	dup, err := h.h.drive.reopenReadLocked(h.h.dirHandle, h.h.origName)
	if err != nil {
		return nil, err
	}

	return newHandleIO(dup), nil
}

// Flush and Close assume the caller already holds the owning Drive's
// stateMu: the only paths that tear down a handleIO today are
// Archiver.CloseArchive calls made from mount.go/drive.go, which always
// run with the lock held.
func (h *handleIO) Flush() error {
	return h.h.flush()
}

func (h *handleIO) Close() error {
	return h.h.drive.closeLocked(h.h)
}
