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

// DirHandle is one mount entry: an archiver instance paired with the
// virtual mountpoint it was attached at (spec.md §3).
type DirHandle struct {
	opaque     any
	dirName    string // the archive's source path, as given by the caller
	mountPoint string // normalized, trailing '/'; "/" means "no mountpoint"
	archiver   Archiver
	next       *DirHandle
}

// GetMountPoint returns handle's mountpoint without the trailing '/'
// bookkeeping form (public accessor for spec.md §6 getMountPoint).
func (h *DirHandle) GetMountPoint() string {
	if h.mountPoint == "/" {
		return ""
	}

	return h.mountPoint[:len(h.mountPoint)-1]
}

// DirName returns the source path the handle was mounted from.
func (h *DirHandle) DirName() string {
	return h.dirName
}

// FileHandle is one open file: its stream, its direction, its optional
// buffer, and its intrusive linkage into the owning Drive's open lists
// (spec.md §3).
type FileHandle struct {
	io         Io
	forReading bool
	dirHandle  *DirHandle
	drive      *Drive
	origName   string // archive-relative name, kept for Io.Duplicate

	buffer  []byte
	bufsize int
	buffill int
	bufpos  int

	next *FileHandle
	prev *FileHandle
}

// Invariant (spec.md §3): for a read handle, bytes buffer[bufpos:buffill]
// are valid unread bytes and the stream's cursor is (buffill-bufpos)
// ahead of the logical position. For a write handle, bytes
// buffer[0:buffill] are pending and the stream cursor is the logical
// position minus buffill. Both are maintained exclusively by the
// buffered-I/O helpers in buffer.go and the seek/tell/eof/flush methods
// in ops.go.
