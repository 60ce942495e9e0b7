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

// Mount attaches the directory or archive at fname into the search path
// at mountPoint (spec.md §4.4). A nil-equivalent empty mountPoint mounts
// at "/". If appendToPath is false, the new DirHandle is searched before
// every existing entry.
func (d *Drive) Mount(fname, mountPoint string, appendToPath bool) error {
	io, err := newNativeFileIO(fname, 0, 0)
	// A directory source has no meaningful Io; probing below rewinds
	// only archivers that actually need one (the DIR backend ignores
	// it). Swallow the open failure here: a source that neither the DIR
	// backend nor any registered archiver claims ends as Unsupported.
	if err != nil {
		io = nil
	}

	return d.mount(io, fname, fname, mountPoint, appendToPath)
}

// MountIo attaches an archive already available as an Io stream. version
// must be 0 (spec.md §6); name is a human-readable label, used as the
// DirHandle's dirName for Unmount and duplicate detection.
func (d *Drive) MountIo(io Io, version int, name, mountPoint string, appendToPath bool) error {
	if version != 0 {
		return fail(d, newError(Unsupported))
	}

	return d.mount(io, name, name, mountPoint, appendToPath)
}

// MountHandle mounts an archive that lives inside another mount: file is
// an already-open FileHandle (forReading), wrapped in a handleIO so the
// archiver probing below can treat it like any other stream.
func (d *Drive) MountHandle(file *FileHandle, name, mountPoint string, appendToPath bool) error {
	return d.mount(newHandleIO(file), name, name, mountPoint, appendToPath)
}

// mount implements the shared probing logic behind Mount/MountIo/
// MountHandle (spec.md §4.4, resolving Open Question 1): try the DIR
// backend first when fname is a real directory, then every
// format-specific archiver in registration order, rewinding io before
// each attempt. The first archiver that opens the source or claims it
// wins; mounting a dirName that is already present succeeds idempotently
// without re-probing.
func (d *Drive) mount(io Io, fname, dirName, mountPoint string, appendToPath bool) error {
	mp, err := normalizeMountPoint(mountPoint)
	if err != nil {
		return fail(d, err)
	}

	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	if !d.initialized {
		return fail(d, newError(NotInitialized))
	}

	for h := d.searchHead; h != nil; h = h.next {
		if h.dirName == dirName {
			return nil
		}
	}

	opaque, archiver, err := probeArchivers(io, fname)
	if err != nil {
		return fail(d, err)
	}

	handle := &DirHandle{opaque: opaque, dirName: dirName, mountPoint: mp, archiver: archiver}

	if appendToPath {
		if d.searchTail == nil {
			d.searchHead = handle
		} else {
			d.searchTail.next = handle
		}

		d.searchTail = handle
	} else {
		handle.next = d.searchHead
		d.searchHead = handle

		if d.searchTail == nil {
			d.searchTail = handle
		}
	}

	return nil
}

// probeArchivers tries the DIR backend first (when fname looks like a
// directory), then every registered archiver in order, rewinding io
// ahead of each attempt as the Archiver contract requires.
func probeArchivers(io Io, fname string) (any, Archiver, error) {
	dir := dirArchiver{}

	if opaque, claimed, err := dir.OpenArchive(io, fname, false); claimed {
		if err != nil {
			return nil, nil, err
		}

		return opaque, dir, nil
	}

	for _, a := range registeredArchivers {
		if io != nil {
			if err := io.Seek(0); err != nil {
				return nil, nil, newPassthroughError(err)
			}
		}

		opaque, claimed, err := a.OpenArchive(io, fname, false)
		if claimed {
			if err != nil {
				return nil, nil, err
			}

			return opaque, a, nil
		}
	}

	return nil, nil, newError(Unsupported)
}

// Unmount detaches the DirHandle whose dirName equals name (spec.md
// §4.4). Refuses with FilesStillOpen if any open read handle still
// references it.
func (d *Drive) Unmount(name string) error {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	if !d.initialized {
		return fail(d, newError(NotInitialized))
	}

	var prev *DirHandle

	cur := d.searchHead

	for cur != nil && cur.dirName != name {
		prev = cur
		cur = cur.next
	}

	if cur == nil {
		return fail(d, newError(NotMounted))
	}

	for fh := d.openReadHead; fh != nil; fh = fh.next {
		if fh.dirHandle == cur {
			return fail(d, newError(FilesStillOpen))
		}
	}

	if prev == nil {
		d.searchHead = cur.next
	} else {
		prev.next = cur.next
	}

	if d.searchTail == cur {
		d.searchTail = prev
	}

	_ = cur.archiver.CloseArchive(cur.opaque)

	return nil
}

// GetSearchPath returns the mounted DirHandles in search order
// (head-to-tail, spec.md §4.4).
func (d *Drive) GetSearchPath() []*DirHandle {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	var out []*DirHandle
	for h := d.searchHead; h != nil; h = h.next {
		out = append(out, h)
	}

	return out
}

// GetMountPoint returns the mountpoint of the DirHandle whose dirName
// equals name, or ("", NotMounted) if there is none.
func (d *Drive) GetMountPoint(name string) (string, error) {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	for h := d.searchHead; h != nil; h = h.next {
		if h.dirName == name {
			return h.GetMountPoint(), nil
		}
	}

	return "", fail(d, newError(NotMounted))
}

// SetWriteDir installs dir as the single write destination (spec.md
// §4.9). Closing the previous write dir fails if write handles are still
// open against it. A nil/empty path clears the write dir without
// installing a new one.
func (d *Drive) SetWriteDir(dir string) error {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	if !d.initialized {
		return fail(d, newError(NotInitialized))
	}

	if d.writeDir != nil {
		if d.openWriteHead != nil {
			return fail(d, newError(FilesStillOpen))
		}

		_ = d.writeDir.archiver.CloseArchive(d.writeDir.opaque)
		d.writeDir = nil
	}

	if dir == "" {
		return nil
	}

	io, err := newNativeFileIO(dir, 0, 0)
	if err != nil {
		io = nil
	}

	opaque, archiver, err := probeWritableArchiver(io, dir)
	if err != nil {
		return fail(d, err)
	}

	d.writeDir = &DirHandle{opaque: opaque, dirName: dir, mountPoint: "/", archiver: archiver}

	return nil
}

func probeWritableArchiver(io Io, dir string) (any, Archiver, error) {
	dirA := dirArchiver{}
	if opaque, claimed, err := dirA.OpenArchive(io, dir, true); claimed {
		if err != nil {
			return nil, nil, err
		}

		return opaque, dirA, nil
	}

	for _, a := range registeredArchivers {
		if io != nil {
			if err := io.Seek(0); err != nil {
				return nil, nil, newPassthroughError(err)
			}
		}

		opaque, claimed, err := a.OpenArchive(io, dir, true)
		if claimed {
			if err != nil {
				return nil, nil, err
			}

			return opaque, a, nil
		}
	}

	return nil, nil, newError(Unsupported)
}

// GetWriteDir returns the source path of the current write directory, or
// "" if none is set.
func (d *Drive) GetWriteDir() string {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	if d.writeDir == nil {
		return ""
	}

	return d.writeDir.dirName
}
