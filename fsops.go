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

import "time"

// Mkdir creates name (and, per the write backend's own semantics, any
// parents it chooses to create) against the write directory.
func (d *Drive) Mkdir(name string) error {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	if !d.initialized {
		return fail(d, newError(NotInitialized))
	}

	if d.writeDir == nil {
		return fail(d, newError(NoWriteDir))
	}

	clean, err := sanitize(name)
	if err != nil {
		return fail(d, err)
	}

	relative, err := d.verifyPath(d.writeDir, clean, true)
	if err != nil {
		return fail(d, err)
	}

	if err := d.writeDir.archiver.Mkdir(d.writeDir.opaque, relative); err != nil {
		return fail(d, err)
	}

	return nil
}

// Delete removes name from the write directory.
func (d *Drive) Delete(name string) error {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	if !d.initialized {
		return fail(d, newError(NotInitialized))
	}

	if d.writeDir == nil {
		return fail(d, newError(NoWriteDir))
	}

	clean, err := sanitize(name)
	if err != nil {
		return fail(d, err)
	}

	relative, err := d.verifyPath(d.writeDir, clean, false)
	if err != nil {
		return fail(d, err)
	}

	if err := d.writeDir.archiver.Remove(d.writeDir.opaque, relative); err != nil {
		return fail(d, err)
	}

	return nil
}

// resolveLocked finds the first DirHandle in search order whose
// verifyPath accepts clean and whose backend can Stat it, returning both
// the handle and the archive-relative name. Used by every read-only
// metadata query.
func (d *Drive) resolveLocked(clean string) (*DirHandle, string, Stat, error) {
	var lastErr error = newError(NotFound)

	for h := d.searchHead; h != nil; h = h.next {
		relative, err := d.verifyPath(h, clean, false)
		if err != nil {
			lastErr = err
			continue
		}

		st, err := h.archiver.Stat(h.opaque, relative)
		if err != nil {
			lastErr = err
			continue
		}

		return h, relative, st, nil
	}

	return nil, "", Stat{}, lastErr
}

// Exists reports whether name resolves to anything in the search path.
func (d *Drive) Exists(name string) bool {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	clean, err := sanitize(name)
	if err != nil {
		return false
	}

	_, _, _, err = d.resolveLocked(clean)

	return err == nil
}

// Stat returns metadata for name, resolved through the search path.
func (d *Drive) Stat(name string) (Stat, error) {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	if !d.initialized {
		return Stat{}, fail(d, newError(NotInitialized))
	}

	clean, err := sanitize(name)
	if err != nil {
		return Stat{}, fail(d, err)
	}

	_, _, st, err := d.resolveLocked(clean)
	if err != nil {
		return Stat{}, fail(d, err)
	}

	return st, nil
}

// IsDirectory reports whether name resolves to a directory.
func (d *Drive) IsDirectory(name string) bool {
	st, err := d.Stat(name)
	return err == nil && st.FileType == FileTypeDirectory
}

// IsSymbolicLink reports whether name resolves to a symbolic link. This
// bypasses the Drive's own symlink policy (it is, after all, the call
// applications use to discover whether a path is one).
func (d *Drive) IsSymbolicLink(name string) bool {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	clean, err := sanitize(name)
	if err != nil {
		return false
	}

	for h := d.searchHead; h != nil; h = h.next {
		relative, ok := stripMountPoint(h.mountPoint, clean)
		if !ok {
			continue
		}

		st, err := h.archiver.Stat(h.opaque, relative)
		if err != nil {
			continue
		}

		return st.FileType == FileTypeSymlink
	}

	return false
}

// GetLastModTime returns name's modification time.
func (d *Drive) GetLastModTime(name string) (time.Time, error) {
	st, err := d.Stat(name)
	if err != nil {
		return time.Time{}, err
	}

	return st.ModTime, nil
}

// GetRealDir returns the dirName of the DirHandle that resolves name, or
// "" if nothing in the search path does.
func (d *Drive) GetRealDir(name string) string {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	clean, err := sanitize(name)
	if err != nil {
		return ""
	}

	h, _, _, err := d.resolveLocked(clean)
	if err != nil {
		return ""
	}

	return h.dirName
}
