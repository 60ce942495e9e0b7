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

// verifyPath checks fname against handle's mountpoint confinement and
// (when the Drive forbids them) symlink policy, per spec.md §4.1. On
// success it returns the archive-relative name the backend should
// receive. allowMissing lets the path end in segments that do not exist
// yet (used by Mkdir and OpenWrite).
func (d *Drive) verifyPath(handle *DirHandle, fname string, allowMissing bool) (string, error) {
	relative, ok := stripMountPoint(handle.mountPoint, fname)
	if !ok {
		return "", newError(NotFound)
	}

	if d.allowSymLinks || !handle.archiver.Descriptor().SupportsSymlinks {
		return relative, nil
	}

	if err := d.checkNoIntermediateSymlinks(handle, relative, allowMissing); err != nil {
		return "", err
	}

	return relative, nil
}

// checkNoIntermediateSymlinks stats each segment of relative in turn; if
// any non-final segment resolves to a symlink, it fails SymlinkForbidden
// (spec.md §4.1). When allowMissing is set, the first segment that does
// not exist ends the check successfully (nothing below it can be a
// symlink); otherwise the backend's own Stat failure is surfaced.
func (d *Drive) checkNoIntermediateSymlinks(handle *DirHandle, relative string, allowMissing bool) error {
	if relative == "" {
		return nil
	}

	pi := newPathIterator(relative)

	for pi.next() {
		path := pi.upTo()

		st, err := handle.archiver.Stat(handle.opaque, path)
		if err != nil {
			if allowMissing {
				return nil
			}

			return newPassthroughError(err)
		}

		if st.FileType == FileTypeSymlink && !pi.isLast() {
			return newError(SymlinkForbidden)
		}
	}

	return nil
}
