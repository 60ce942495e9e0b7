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
	"sort"
	"strings"
)

// Enumerate walks path's children across every mounted DirHandle (spec.md
// §4.7): a handle whose mountpoint lies strictly below path contributes a
// synthesized next-segment entry; a handle that actually owns path
// contributes its backend's real enumeration. When the Drive forbids
// symlinks and the backend declares SupportsSymlinks, entries that stat
// as symlinks are silently dropped before reaching cb.
func (d *Drive) Enumerate(path string, cb EnumerateCallback, data any) error {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	if !d.initialized {
		return fail(d, newError(NotInitialized))
	}

	clean, err := sanitize(path)
	if err != nil {
		return fail(d, err)
	}

	seen := make(map[string]bool)

	stopped := false
	userCB := cb
	cb = func(origdir, name string, data any) CallbackResult {
		r := userCB(origdir, name, data)
		if r == CallbackStop {
			stopped = true
		}

		return r
	}

	filtered := func(h *DirHandle) EnumerateCallback {
		if d.allowSymLinks || !h.archiver.Descriptor().SupportsSymlinks {
			return cb
		}

		return func(origdir, name string, data any) CallbackResult {
			st, err := h.archiver.Stat(h.opaque, joinRelative(trimRelative(h, clean), name))
			if err == nil && st.FileType == FileTypeSymlink {
				return CallbackOK
			}

			return cb(origdir, name, data)
		}
	}

	for h := d.searchHead; h != nil; h = h.next {
		if partOfMountPoint(h.mountPoint, clean) {
			next := nextMountSegment(h.mountPoint, clean)
			if next != "" && !seen[next] {
				seen[next] = true

				switch cb(path, next, data) {
				case CallbackStop:
					return nil
				case CallbackError:
					return fail(d, newError(AppCallback))
				}
			}

			continue
		}

		relative, ok := stripMountPoint(h.mountPoint, clean)
		if !ok {
			continue
		}

		st, err := h.archiver.Stat(h.opaque, relative)
		if err != nil || st.FileType != FileTypeDirectory {
			continue
		}

		if err := h.archiver.Enumerate(h.opaque, relative, dedupCallback(seen, filtered(h)), path, data); err != nil {
			return fail(d, err)
		}

		if stopped {
			return nil
		}
	}

	return nil
}

func dedupCallback(seen map[string]bool, cb EnumerateCallback) EnumerateCallback {
	return func(origdir, name string, data any) CallbackResult {
		if seen[name] {
			return CallbackOK
		}

		seen[name] = true

		return cb(origdir, name, data)
	}
}

func trimRelative(h *DirHandle, clean string) string {
	relative, _ := stripMountPoint(h.mountPoint, clean)
	return relative
}

func joinRelative(dir, name string) string {
	if dir == "" {
		return name
	}

	return dir + "/" + name
}

// nextMountSegment returns the path segment of mountPoint that comes
// right after clean, synthesizing the virtual directory entry Enumerate
// must produce for an ancestor of a mountpoint (spec.md §4.7).
func nextMountSegment(mountPoint, clean string) string {
	trimmed := mountPoint[:len(mountPoint)-1] // drop trailing '/'

	rest := trimmed
	if clean != "" {
		rest = trimmed[len(clean)+1:]
	}

	if rest == "" {
		return ""
	}

	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		return rest[:idx]
	}

	return rest
}

// EnumerateFiles is the convenience form of Enumerate described in
// spec.md §4.7: it collects every entry into a sorted, duplicate-free
// slice, using binary-search insertion exactly as the spec's
// enumerateFiles scenario (§8 Scenario 5) requires.
func (d *Drive) EnumerateFiles(path string) ([]string, error) {
	var names []string

	err := d.Enumerate(path, func(_, name string, _ any) CallbackResult {
		i := sort.SearchStrings(names, name)
		if i < len(names) && names[i] == name {
			return CallbackOK
		}

		names = append(names, "")
		copy(names[i+1:], names[i:])
		names[i] = name

		return CallbackOK
	}, nil)
	if err != nil {
		return nil, err
	}

	return names, nil
}

// EnumerateFilesCallback variant that lets the caller supply their own
// callback directly, without the sorting/dedup behavior of
// EnumerateFiles — a thin alias kept for API parity with spec.md §6.
func (d *Drive) EnumerateFilesCallback(path string, cb EnumerateCallback, data any) error {
	return d.Enumerate(path, cb, data)
}
