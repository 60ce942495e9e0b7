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
	"path/filepath"
	"sync"

	"github.com/vfscore/vfs/internal/platform"
)

// NumDrives is the size of the fixed instance registry (spec.md §3's
// "Instance registry"). Each element is a fully independent VFS instance
// sharing nothing but the immutable Archiver registry.
const NumDrives = 8

// Drive is one independent VFS instance (the "drive" of spec.md §2.9).
// The zero value is not ready for use; call Init first.
//
// Per the Design Notes' allowance for idiom substitution, callers that
// prefer the C-shaped "pass an index everywhere" style can use
// ByIndex(dv) to fetch a *Drive out of the fixed registry; callers
// writing ordinary Go can just construct their own *Drive with New and
// pass the pointer around instead of an index.
type Drive struct {
	stateMu sync.Mutex

	initialized   bool
	allocator     Allocator
	baseDir       string
	userDir       string
	prefDir       string
	searchHead    *DirHandle
	searchTail    *DirHandle
	writeDir      *DirHandle
	openReadHead  *FileHandle
	openWriteHead *FileHandle
	allowSymLinks bool

	errs errorList
}

// drives is the fixed, compile-time registry described in spec.md §2.9.
var drives [NumDrives]Drive

// ByIndex returns the drive at index dv, matching the C-style instance
// registry. Panics if dv is out of [0, NumDrives) — a programmer error,
// not a runtime condition callers are expected to recover from.
func ByIndex(dv int) *Drive {
	return &drives[dv]
}

// New returns a freshly zeroed, not-yet-initialized Drive, independent
// from the fixed registry. Prefer this in ordinary Go code; reserve
// ByIndex for code that mirrors the original drive-index calling
// convention.
func New() *Drive {
	return &Drive{}
}

// IsInit reports whether Init has succeeded and Deinit has not since run.
func (d *Drive) IsInit() bool {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	return d.initialized
}

// Init brings up one Drive (spec.md §4.9). argv0 is used to derive
// baseDir when the platform layer offers no better hook (on Linux it
// does whenever /proc/self/exe resolves); Init fails Argv0IsNull when
// both are empty.
func (d *Drive) Init(argv0 string) error {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	if d.initialized {
		return newError(IsInitialized)
	}

	if d.allocator == nil {
		d.allocator = defaultAllocator
	}

	baseDir := platform.BaseDir()
	if baseDir == "" {
		if argv0 == "" {
			d.doDeinitLocked()
			return newError(Argv0IsNull)
		}

		baseDir = filepath.Dir(argv0)
	}

	d.baseDir = ensureTrailingSep(baseDir)

	userDir := platform.UserDir()
	if userDir == "" {
		userDir = d.baseDir
	}

	d.userDir = ensureTrailingSep(userDir)

	d.initialized = true

	return nil
}

// Deinit tears down a Drive (spec.md §4.9): closes write handles
// (flushing each), clears the write dir, frees the search path, and
// resets all state. Deinit on a Drive with open read handles still
// succeeds but leaves those handles internally invalid — callers are
// expected to Close their handles first, matching the spec's narrative
// that "the behavior is: close the handles first".
func (d *Drive) Deinit() error {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	if !d.initialized {
		return newError(NotInitialized)
	}

	d.doDeinitLocked()

	return nil
}

func (d *Drive) doDeinitLocked() {
	for fh := d.openWriteHead; fh != nil; {
		next := fh.next
		_ = d.flushLocked(fh)
		_ = fh.io.Close()
		fh = next
	}

	d.openWriteHead = nil

	if d.writeDir != nil {
		_ = d.writeDir.archiver.CloseArchive(d.writeDir.opaque)
		d.writeDir = nil
	}

	for fh := d.openReadHead; fh != nil; {
		next := fh.next
		_ = fh.io.Close()
		fh = next
	}

	d.openReadHead = nil

	for h := d.searchHead; h != nil; {
		next := h.next
		_ = h.archiver.CloseArchive(h.opaque)
		h = next
	}

	d.searchHead = nil
	d.searchTail = nil
	d.baseDir = ""
	d.userDir = ""
	d.prefDir = ""
	d.allowSymLinks = false
	d.initialized = false
}

func ensureTrailingSep(path string) string {
	if path == "" || path[len(path)-1] == '/' {
		return path
	}

	return path + "/"
}

// GetBaseDir returns the directory holding the running program, always
// terminated with '/'.
func (d *Drive) GetBaseDir() string {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	return d.baseDir
}

// GetUserDir returns the calling user's preferred data directory, always
// terminated with '/'.
func (d *Drive) GetUserDir() string {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	return d.userDir
}

// GetPrefDir returns (and caches) the per-organization/app preference
// directory, derived via the platform layer.
func (d *Drive) GetPrefDir(org, app string) (string, error) {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	if !d.initialized {
		return "", newError(NotInitialized)
	}

	if d.prefDir == "" {
		dir, err := platform.PrefDir(org, app)
		if err != nil {
			return "", newPassthroughError(err)
		}

		d.prefDir = ensureTrailingSep(dir)
	}

	return d.prefDir, nil
}

// PermitSymbolicLinks flips the allowSymLinks policy applied by every
// subsequent verifyPath call on this Drive (spec.md §4.9).
func (d *Drive) PermitSymbolicLinks(allow bool) {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	d.allowSymLinks = allow
}

// SymbolicLinksPermitted reports the current symlink policy.
func (d *Drive) SymbolicLinksPermitted() bool {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	return d.allowSymLinks
}

// SetAllocator installs a that this Drive uses for its internal buffers.
// Must be called before Init (spec.md §2.2: "selected per instance").
func (d *Drive) SetAllocator(a Allocator) {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	d.allocator = a
}

// GetAllocator returns the Allocator currently in effect.
func (d *Drive) GetAllocator() Allocator {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	return d.allocatorLocked()
}

// allocatorLocked is GetAllocator's body for call sites that already hold
// stateMu (stateMu is not reentrant, so they must not call GetAllocator
// itself).
func (d *Drive) allocatorLocked() Allocator {
	if d.allocator == nil {
		return defaultAllocator
	}

	return d.allocator
}

func (d *Drive) setErrorCode(code Code) {
	d.errs.setErrorCode(code)
}

// GetLastErrorCode reads and resets the calling goroutine's last error on
// this Drive (spec.md §5: per-thread, independent across goroutines).
func (d *Drive) GetLastErrorCode() Code {
	return d.errs.getLastErrorCode()
}

// GetLastError is GetLastErrorCode's message-string counterpart.
func (d *Drive) GetLastError() string {
	return GetErrorByCode(d.errs.getLastErrorCode())
}

// SetErrorCode records code as the calling goroutine's last error,
// exactly like an internal failure would (spec.md §6 setErrorCode is
// public so application-level callback code can report APP_CALLBACK and
// the like through the same channel).
func (d *Drive) SetErrorCode(code Code) {
	d.errs.setErrorCode(code)
}

// fail records err's code on the calling goroutine and returns err
// unchanged, so call sites can write `return fail(d, err)`.
func fail(d *Drive, err error) error {
	d.setErrorCode(CodeOf(err))
	return err
}
