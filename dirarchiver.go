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
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vfscore/vfs/internal/platform"
)

// dirArchiver is the built-in pass-through backend described in
// spec.md §4.3: it exposes a real OS directory as an Archiver, without
// any format parsing. Unlike every other Archiver it is part of THE CORE
// (spec.md §1), so it lives in this package rather than behind
// RegisterArchiver.
type dirArchiver struct{}

// dirArchiverOpaque is what dirArchiver.OpenArchive hands back: the
// archive's base path on the native filesystem, always '/'-terminated.
type dirArchiverOpaque struct {
	base string
}

func (dirArchiver) OpenArchive(_ Io, name string, _ bool) (any, bool, error) {
	info, err := platform.Stat(name)
	if err != nil {
		return nil, false, newPassthroughError(err)
	}

	if !info.IsDir {
		return nil, false, newError(Unsupported)
	}

	base := name
	if !strings.HasSuffix(base, platform.DirSeparator) {
		base += platform.DirSeparator
	}

	return &dirArchiverOpaque{base: base}, true, nil
}

func (dirArchiver) CloseArchive(_ any) error {
	return nil
}

func (dirArchiver) nativePath(opaque any, name string) string {
	o := opaque.(*dirArchiverOpaque)
	return filepath.Join(o.base, filepath.FromSlash(name))
}

func (a dirArchiver) OpenRead(opaque any, name string) (Io, error) {
	io, err := newNativeFileIO(a.nativePath(opaque, name), os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}

	return io, nil
}

func (a dirArchiver) OpenWrite(opaque any, name string) (Io, error) {
	path := a.nativePath(opaque, name)
	if err := platform.Mkdir(filepath.Dir(path)); err != nil {
		return nil, newPassthroughError(err)
	}

	io, err := newNativeFileIO(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}

	return io, nil
}

func (a dirArchiver) OpenAppend(opaque any, name string) (Io, error) {
	path := a.nativePath(opaque, name)
	if err := platform.Mkdir(filepath.Dir(path)); err != nil {
		return nil, newPassthroughError(err)
	}

	io, err := newNativeFileIO(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	if err := io.Seek(mustLength(io)); err != nil {
		return nil, err
	}

	return io, nil
}

func mustLength(io *nativeFileIO) int64 {
	n, err := io.Length()
	if err != nil {
		return 0
	}

	return n
}

func (a dirArchiver) Remove(opaque any, name string) error {
	if err := platform.Delete(a.nativePath(opaque, name)); err != nil {
		return newPassthroughError(err)
	}

	return nil
}

func (a dirArchiver) Mkdir(opaque any, name string) error {
	if err := platform.Mkdir(a.nativePath(opaque, name)); err != nil {
		return newPassthroughError(err)
	}

	return nil
}

func (a dirArchiver) Stat(opaque any, name string) (Stat, error) {
	info, err := platform.Lstat(a.nativePath(opaque, name))
	if err != nil {
		if os.IsNotExist(err) {
			return Stat{}, newError(NotFound)
		}

		return Stat{}, newPassthroughError(err)
	}

	ft := FileTypeRegular

	switch {
	case info.IsSymlink:
		ft = FileTypeSymlink
	case info.IsDir:
		ft = FileTypeDirectory
	}

	return Stat{
		FileSize: info.Size,
		ModTime:  time.Unix(info.ModTime, 0),
		FileType: ft,
		ReadOnly: info.ReadOnly,
	}, nil
}

func (a dirArchiver) Enumerate(opaque any, dir string, cb EnumerateCallback, origdir string, data any) error {
	names, err := platform.ReadDir(a.nativePath(opaque, dir))
	if err != nil {
		return newPassthroughError(err)
	}

	for _, name := range names {
		switch cb(origdir, name, data) {
		case CallbackStop:
			return nil
		case CallbackError:
			return newError(AppCallback)
		}
	}

	return nil
}

func (dirArchiver) Descriptor() Descriptor {
	return Descriptor{
		Extension:        "",
		Description:      "platform-native directory",
		Author:           "vfs authors",
		URL:              "",
		SupportsSymlinks: true,
	}
}
