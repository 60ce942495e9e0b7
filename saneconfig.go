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
	"strings"

	"github.com/vfscore/vfs/internal/platform"
)

// SetSaneConfig wires up the conventional setup described in spec.md §6:
// the write directory becomes the per-org/app preference directory,
// appended to the search path before anything else this call mounts, so
// it is searched ahead of the base directory and, unless archivesFirst
// is set, ahead of the archives; the base directory is scanned for files
// ending in archiveExt and each is mounted, either prepended to the
// whole search path (archivesFirst) or appended behind the base
// directory itself; includeCd additionally mounts the base directory's
// own contents as a plain directory source.
//
// Per Open Question 3, per-mount failures while scanning for archives
// are swallowed: a missing or unreadable archive does not abort the
// whole call, and the caller has no way to learn which ones failed.
func (d *Drive) SetSaneConfig(org, app, archiveExt string, includeCd, archivesFirst bool) error {
	prefDir, err := d.GetPrefDir(org, app)
	if err != nil {
		return err
	}

	if err := d.SetWriteDir(prefDir); err != nil {
		return err
	}

	if err := d.Mount(prefDir, "", true); err != nil {
		return err
	}

	baseDir := d.GetBaseDir()
	if baseDir == "" {
		return nil
	}

	if includeCd {
		_ = d.Mount(baseDir, "", true)
	}

	if archiveExt == "" {
		return nil
	}

	names, err := platform.ReadDir(baseDir)
	if err != nil {
		return nil //nolint:nilerr // scanning failure is not fatal to SetSaneConfig.
	}

	ext := "." + strings.ToLower(strings.TrimPrefix(archiveExt, "."))

	for _, name := range names {
		if !strings.HasSuffix(strings.ToLower(name), ext) {
			continue
		}

		full := baseDir + name
		_ = d.Mount(full, "", !archivesFirst)
	}

	return nil
}
