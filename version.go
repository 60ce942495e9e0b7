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

import "github.com/vfscore/vfs/internal/platform"

// Version identifies this package's release, mirroring spec.md §6's
// getLinkedVersion.
type Version struct {
	Major, Minor, Patch int
}

func (v Version) String() string {
	return itoa(v.Major) + "." + itoa(v.Minor) + "." + itoa(v.Patch)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	var buf [20]byte

	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}

	return string(buf[i:])
}

// linkedVersion is the version of the package actually linked into the
// running binary, as opposed to whatever headers a caller compiled
// against — a distinction inherited from the C original that is vestigial
// in Go (there is exactly one version: the one in the build) but kept for
// API parity.
var linkedVersion = Version{Major: 1, Minor: 0, Patch: 0}

// GetLinkedVersion returns the version of this package linked into the
// running binary.
func GetLinkedVersion() Version {
	return linkedVersion
}

// GetDirSeparator returns this platform's directory separator character.
func GetDirSeparator() string {
	return platform.DirSeparator
}

// FreeList is a vestige of the original API's manual memory management
// (spec.md §6): a caller-owned list of strings returned by certain
// operations there needed an explicit free call. Go's garbage collector
// makes this unnecessary, so FreeList is a no-op kept only so ported
// call sites compile unchanged.
func FreeList(_ []string) {}
