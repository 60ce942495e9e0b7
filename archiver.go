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

// FileType identifies what a Stat call resolved a path to.
type FileType int

const (
	FileTypeRegular FileType = iota
	FileTypeDirectory
	FileTypeSymlink
	FileTypeOther
)

// Stat describes a filesystem entry as reported by an Archiver.
type Stat struct {
	FileSize    int64
	ModTime     time.Time
	CreateTime  time.Time
	AccessTime  time.Time
	FileType    FileType
	ReadOnly    bool
}

// Descriptor is an archiver's static description (spec.md §4.2/§6).
type Descriptor struct {
	Extension        string // lowercased, no dot
	Description      string
	Author           string
	URL              string
	SupportsSymlinks bool
}

// EnumerateCallback is invoked once per entry found by Archiver.Enumerate.
// origdir is the directory that was enumerated (as the caller supplied
// it); name is the entry's basename. data is the opaque EnumerateFiles
// bag threaded back from the public Enumerate call.
type EnumerateCallback func(origdir, name string, data any) CallbackResult

// CallbackResult is the tri-state application callbacks return (spec.md
// §4.7): OK to keep going, Stop to end traversal successfully, or Error
// to end it as a failure (APP_CALLBACK), unless the backend itself had
// already failed.
type CallbackResult int

const (
	CallbackOK CallbackResult = iota
	CallbackStop
	CallbackError
)

// Archiver is the capability vector a backend format implements
// (spec.md §4.2). Read-only formats return ReadOnly from every
// write-side method. opaque is whatever OpenArchive returned; the core
// never interprets it.
type Archiver interface {
	// OpenArchive probes io as this archiver's format. claimed, when
	// set true, tells the core "this is my format; stop probing other
	// archivers" even if opening otherwise failed. OpenArchive must
	// rewind io to offset 0 before parsing (spec.md §4.2 probe
	// semantics), since the same Io may have already been offered to a
	// prior archiver that also rewound and read from it.
	OpenArchive(io Io, name string, forWriting bool) (opaque any, claimed bool, err error)
	CloseArchive(opaque any) error
	Enumerate(opaque any, dir string, cb EnumerateCallback, origdir string, data any) error
	OpenRead(opaque any, name string) (Io, error)
	OpenWrite(opaque any, name string) (Io, error)
	OpenAppend(opaque any, name string) (Io, error)
	Remove(opaque any, name string) error
	Mkdir(opaque any, name string) error
	Stat(opaque any, name string) (Stat, error)
	Descriptor() Descriptor
}

// registeredArchivers holds format-specific archivers in registration
// order, consulted by Mount after the built-in DIR backend. The DIR
// backend itself is not in this list; Mount always tries it first for
// directory sources (spec.md Open Question 1).
var registeredArchivers []Archiver

// RegisterArchiver adds a format-specific Archiver to the global probe
// order used by Mount. It is meant to be called from init() by archive
// format packages (the core ships none besides the DIR backend; see
// spec.md §1 Non-goals and "out of scope" list).
func RegisterArchiver(a Archiver) {
	registeredArchivers = append(registeredArchivers, a)
}
