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
	"bytes"
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// Code is a closed error taxonomy shared by every operation in the package.
// Zero value is OK.
type Code int

const (
	OK Code = iota
	OtherError
	OutOfMemory
	NotInitialized
	IsInitialized
	Argv0IsNull
	Unsupported
	PastEOF
	FilesStillOpen
	InvalidArgument
	NotMounted
	NotFound
	SymlinkForbidden
	NoWriteDir
	OpenForReading
	OpenForWriting
	NotAFile
	ReadOnly
	Corrupt
	SymlinkLoop
	IO
	Permission
	NoSpace
	BadFilename
	Busy
	DirNotEmpty
	OSError
	Duplicate
	BadPassword
	AppCallback
)

// messages holds the one-line description returned by GetErrorByCode, in
// Code declaration order.
var messages = [...]string{
	OK:               "no error",
	OtherError:       "other error",
	OutOfMemory:      "out of memory",
	NotInitialized:   "not initialized",
	IsInitialized:    "already initialized",
	Argv0IsNull:      "argv[0] is null",
	Unsupported:      "operation unsupported",
	PastEOF:          "past end of file",
	FilesStillOpen:   "files still open",
	InvalidArgument:  "invalid argument",
	NotMounted:       "not mounted",
	NotFound:         "not found",
	SymlinkForbidden: "symbolic links forbidden",
	NoWriteDir:       "no write directory set",
	OpenForReading:   "file open for reading",
	OpenForWriting:   "file open for writing",
	NotAFile:         "not a file",
	ReadOnly:         "read-only backend",
	Corrupt:          "corrupt",
	SymlinkLoop:      "symbolic link loop",
	IO:               "i/o error",
	Permission:       "permission denied",
	NoSpace:          "no space left on device",
	BadFilename:      "bad filename",
	Busy:             "busy",
	DirNotEmpty:      "directory not empty",
	OSError:          "OS error",
	Duplicate:        "duplicate",
	BadPassword:      "bad password",
	AppCallback:      "application callback reported an error",
}

// GetErrorByCode returns the one-line message associated with code, or
// "unknown error" if code is out of range.
func GetErrorByCode(code Code) string {
	if code < 0 || int(code) >= len(messages) {
		return "unknown error"
	}

	return messages[code]
}

// VFSError is the concrete error type returned by every fallible operation.
// Cause, when non-nil, is the deeper error that this one passed through
// unchanged (see newPassthroughError); it is nil for explicit failures
// raised directly at this layer.
type VFSError struct {
	Code  Code
	cause error
}

func (e *VFSError) Error() string {
	if e.cause != nil {
		return GetErrorByCode(e.Code) + ": " + e.cause.Error()
	}

	return GetErrorByCode(e.Code)
}

func (e *VFSError) Unwrap() error {
	return e.cause
}

// newError raises an explicit failure: a fresh code set at this layer,
// with no deeper cause to preserve.
func newError(code Code) *VFSError {
	return &VFSError{Code: code}
}

// newPassthroughError wraps err, preserving whatever code the deeper
// layer already set, so that the caller still observes the original
// failure after it has bubbled up through intermediate call frames.
func newPassthroughError(err error) *VFSError {
	if err == nil {
		return nil
	}

	var ve *VFSError
	if errors.As(err, &ve) {
		return &VFSError{Code: ve.Code, cause: errors.WithStack(err)}
	}

	return &VFSError{Code: OtherError, cause: errors.WithStack(err)}
}

// CodeOf extracts the Code carried by err. A nil err is reported as OK;
// a non-nil err that carries no Code is reported as OtherError.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}

	var ve *VFSError
	if errors.As(err, &ve) {
		return ve.Code
	}

	return OtherError
}

// errorState is the per-goroutine last-error record for one Drive.
type errorState struct {
	goid uint64
	code Code
	next *errorState
}

// errorList is the singly-linked list described in spec.md §3/§5: a
// per-Drive set of per-goroutine records, guarded by its own mutex. This
// mutex is taken while a Drive's stateMu is held (fail is called from
// inside stateMu critical sections), but stateMu is never acquired while
// this mutex is held.
type errorList struct {
	mu   sync.Mutex
	head *errorState
}

// setErrorCode records code as the calling goroutine's last error on this
// list. Setting OK is a documented no-op: it never allocates a record,
// matching spec.md §5 ("setErrorCode(OK) is a no-op").
func (l *errorList) setErrorCode(code Code) {
	if code == OK {
		return
	}

	id := goroutineID()

	l.mu.Lock()
	defer l.mu.Unlock()

	for st := l.head; st != nil; st = st.next {
		if st.goid == id {
			st.code = code

			return
		}
	}

	l.head = &errorState{goid: id, code: code, next: l.head}
}

// getLastErrorCode reads and resets (to OK) the calling goroutine's last
// error on this list.
func (l *errorList) getLastErrorCode() Code {
	id := goroutineID()

	l.mu.Lock()
	defer l.mu.Unlock()

	for st := l.head; st != nil; st = st.next {
		if st.goid == id {
			code := st.code
			st.code = OK

			return code
		}
	}

	return OK
}

// goroutineID parses the calling goroutine's id out of a runtime stack
// trace. Go exposes no portable, public goroutine id; this is the
// standard fallback technique used by goroutine-local-storage shims, and
// is the one place in this package that falls back to the standard
// library rather than an ecosystem dependency — nothing in the retrieval
// pack ships a goroutine-id library that is actually exercised by any
// call site (see SPEC_FULL.md §5.1).
func goroutineID() uint64 {
	var buf [64]byte

	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	// Expected prefix: "goroutine 123 [running]: ..."
	const prefix = "goroutine "

	b = bytes.TrimPrefix(b, []byte(prefix))

	var id uint64

	for _, c := range b {
		if c < '0' || c > '9' {
			break
		}

		id = id*10 + uint64(c-'0')
	}

	return id
}
