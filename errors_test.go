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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetErrorByCodeUnknown(t *testing.T) {
	assert.Equal(t, "unknown error", GetErrorByCode(Code(-1)))
	assert.Equal(t, "unknown error", GetErrorByCode(Code(len(messages)+5)))
	assert.Equal(t, "no error", GetErrorByCode(OK))
}

func TestSetErrorCodeOKIsANoOp(t *testing.T) {
	var l errorList

	l.setErrorCode(OK)
	assert.Nil(t, l.head, "setErrorCode(OK) must not allocate a record")
}

// Per-thread errors (spec.md §8): goroutine A's setErrorCode(X) does not
// change goroutine B's getLastErrorCode() on the same Drive.
func TestPerGoroutineErrorIsolation(t *testing.T) {
	d := newTestDrive(t)

	var wg sync.WaitGroup

	var aSaw, bSaw Code

	aReady := make(chan struct{})
	bDone := make(chan struct{})

	wg.Add(2)

	go func() {
		defer wg.Done()

		d.SetErrorCode(NotFound)
		close(aReady)
		<-bDone

		aSaw = d.GetLastErrorCode()
	}()

	go func() {
		defer wg.Done()

		<-aReady

		bSaw = d.GetLastErrorCode() // must observe OK: never set on this goroutine
		close(bDone)
	}()

	wg.Wait()

	assert.Equal(t, OK, bSaw, "goroutine B must not observe goroutine A's error")
	assert.Equal(t, NotFound, aSaw, "goroutine A must still observe its own error")
}

func TestGetLastErrorCodeResetsToOK(t *testing.T) {
	d := newTestDrive(t)

	d.SetErrorCode(Busy)
	require.Equal(t, Busy, d.GetLastErrorCode())
	assert.Equal(t, OK, d.GetLastErrorCode(), "reading an error resets it to OK")
}
