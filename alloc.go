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

import "sync"

// Allocator is the swappable memory-pooling seam described in spec.md
// §2.2. Go has no Malloc/Realloc/Free of its own to swap out, so this is
// shaped around what a Go caller can actually replace: where transient
// buffers (read-ahead chunks, copy scratch space) come from. Init/Deinit
// are part of the interface for allocators that wrap an external arena;
// Drive.Init and Drive.Deinit do not call them.
type Allocator interface {
	Get(size int) []byte
	Put(buf []byte)
	Init() error
	Deinit()
}

// poolAllocator is the default Allocator: a sync.Pool of byte slices,
// the same shape as avfs.Config's bufPool (github.com/avfs/avfs,
// config.go).
type poolAllocator struct {
	pool *sync.Pool
}

// NewPoolAllocator returns an Allocator backed by a sync.Pool of
// bufSize-byte buffers.
func NewPoolAllocator(bufSize int) Allocator {
	return &poolAllocator{
		pool: &sync.Pool{
			New: func() any {
				buf := make([]byte, bufSize)
				return &buf
			},
		},
	}
}

func (a *poolAllocator) Get(size int) []byte {
	buf := *a.pool.Get().(*[]byte)
	if cap(buf) < size {
		return make([]byte, size)
	}

	return buf[:size]
}

func (a *poolAllocator) Put(buf []byte) {
	a.pool.Put(&buf)
}

func (*poolAllocator) Init() error {
	return nil
}

func (*poolAllocator) Deinit() {}

// defaultAllocator is installed on a Drive that never calls SetAllocator,
// matching spec.md §4.9 ("installs default allocator if none set").
var defaultAllocator = NewPoolAllocator(32 * 1024)
