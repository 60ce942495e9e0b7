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

// Package dirtree is the in-memory hashed directory index described in
// spec.md §3/§4.8, reusable by any Archiver that needs random access to
// an archive's table of contents (a zip central directory, a tar index,
// and so on — none of which are in scope for this module; see spec.md
// §1's Non-goals).
package dirtree

import (
	"errors"

	"github.com/cespare/xxhash/v2"
)

// ErrCorrupt is returned by Add when an ancestor directory already
// exists under the requested name but is not itself a directory
// (spec.md §4.8).
var ErrCorrupt = errors.New("dirtree: corrupt")

// Entry is one node of the tree. P is the backend-defined payload the
// spec's C header describes as trailing bytes "immediately following
// each node header" (spec.md §3) — here it is just a typed field, since
// Go has no reason to hand-layout an arena the way the original does.
type Entry[P any] struct {
	name     string
	isDir    bool
	payload  P
	parent   *Entry[P]
	children *Entry[P] // head of this entry's children, linked via sibling
	sibling  *Entry[P]
	hashNext *Entry[P] // next entry in the same hash bucket
}

// Name returns the entry's full slash-path.
func (e *Entry[P]) Name() string { return e.name }

// IsDir reports whether the entry is a directory.
func (e *Entry[P]) IsDir() bool { return e.isDir }

// Payload returns the backend-defined payload attached to this entry.
func (e *Entry[P]) Payload() P { return e.payload }

// SetPayload replaces the backend-defined payload attached to this
// entry.
func (e *Entry[P]) SetPayload(p P) { e.payload = p }

const defaultBuckets = 64

// Tree is a hashed tree keyed by full slash-path, matching the
// invariants in spec.md §3: exactly one root ("/", isDir, no sibling);
// every non-root entry reachable from root via children/sibling; a
// parent's isDir is always true; every entry is also reachable via its
// hash bucket.
type Tree[P any] struct {
	buckets []*Entry[P]
	root    *Entry[P]
}

// New returns an initialized, empty Tree (spec.md §4.8 init).
func New[P any]() *Tree[P] {
	t := &Tree[P]{buckets: make([]*Entry[P], defaultBuckets)}
	t.root = &Entry[P]{name: "/", isDir: true}
	t.putBucket(t.root)

	return t
}

func (t *Tree[P]) bucketIndex(name string) int {
	return int(xxhash.Sum64String(name) % uint64(len(t.buckets)))
}

func (t *Tree[P]) putBucket(e *Entry[P]) {
	idx := t.bucketIndex(e.name)
	e.hashNext = t.buckets[idx]
	t.buckets[idx] = e
}

// Find looks up path, moving the hit to the head of its bucket so that
// repeated lookups of the same hot entry stay cheap (spec.md §4.8's
// move-to-front policy; spec.md §9 notes any equivalent caching policy is
// acceptable as long as enumeration order is unaffected).
func (t *Tree[P]) Find(path string) (*Entry[P], bool) {
	if path == "" || path == "/" {
		return t.root, true
	}

	idx := t.bucketIndex(path)

	var prev *Entry[P]

	for e := t.buckets[idx]; e != nil; e = e.hashNext {
		if e.name == path {
			if prev != nil {
				prev.hashNext = e.hashNext
				e.hashNext = t.buckets[idx]
				t.buckets[idx] = e
			}

			return e, true
		}

		prev = e
	}

	return nil, false
}

// Add inserts path (a directory if isDir, a leaf otherwise), first
// ensuring every ancestor directory exists — creating missing ones along
// the way — per spec.md §4.8. It fails ErrCorrupt if an ancestor already
// exists but is not a directory.
func (t *Tree[P]) Add(path string, isDir bool) (*Entry[P], error) {
	if e, ok := t.Find(path); ok {
		if e.isDir != isDir {
			return nil, ErrCorrupt
		}

		return e, nil
	}

	parentPath, name := splitPath(path)

	parent, err := t.ensureDir(parentPath)
	if err != nil {
		return nil, err
	}

	e := &Entry[P]{name: path, isDir: isDir, parent: parent}
	e.sibling = parent.children
	parent.children = e

	t.putBucket(e)

	return e, nil
}

func (t *Tree[P]) ensureDir(path string) (*Entry[P], error) {
	if path == "" {
		return t.root, nil
	}

	if e, ok := t.Find(path); ok {
		if !e.isDir {
			return nil, ErrCorrupt
		}

		return e, nil
	}

	return t.Add(path, true)
}

func splitPath(path string) (parent, name string) {
	idx := lastSlash(path)
	if idx < 0 {
		return "", path
	}

	return path[:idx], path[idx+1:]
}

func lastSlash(path string) int {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return i
		}
	}

	return -1
}

// Enumerate calls cb with the basename of each direct child of dir
// (spec.md §4.8). Order is unspecified beyond "children list" order; the
// VFS core sorts and deduplicates at a higher layer when that matters
// (see spec.md §4.7 enumerateFiles).
func (t *Tree[P]) Enumerate(dir string, cb func(name string)) bool {
	e, ok := t.Find(dir)
	if !ok || !e.isDir {
		return false
	}

	for c := e.children; c != nil; c = c.sibling {
		_, name := splitPath(c.name)
		cb(name)
	}

	return true
}
