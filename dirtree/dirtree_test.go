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

package dirtree

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHasExactlyOneRoot(t *testing.T) {
	tr := New[int]()

	root, ok := tr.Find("/")
	require.True(t, ok)
	assert.True(t, root.IsDir())
	assert.Equal(t, "/", root.Name())

	root2, ok := tr.Find("")
	require.True(t, ok)
	assert.Same(t, root, root2)
}

func TestAddCreatesMissingAncestors(t *testing.T) {
	tr := New[string]()

	leaf, err := tr.Add("a/b/c.txt", false)
	require.NoError(t, err)
	assert.Equal(t, "a/b/c.txt", leaf.Name())
	assert.False(t, leaf.IsDir())

	a, ok := tr.Find("a")
	require.True(t, ok)
	assert.True(t, a.IsDir())

	b, ok := tr.Find("a/b")
	require.True(t, ok)
	assert.True(t, b.IsDir())

	var children []string

	ok = tr.Enumerate("a/b", func(name string) { children = append(children, name) })
	require.True(t, ok)
	assert.Equal(t, []string{"c.txt"}, children)
}

func TestAddRejectsTypeMismatchOnAncestor(t *testing.T) {
	tr := New[int]()

	_, err := tr.Add("a", false) // "a" is a file
	require.NoError(t, err)

	_, err = tr.Add("a/b", true) // now treating "a" as a directory
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestAddIsIdempotentForSameType(t *testing.T) {
	tr := New[int]()

	e1, err := tr.Add("x/y", true)
	require.NoError(t, err)

	e2, err := tr.Add("x/y", true)
	require.NoError(t, err)
	assert.Same(t, e1, e2)
}

func TestFindMovesHitToFrontOfBucket(t *testing.T) {
	tr := New[int]()

	names := []string{"one", "two", "three", "four", "five", "six"}
	for _, n := range names {
		_, err := tr.Add(n, false)
		require.NoError(t, err)
	}

	// Exercise every lookup; each hit must end up at the head of its
	// bucket, and move-to-front must never lose an entry or change what
	// Find reports, regardless of access order.
	for i := 0; i < 3; i++ {
		for _, n := range names {
			e, ok := tr.Find(n)
			require.True(t, ok, "round %d: %s", i, n)
			assert.Equal(t, n, e.Name())
			assert.Same(t, e, tr.buckets[tr.bucketIndex(n)], "round %d: %s", i, n)
		}
	}
}

func TestEnumerateUnknownDirFails(t *testing.T) {
	tr := New[int]()

	ok := tr.Enumerate("nope", func(string) {})
	assert.False(t, ok)
}

func TestEnumerateChildrenSet(t *testing.T) {
	tr := New[int]()

	for _, p := range []string{"d/foo", "d/bar", "d/baz", "d/sub/deep"} {
		_, err := tr.Add(p, false)
		require.NoError(t, err)
	}

	// "d/sub/deep" makes "d/sub" a directory entry among d's children.
	var got []string

	ok := tr.Enumerate("d", func(name string) { got = append(got, name) })
	require.True(t, ok)

	sort.Strings(got)
	assert.Equal(t, []string{"bar", "baz", "foo", "sub"}, got)
}

func TestPayloadRoundTrip(t *testing.T) {
	type meta struct {
		size int64
	}

	tr := New[meta]()

	e, err := tr.Add("f", false)
	require.NoError(t, err)

	e.SetPayload(meta{size: 42})

	got, ok := tr.Find("f")
	require.True(t, ok)
	assert.Equal(t, int64(42), got.Payload().size)
}
