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

package vfstest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsDeterministicForSameSeed(t *testing.T) {
	opts := RndTreeOpts{NbDirs: 5, NbFiles: 10, MaxFileSize: 64, MaxDepth: 3, Seed: 7}

	a := NewRndTree(opts)
	b := NewRndTree(opts)

	assert.Equal(t, a.Dirs(), b.Dirs())
	assert.Equal(t, a.Files(), b.Files())
}

func TestCreateMaterializesTree(t *testing.T) {
	rt := NewRndTree(RndTreeOpts{NbDirs: 4, NbFiles: 8, MaxFileSize: 32, MaxDepth: 2, Seed: 99})

	base := t.TempDir()
	require.NoError(t, rt.Create(base))

	for _, d := range rt.Dirs() {
		info, err := os.Stat(filepath.Join(base, filepath.FromSlash(d.Name)))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	for _, f := range rt.Files() {
		got, err := os.ReadFile(filepath.Join(base, filepath.FromSlash(f.Name)))
		require.NoError(t, err)
		assert.Equal(t, f.Content, got)
	}
}

func TestNegativeOptsClampToZero(t *testing.T) {
	rt := NewRndTree(RndTreeOpts{NbDirs: -1, NbFiles: -1, MaxDepth: -1})

	assert.Empty(t, rt.Dirs())
	assert.Empty(t, rt.Files())
}
