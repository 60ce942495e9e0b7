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

// Package vfstest carries test-only helpers, kept importable so
// downstream Archiver implementations can reuse them.
package vfstest

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
)

// RndTreeOpts mirrors the parameters of avfs.RndTreeOpts
// (github.com/avfs/avfs, rndtree.go): the number of directories, files,
// the maximum file size and depth, and the seed of a randomly generated
// tree.
type RndTreeOpts struct {
	NbDirs      int
	NbFiles     int
	MaxFileSize int
	MaxDepth    int
	Seed        int64
}

// RndDir is a generated directory.
type RndDir struct {
	Name  string
	Depth int
}

// RndFile is a generated file, with the random contents already chosen.
type RndFile struct {
	Name    string
	Content []byte
}

// RndTree is a random native-directory tree generator, for populating
// test fixtures without hand-writing a fixed tree for every test case.
type RndTree struct {
	opts  RndTreeOpts
	rnd   *rand.Rand
	dirs  []*RndDir
	files []*RndFile
}

// NewRndTree returns a generator for opts, clamping negative fields to 0.
func NewRndTree(opts RndTreeOpts) *RndTree {
	if opts.NbDirs < 0 {
		opts.NbDirs = 0
	}

	if opts.NbFiles < 0 {
		opts.NbFiles = 0
	}

	if opts.MaxDepth < 0 {
		opts.MaxDepth = 0
	}

	if opts.Seed == 0 {
		opts.Seed = 42
	}

	return &RndTree{opts: opts, rnd: rand.New(rand.NewSource(opts.Seed))}
}

// Generate fills in Dirs()/Files() with a random tree, deterministic for
// a given Seed.
func (rt *RndTree) Generate() {
	if rt.dirs != nil {
		return
	}

	nameIdx := 0
	name := func(prefix string) string {
		nameIdx++
		return fmt.Sprintf("%s-%d", prefix, nameIdx)
	}

	parents := []*RndDir{{Name: ""}}
	dirs := make([]*RndDir, rt.opts.NbDirs)

	for i := 0; i < rt.opts.NbDirs; i++ {
		parent := parents[rt.rnd.Intn(len(parents))]
		path := joinName(parent.Name, name("dir"))
		depth := parent.Depth + 1

		dir := &RndDir{Name: path, Depth: depth}
		dirs[i] = dir

		if depth < rt.opts.MaxDepth {
			parents = append(parents, dir)
		}
	}

	rt.dirs = dirs

	files := make([]*RndFile, rt.opts.NbFiles)

	for i := 0; i < rt.opts.NbFiles; i++ {
		parent := parents[rt.rnd.Intn(len(parents))]
		fileName := joinName(parent.Name, name("file"))

		size := 0
		if rt.opts.MaxFileSize > 0 {
			size = rt.rnd.Intn(rt.opts.MaxFileSize)
		}

		content := make([]byte, size)
		rt.rnd.Read(content)

		files[i] = &RndFile{Name: fileName, Content: content}
	}

	rt.files = files
}

func joinName(parent, leaf string) string {
	if parent == "" {
		return leaf
	}

	return parent + "/" + leaf
}

// Dirs returns the generated directories, in creation order.
func (rt *RndTree) Dirs() []*RndDir {
	rt.Generate()
	return rt.dirs
}

// Files returns the generated files, in creation order.
func (rt *RndTree) Files() []*RndFile {
	rt.Generate()
	return rt.files
}

// Create materializes the generated tree under baseDir on the real
// filesystem, for tests that mount a temp directory as the DIR backend.
func (rt *RndTree) Create(baseDir string) error {
	rt.Generate()

	for _, dir := range rt.dirs {
		if err := os.MkdirAll(filepath.Join(baseDir, filepath.FromSlash(dir.Name)), 0o755); err != nil {
			return err
		}
	}

	for _, file := range rt.files {
		path := filepath.Join(baseDir, filepath.FromSlash(file.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}

		if err := os.WriteFile(path, file.Content, 0o644); err != nil {
			return err
		}
	}

	return nil
}
