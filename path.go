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

import "strings"

const pathSeparator = '/'

// pathIterator walks the '/'-separated segments of an already-sanitized
// path, one at a time. Adapted from the segment-walking shape of
// avfs.PathIterator, narrowed to the forward-slash-only, no-volume world
// this package operates in.
type pathIterator struct {
	path  string
	start int
	end   int
}

func newPathIterator(path string) *pathIterator {
	return &pathIterator{path: path}
}

// next advances to the next segment, returning false once the path is
// exhausted.
func (pi *pathIterator) next() bool {
	pi.start = pi.end
	if pi.start > 0 {
		pi.start++
	}

	if pi.start > len(pi.path) {
		return false
	}

	pos := strings.IndexByte(pi.path[pi.start:], pathSeparator)
	if pos == -1 {
		pi.end = len(pi.path)
	} else {
		pi.end = pi.start + pos
	}

	return pi.start < len(pi.path) || (pi.start == 0 && len(pi.path) == 0)
}

// part returns the current segment.
func (pi *pathIterator) part() string {
	return pi.path[pi.start:pi.end]
}

// upTo returns the path from the start up to and including the current
// segment.
func (pi *pathIterator) upTo() string {
	return pi.path[:pi.end]
}

// isLast reports whether the current segment is the last one.
func (pi *pathIterator) isLast() bool {
	return pi.end == len(pi.path)
}

// sanitize normalizes src into the canonical internal path form described
// in spec.md §3/§4.1: strips a leading '/', rejects a body that is
// exactly "." or "..", rejects any ':' or '\\' anywhere, rejects any
// segment equal to "." or "..", collapses runs of '/', and drops a
// trailing '/'. It reports BadFilename on any rejection.
func sanitize(src string) (string, error) {
	if strings.ContainsAny(src, ":\\") {
		return "", newError(BadFilename)
	}

	body := strings.TrimPrefix(src, "/")
	if body == "." || body == ".." {
		return "", newError(BadFilename)
	}

	segments := strings.Split(body, "/")

	out := make([]string, 0, len(segments))

	for _, seg := range segments {
		if seg == "" {
			continue
		}

		if seg == "." || seg == ".." {
			return "", newError(BadFilename)
		}

		out = append(out, seg)
	}

	return strings.Join(out, "/"), nil
}

// normalizeMountPoint sanitizes a mountpoint path and ensures it is
// stored with a trailing '/' for prefix-matching, per spec.md §3. An
// empty or absent mountpoint normalizes to "/".
func normalizeMountPoint(mp string) (string, error) {
	if mp == "" || mp == "/" {
		return "/", nil
	}

	clean, err := sanitize(mp)
	if err != nil {
		return "", err
	}

	if clean == "" {
		return "/", nil
	}

	return clean + "/", nil
}

// partOfMountPoint reports whether fname names a strict prefix directory
// of mountPoint (spec.md §4.1): e.g. for mountPoint "a/b/c/" the
// directories "" (root), "a" and "a/b" are strict prefixes, while
// "a/b/c" (the mountpoint itself) and "a/b/c/d" are not.
func partOfMountPoint(mountPoint, fname string) bool {
	if mountPoint == "/" {
		return false
	}

	trimmed := strings.TrimSuffix(mountPoint, "/")

	if fname == "" {
		return trimmed != ""
	}

	prefix := fname + "/"

	return strings.HasPrefix(trimmed+"/", prefix) && trimmed != fname
}

// stripMountPoint removes handle's mountpoint prefix from fname, so the
// backend behind handle receives an archive-relative path. It reports
// whether fname actually falls under the mountpoint.
func stripMountPoint(mountPoint, fname string) (string, bool) {
	if mountPoint == "/" {
		return fname, true
	}

	trimmed := strings.TrimSuffix(mountPoint, "/")

	if fname == trimmed {
		return "", true
	}

	prefix := trimmed + "/"
	if strings.HasPrefix(fname, prefix) {
		return fname[len(prefix):], true
	}

	return "", false
}

// dirName returns the parent directory of a sanitized path, or "" if
// path is already at the root.
func dirName(path string) string {
	idx := strings.LastIndexByte(path, pathSeparator)
	if idx < 0 {
		return ""
	}

	return path[:idx]
}

// baseName returns the last segment of a sanitized path.
func baseName(path string) string {
	idx := strings.LastIndexByte(path, pathSeparator)
	if idx < 0 {
		return path
	}

	return path[idx+1:]
}
