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

// Package vfs implements a portable virtual filesystem: a single,
// read-centric tree assembled from heterogeneous backing stores (real
// directories, archive-shaped backends, byte streams) and addressed with
// platform-independent, forward-slash paths. At most one mounted backend
// — the "write directory" — receives mutations. Multiple independent
// Drive instances can run concurrently in the same process, sharing no
// state with one another.
package vfs
