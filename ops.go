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

// maxLength is the length cap spec.md §4.5 imposes on read/write/size
// requests, shared with the address-space check every caller of
// readBytes/writeBytes must perform.
const maxLength = 0x7FFFFFFFFFFFFFFF

// OpenRead opens name for reading (spec.md §4.5): the search path is
// walked head-to-tail; the first DirHandle whose verifyPath and
// OpenRead both succeed wins.
func (d *Drive) OpenRead(name string) (*FileHandle, error) {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	fh, err := d.openReadLocked(name)
	if err != nil {
		return nil, fail(d, err)
	}

	return fh, nil
}

func (d *Drive) openReadLocked(name string) (*FileHandle, error) {
	if !d.initialized {
		return nil, newError(NotInitialized)
	}

	clean, err := sanitize(name)
	if err != nil {
		return nil, err
	}

	var lastErr error = newError(NotFound)

	for h := d.searchHead; h != nil; h = h.next {
		relative, verr := d.verifyPath(h, clean, false)
		if verr != nil {
			lastErr = verr
			continue
		}

		io, oerr := h.archiver.OpenRead(h.opaque, relative)
		if oerr != nil {
			lastErr = oerr
			continue
		}

		fh := &FileHandle{io: io, forReading: true, dirHandle: h, drive: d, origName: relative}
		d.pushReadLocked(fh)

		return fh, nil
	}

	return nil, lastErr
}

// reopenReadLocked reopens relative directly against handle's archiver,
// bypassing the search-path walk — used by handleIO.Duplicate, which
// must reopen through the very same DirHandle a nested mount came from,
// not re-resolve the virtual path from scratch.
func (d *Drive) reopenReadLocked(handle *DirHandle, relative string) (*FileHandle, error) {
	io, err := handle.archiver.OpenRead(handle.opaque, relative)
	if err != nil {
		return nil, err
	}

	fh := &FileHandle{io: io, forReading: true, dirHandle: handle, drive: d, origName: relative}
	d.pushReadLocked(fh)

	return fh, nil
}

func (d *Drive) pushReadLocked(fh *FileHandle) {
	fh.next = d.openReadHead
	if d.openReadHead != nil {
		d.openReadHead.prev = fh
	}

	d.openReadHead = fh
}

func (d *Drive) pushWriteLocked(fh *FileHandle) {
	fh.next = d.openWriteHead
	if d.openWriteHead != nil {
		d.openWriteHead.prev = fh
	}

	d.openWriteHead = fh
}

// OpenWrite opens name against the write directory, creating or
// truncating it (spec.md §4.5). Fails NoWriteDir if no write directory
// is set.
func (d *Drive) OpenWrite(name string) (*FileHandle, error) {
	return d.openWriteOrAppend(name, false)
}

// OpenAppend opens name against the write directory for appending
// (spec.md §4.5).
func (d *Drive) OpenAppend(name string) (*FileHandle, error) {
	return d.openWriteOrAppend(name, true)
}

func (d *Drive) openWriteOrAppend(name string, appendMode bool) (*FileHandle, error) {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	if !d.initialized {
		return nil, fail(d, newError(NotInitialized))
	}

	if d.writeDir == nil {
		return nil, fail(d, newError(NoWriteDir))
	}

	clean, err := sanitize(name)
	if err != nil {
		return nil, fail(d, err)
	}

	relative, err := d.verifyPath(d.writeDir, clean, true)
	if err != nil {
		return nil, fail(d, err)
	}

	var io Io

	if appendMode {
		io, err = d.writeDir.archiver.OpenAppend(d.writeDir.opaque, relative)
	} else {
		io, err = d.writeDir.archiver.OpenWrite(d.writeDir.opaque, relative)
	}

	if err != nil {
		return nil, fail(d, err)
	}

	fh := &FileHandle{io: io, forReading: false, dirHandle: d.writeDir, drive: d, origName: relative}
	d.pushWriteLocked(fh)

	return fh, nil
}

// Close flushes (for write handles) and releases fh (spec.md §4.5). A
// failed flush leaves fh open so the caller may retry or abandon it.
func (d *Drive) Close(fh *FileHandle) error {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	if err := d.closeLocked(fh); err != nil {
		return fail(d, err)
	}

	return nil
}

func (d *Drive) closeLocked(fh *FileHandle) error {
	if !d.unlinkLocked(fh) {
		return newError(InvalidArgument)
	}

	if !fh.forReading {
		if err := d.flushLocked(fh); err != nil {
			d.relinkWriteLocked(fh)
			return err
		}

		if err := fh.io.Flush(); err != nil {
			d.relinkWriteLocked(fh)
			return newPassthroughError(err)
		}
	}

	if fh.buffer != nil {
		d.allocatorLocked().Put(fh.buffer)
		fh.buffer = nil
	}

	return fh.io.Close()
}

// unlinkLocked removes fh from whichever open list contains it,
// reporting whether it was found in either.
func (d *Drive) unlinkLocked(fh *FileHandle) bool {
	head := &d.openReadHead
	if !fh.forReading {
		head = &d.openWriteHead
	}

	if *head == fh {
		*head = fh.next
		if fh.next != nil {
			fh.next.prev = nil
		}

		fh.next, fh.prev = nil, nil

		return true
	}

	if fh.prev == nil {
		return false
	}

	fh.prev.next = fh.next
	if fh.next != nil {
		fh.next.prev = fh.prev
	}

	found := fh.prev != nil
	fh.next, fh.prev = nil, nil

	return found
}

func (d *Drive) relinkWriteLocked(fh *FileHandle) {
	d.pushWriteLocked(fh)
}

// Read reads count items of size bytes each into dst, returning the
// number of whole items read (spec.md §4.5).
func (d *Drive) Read(fh *FileHandle, dst []byte, size, count int64) (int64, error) {
	if size < 0 || count < 0 || size*count > maxLength {
		return 0, fail(d, newError(InvalidArgument))
	}

	if size == 0 || count == 0 {
		return 0, nil
	}

	n, err := d.ReadBytes(fh, dst[:size*count])
	if err != nil {
		return 0, err
	}

	return n / size, nil
}

// ReadBytes reads up to len(dst) raw bytes; short reads are possible and
// are not an error (spec.md §4.5).
func (d *Drive) ReadBytes(fh *FileHandle, dst []byte) (int64, error) {
	if int64(len(dst)) > maxLength {
		return 0, fail(d, newError(InvalidArgument))
	}

	if !fh.forReading {
		return 0, fail(d, newError(OpenForWriting))
	}

	n, err := fh.readBytes(dst)
	if err != nil {
		return int64(n), fail(d, newPassthroughError(err))
	}

	return int64(n), nil
}

// Write writes count items of size bytes from src, returning the number
// of whole items written (spec.md §4.5).
func (d *Drive) Write(fh *FileHandle, src []byte, size, count int64) (int64, error) {
	if size < 0 || count < 0 || size*count > maxLength {
		return 0, fail(d, newError(InvalidArgument))
	}

	if size == 0 || count == 0 {
		return 0, nil
	}

	n, err := d.WriteBytes(fh, src[:size*count])
	if err != nil {
		return 0, err
	}

	return n / size, nil
}

// WriteBytes writes up to len(src) raw bytes.
func (d *Drive) WriteBytes(fh *FileHandle, src []byte) (int64, error) {
	if int64(len(src)) > maxLength {
		return 0, fail(d, newError(InvalidArgument))
	}

	if fh.forReading {
		return 0, fail(d, newError(OpenForReading))
	}

	n, err := fh.writeBytes(src)
	if err != nil {
		return int64(n), fail(d, newPassthroughError(err))
	}

	return int64(n), nil
}

// Seek repositions fh (spec.md §4.5). Write handles flush first. Read
// handles keep their buffer intact when pos lands inside it, adjusting
// only bufpos; otherwise the buffer is discarded and the stream is
// raw-seeked.
func (d *Drive) Seek(fh *FileHandle, pos int64) error {
	if !fh.forReading {
		if err := fh.flush(); err != nil {
			return fail(d, err)
		}

		if err := fh.io.Seek(pos); err != nil {
			return fail(d, newPassthroughError(err))
		}

		return nil
	}

	if fh.buffer != nil {
		cur, err := fh.io.Tell()
		if err == nil {
			logicalPos := cur - int64(fh.buffill) + int64(fh.bufpos)
			low := logicalPos - int64(fh.bufpos)
			high := low + int64(fh.buffill)

			if pos >= low && pos <= high {
				fh.bufpos = int(pos - low)
				return nil
			}
		}

		fh.buffill = 0
		fh.bufpos = 0
	}

	if err := fh.io.Seek(pos); err != nil {
		return fail(d, newPassthroughError(err))
	}

	return nil
}

// Tell returns fh's logical position (spec.md §4.5).
func (d *Drive) Tell(fh *FileHandle) (int64, error) {
	raw, err := fh.io.Tell()
	if err != nil {
		return -1, fail(d, newPassthroughError(err))
	}

	if fh.forReading {
		return raw - int64(fh.buffill) + int64(fh.bufpos), nil
	}

	return raw + int64(fh.buffill), nil
}

// Eof reports end-of-file (spec.md §4.5): never true for write handles;
// for reads, false while unread bytes remain buffered, otherwise
// compares the stream position against its length.
func (d *Drive) Eof(fh *FileHandle) bool {
	if !fh.forReading {
		return false
	}

	if fh.bufpos < fh.buffill {
		return false
	}

	pos, err := fh.io.Tell()
	if err != nil {
		return false
	}

	length, err := fh.io.Length()
	if err != nil {
		return false
	}

	return pos >= length
}

// FileLength returns fh's total length (spec.md §4.5).
func (d *Drive) FileLength(fh *FileHandle) (int64, error) {
	n, err := fh.io.Length()
	if err != nil {
		return -1, fail(d, newPassthroughError(err))
	}

	return n, nil
}

// SetBuffer installs a bufsize-byte buffer on fh, flushing any pending
// writes first and, for reads positioned inside the old buffer,
// re-seeking the underlying stream so the next read stays consistent
// (spec.md §4.5). bufsize == 0 releases the buffer.
func (d *Drive) SetBuffer(fh *FileHandle, bufsize int) error {
	if err := d.Flush(fh); err != nil {
		return err
	}

	if fh.forReading && fh.buffer != nil && fh.bufpos < fh.buffill {
		logicalPos, err := d.Tell(fh)
		if err == nil {
			if serr := fh.io.Seek(logicalPos); serr != nil {
				return fail(d, newPassthroughError(serr))
			}
		}
	}

	if fh.buffer != nil {
		d.GetAllocator().Put(fh.buffer)
	}

	if bufsize == 0 {
		fh.buffer = nil
		fh.bufsize = 0
		fh.buffill = 0
		fh.bufpos = 0

		return nil
	}

	fh.buffer = d.GetAllocator().Get(bufsize)
	fh.bufsize = bufsize
	fh.buffill = 0
	fh.bufpos = 0

	return nil
}

// Flush is a no-op for reads and empty write buffers; for pending writes
// it pushes buffer[bufpos:buffill] through the underlying stream (spec.md
// §4.5).
func (d *Drive) Flush(fh *FileHandle) error {
	if err := d.flushLocked(fh); err != nil {
		return fail(d, err)
	}

	return nil
}

func (d *Drive) flushLocked(fh *FileHandle) error {
	return fh.flush()
}
