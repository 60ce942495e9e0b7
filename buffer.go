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

// bufferedRead implements spec.md §4.6's read algorithm: copy whatever
// is left in buffer[bufpos:buffill] into dst, refilling from the
// underlying Io once the buffer is drained, until dst is full or the
// stream is exhausted.
func (h *FileHandle) bufferedRead(dst []byte) (int, error) {
	copied := 0

	for copied < len(dst) {
		if h.bufpos < h.buffill {
			n := copy(dst[copied:], h.buffer[h.bufpos:h.buffill])
			h.bufpos += n
			copied += n

			continue
		}

		n, err := h.io.Read(h.buffer[:h.bufsize])
		if n <= 0 {
			if copied > 0 {
				return copied, nil
			}

			return 0, err
		}

		h.buffill = n
		h.bufpos = 0
	}

	return copied, nil
}

// bufferedWrite implements spec.md §4.6's write algorithm: if src fits
// in the buffer's remaining capacity, copy it and return; otherwise
// flush what is pending and write src straight through the Io.
func (h *FileHandle) bufferedWrite(src []byte) (int, error) {
	if h.buffill+len(src) <= h.bufsize {
		copy(h.buffer[h.buffill:], src)
		h.buffill += len(src)

		return len(src), nil
	}

	if err := h.flush(); err != nil {
		return 0, err
	}

	n, err := h.io.Write(src)
	if err != nil {
		return n, err
	}

	return n, nil
}

// flush is the unbuffered implementation behind FileHandle.Flush,
// shared with code paths (Seek, SetBuffer, Close) that must flush
// without going through the public locking wrapper again.
func (h *FileHandle) flush() error {
	if h.forReading || h.buffill == 0 {
		return nil
	}

	n, err := h.io.Write(h.buffer[h.bufpos:h.buffill])
	if err != nil {
		return err
	}

	if n != h.buffill-h.bufpos {
		return newError(IO)
	}

	h.buffill = 0
	h.bufpos = 0

	return nil
}

// readBytes is the raw-byte read path used directly by handleIO and by
// Drive.ReadBytes; it goes through the buffer when one is set.
func (h *FileHandle) readBytes(dst []byte) (int, error) {
	if h.buffer != nil {
		return h.bufferedRead(dst)
	}

	return h.io.Read(dst)
}

// writeBytes is the raw-byte write path used directly by handleIO and by
// Drive.WriteBytes; it goes through the buffer when one is set.
func (h *FileHandle) writeBytes(src []byte) (int, error) {
	if h.buffer != nil {
		return h.bufferedWrite(src)
	}

	return h.io.Write(src)
}
