// Copyright 2025 EURECOM
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package parcel implements the ordered byte sink/source the registration
// records are serialized through. Integers are fixed-width little-endian,
// booleans are a single byte, sequences carry a signed count prefix (-1
// marks an absent sequence) and optional sub-records are announced by a
// one-byte presence tag.
package parcel

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Presence tag values for optional sub-records.
const (
	tagAbsent  byte = 0
	tagPresent byte = 1
)

var (
	// ErrTruncated reports a byte source exhausted before a field was
	// fully read.
	ErrTruncated = errors.New("truncated input")
	// ErrMalformed reports a well-delimited but invalid value, such as a
	// negative sequence count other than -1 or an unrecognized presence tag.
	ErrMalformed = errors.New("malformed input")
)

// ErrorKind discriminates the two decode failure classes.
type ErrorKind int

const (
	Truncated ErrorKind = iota
	Malformed
)

// CodecError is returned by every failing Reader operation. It wraps one of
// the two sentinel errors so callers can branch with errors.Is.
type CodecError struct {
	Op   string
	Kind ErrorKind
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("parcel: %s: %s", e.Op, e.Unwrap().Error())
}

func (e *CodecError) Unwrap() error {
	if e.Kind == Malformed {
		return ErrMalformed
	}
	return ErrTruncated
}

func truncated(op string) error {
	return &CodecError{Op: op, Kind: Truncated}
}

func malformed(op string) error {
	return &CodecError{Op: op, Kind: Malformed}
}

// Writer accumulates an encoding. Writes never fail; the buffer grows as
// needed.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated encoding. The slice aliases the writer's
// buffer and must not be retained across further writes.
func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) WriteInt32(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

func (w *Writer) WriteInt64(v int64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(v))
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// WriteString encodes a length-prefixed UTF-8 string.
func (w *Writer) WriteString(s string) {
	w.WriteInt32(int32(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteInt32Slice encodes a count prefix followed by the elements. A nil
// slice is distinguishable from an empty one: nil encodes count -1.
func (w *Writer) WriteInt32Slice(vs []int32) {
	if vs == nil {
		w.WriteInt32(-1)
		return
	}
	w.WriteInt32(int32(len(vs)))
	for _, v := range vs {
		w.WriteInt32(v)
	}
}

// WritePresence announces whether an optional sub-record follows.
func (w *Writer) WritePresence(present bool) {
	if present {
		w.buf = append(w.buf, tagPresent)
	} else {
		w.buf = append(w.buf, tagAbsent)
	}
}

// Reader consumes an encoding produced by Writer. Every read either returns
// the next field or a CodecError; a failed read leaves no usable state
// behind and the decode attempt must be abandoned.
type Reader struct {
	buf []byte
	off int
}

func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// Remaining reports the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

func (r *Reader) take(n int, op string) ([]byte, error) {
	if r.Remaining() < n {
		return nil, truncated(op)
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *Reader) ReadInt32(op string) (int32, error) {
	b, err := r.take(4, op)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (r *Reader) ReadInt64(op string) (int64, error) {
	b, err := r.take(8, op)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

func (r *Reader) ReadBool(op string) (bool, error) {
	b, err := r.take(1, op)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func (r *Reader) ReadString(op string) (string, error) {
	n, err := r.ReadInt32(op)
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", malformed(op)
	}
	b, err := r.take(int(n), op)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadInt32Slice decodes a count-prefixed sequence. Count -1 yields a nil
// slice; any other negative count is malformed.
func (r *Reader) ReadInt32Slice(op string) ([]int32, error) {
	n, err := r.ReadInt32(op)
	if err != nil {
		return nil, err
	}
	if n == -1 {
		return nil, nil
	}
	if n < 0 {
		return nil, malformed(op)
	}
	// reject counts the remaining bytes cannot possibly satisfy before
	// allocating
	if int64(n)*4 > int64(r.Remaining()) {
		return nil, truncated(op)
	}
	vs := make([]int32, n)
	for i := range vs {
		vs[i], err = r.ReadInt32(op)
		if err != nil {
			return nil, err
		}
	}
	return vs, nil
}

// ReadPresence decodes a presence tag. Tags outside {0, 1} are malformed.
func (r *Reader) ReadPresence(op string) (bool, error) {
	b, err := r.take(1, op)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case tagAbsent:
		return false, nil
	case tagPresent:
		return true, nil
	default:
		return false, malformed(op)
	}
}
