// Package sliceedit implements buffered editing of byte slices on top of
// rsc.io/edit. Edits are queued against the original data and applied with
// a single allocation, which keeps stripping metadata blocks out of large
// documents cheap.
package sliceedit

import (
	"bytes"

	"rsc.io/edit"
)

// A Buffer is a queue of edits to apply to a given byte slice.
type Buffer struct {
	ed  edit.Buffer
	buf []byte
}

// NewBuffer returns a buffer accumulating changes to data. The buffer keeps
// a reference to data, so the caller must not modify it until the edits
// have been applied.
func NewBuffer(data []byte) *Buffer {
	b := &Buffer{buf: data}
	b.ed = *edit.NewBuffer(data)
	return b
}

// DeleteSpan queues the removal of the bytes in [start, end).
func (b *Buffer) DeleteSpan(start, end int) {
	b.ed.Delete(start, end)
}

// ReplaceSpan queues the replacement of the bytes in [start, end) with text.
func (b *Buffer) ReplaceSpan(start, end int, text string) {
	b.ed.Replace(start, end, text)
}

// findAll finds all non-overlapping occurrences of item in buf.
func findAll(buf []byte, item string) []int {
	var found []int
	if len(item) == 0 {
		return found
	}
	offset := 0
	for {
		i := bytes.Index(buf[offset:], []byte(item))
		if i == -1 {
			return found
		}
		found = append(found, offset+i)
		offset += i + len(item)
	}
}

// ReplaceAllString queues the replacement of every occurrence of old with new.
func (b *Buffer) ReplaceAllString(old, new string) {
	for _, hit := range findAll(b.buf, old) {
		b.ed.Replace(hit, hit+len(old), new)
	}
}

// Bytes returns a new byte slice containing the original data with the
// queued edits applied.
func (b *Buffer) Bytes() []byte {
	return b.ed.Bytes()
}

// String is like Bytes but returns a string.
func (b *Buffer) String() string {
	return string(b.ed.Bytes())
}
