// Copyright © 2017 Microsoft <wastore@microsoft.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package partition

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// EntityCursor wraps a RecordReader with a single look-ahead slot, so that a partitioner can see the record that
// closes its group without consuming it. One cursor serves one job; it is not safe for concurrent use.
type EntityCursor struct {
	reader RecordReader

	// lookAhead is a record that was retrieved but did not belong to the group that retrieved it.
	// It is returned first by the next PeekOrNext.
	lookAhead    Record
	hasLookAhead bool

	readerDone bool
	err        error
}

func NewEntityCursor(reader RecordReader) *EntityCursor {
	return &EntityCursor{reader: reader}
}

// PeekOrNext returns the look-ahead record if there is one, else the next record of the reader.
// ok is false once the reader is exhausted or failed; Err tells the two apart.
func (c *EntityCursor) PeekOrNext(ctx context.Context) (rec Record, ok bool) {
	if c.hasLookAhead {
		rec = c.lookAhead
		c.lookAhead, c.hasLookAhead = Record{}, false
		return rec, true
	}
	if c.readerDone {
		return Record{}, false
	}

	rec, err := c.reader.ReadRecord(ctx)
	if err != nil {
		c.readerDone = true
		if !errors.Is(err, io.EOF) {
			c.err = err
		}
		return Record{}, false
	}
	return rec, true
}

// PushBack stores rec as the look-ahead. At most one look-ahead is supported.
func (c *EntityCursor) PushBack(rec Record) {
	if c.hasLookAhead {
		panic("partition: PushBack called twice without an intervening PeekOrNext")
	}
	c.lookAhead, c.hasLookAhead = rec, true
}

// IsExhausted is true iff there is no look-ahead and a read already observed the end of the reader.
func (c *EntityCursor) IsExhausted() bool {
	return !c.hasLookAhead && c.readerDone
}

// Err returns the first error other than io.EOF met while reading, or the reason partitioning stopped.
func (c *EntityCursor) Err() error {
	return c.err
}

// fail stops the cursor: the look-ahead is dropped and every later read reports exhaustion.
func (c *EntityCursor) fail(err error) {
	if c.err == nil {
		c.err = err
	}
	c.readerDone = true
	c.lookAhead, c.hasLookAhead = Record{}, false
}

// peek looks at the next record without consuming it.
func (c *EntityCursor) peek(ctx context.Context) (Record, bool) {
	rec, ok := c.PeekOrNext(ctx)
	if ok {
		c.PushBack(rec)
	}
	return rec, ok
}
