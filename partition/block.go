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
	"encoding/base64"

	"github.com/google/uuid"
)

// RecordKey is the identity of a record within its table.
type RecordKey struct {
	PartitionKey string
	RowKey       string
}

func (r Record) Key() RecordKey {
	return RecordKey{PartitionKey: r.PartitionKey, RowKey: r.RowKey}
}

// BlockSummary describes a block once all of its batches were drained. First and Last bound the block's key range.
type BlockSummary struct {
	ID      string
	First   RecordKey
	Last    RecordKey
	Batches int
	Records int
	Size    int64
}

// Block is a sequence of batches whose cumulative estimated size stays within MaxBlockSize.
// It is the unit staged on a block blob, under its ID.
type Block struct {
	id     string
	cursor *EntityCursor
	limits Limits

	size    int64
	records int
	batches int
	first   RecordKey
	last    RecordKey

	current *Batch
	closed  bool
}

// NewBlock opens a block over cursor with a fresh random ID.
func NewBlock(cursor *EntityCursor, limits Limits) *Block {
	return &Block{
		id:     NewBlockID(),
		cursor: cursor,
		limits: limits,
	}
}

// NewBlockID returns a random 128-bit value, base64-encoded. All IDs of one blob have the same length, as the
// service requires.
func NewBlockID() string {
	id := uuid.New()
	return base64.StdEncoding.EncodeToString(id[:])
}

func (b *Block) ID() string {
	return b.id
}

// NextBatch opens the block's next batch. The previous batch must have been drained.
// The block ends when the cursor is exhausted, when its size reached MaxBlockSize, or when the next record
// does not fit in what is left of the budget; that record then opens the next block.
func (b *Block) NextBatch(ctx context.Context) (*Batch, bool) {
	if b.current != nil && !b.current.done {
		panic("partition: NextBatch called before the previous batch was drained")
	}
	if b.closed {
		return nil, false
	}

	if b.cursor.IsExhausted() || b.size >= b.limits.MaxBlockSize {
		b.closed = true
		return nil, false
	}

	rec, ok := b.cursor.peek(ctx)
	if !ok {
		b.closed = true
		return nil, false
	}

	size := rec.EstimatedSize()
	if size > b.limits.MaxBatchSize {
		b.cursor.fail(newOversizedRecordError(rec, b.limits))
		b.closed = true
		return nil, false
	}
	if b.size+size > b.limits.MaxBlockSize {
		b.closed = true
		return nil, false
	}

	b.batches++
	b.current = &Batch{cursor: b.cursor, block: b, limits: b.limits}
	return b.current, true
}

func (b *Block) accept(rec Record, size int64) {
	if b.records == 0 {
		b.first = rec.Key()
	}
	b.last = rec.Key()
	b.records++
	b.size += size
}

// Size is the estimated size of every record yielded by the block's batches so far.
func (b *Block) Size() int64 {
	return b.size
}

// Len is the number of records yielded by the block's batches so far.
func (b *Block) Len() int {
	return b.records
}

// Closed reports whether NextBatch has returned false.
func (b *Block) Closed() bool {
	return b.closed
}

func (b *Block) Summary() BlockSummary {
	return BlockSummary{
		ID:      b.id,
		First:   b.first,
		Last:    b.last,
		Batches: b.batches,
		Records: b.records,
		Size:    b.size,
	}
}
