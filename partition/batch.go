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

import "context"

// Batch is a run of consecutive records that share one partition key. It is the unit a table service accepts
// atomically. Records are pulled from the cursor only as Next is called.
type Batch struct {
	cursor *EntityCursor
	block  *Block
	limits Limits

	partitionKey string
	count        int
	size         int64
	done         bool
}

// Next yields records until one of these conditions ends the batch:
//  1. MaxEntitiesPerBatch records are in the batch
//  2. the next record has another partition key
//  3. the next record would take the batch past MaxBatchSize
//  4. the next record would take the enclosing block past MaxBlockSize
//
// The record that ended the batch is pushed back to the cursor for the next batch.
func (b *Batch) Next(ctx context.Context) (Record, bool) {
	if b.done {
		return Record{}, false
	}

	rec, ok := b.cursor.PeekOrNext(ctx)
	if !ok {
		b.done = true
		return Record{}, false
	}

	if b.count == 0 {
		b.partitionKey = rec.PartitionKey
	}

	size := rec.EstimatedSize()
	if b.count >= b.limits.MaxEntitiesPerBatch ||
		rec.PartitionKey != b.partitionKey ||
		b.size+size > b.limits.MaxBatchSize ||
		b.block.size+size > b.limits.MaxBlockSize {

		if b.count == 0 {
			// nothing fits before this record, so nothing ever will
			b.cursor.fail(newOversizedRecordError(rec, b.limits))
		} else {
			b.cursor.PushBack(rec)
		}
		b.done = true
		return Record{}, false
	}

	b.count++
	b.size += size
	b.block.accept(rec, size)
	return rec, true
}

// PartitionKey is the key shared by every record of the batch. It is empty until the first record was yielded.
func (b *Batch) PartitionKey() string {
	return b.partitionKey
}

// Len is the number of records yielded so far.
func (b *Batch) Len() int {
	return b.count
}

// Size is the estimated size of the records yielded so far.
func (b *Batch) Size() int64 {
	return b.size
}

// Done reports whether Next has returned false.
func (b *Batch) Done() bool {
	return b.done
}

func newOversizedRecordError(rec Record, limits Limits) *OversizedRecordError {
	return &OversizedRecordError{
		PartitionKey:  rec.PartitionKey,
		RowKey:        rec.RowKey,
		EstimatedSize: rec.EstimatedSize(),
		Limit:         limits.MaxBatchSize,
	}
}
