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

// Package partition splits an ordered stream of table entities into the nested groups a block blob upload needs:
// batches of one partition key, blocks of batches under the block budget, and objects of at most a fixed number
// of blocks. Every level pulls from the level below on demand through one shared EntityCursor.
package partition

import (
	"context"
	"unicode/utf16"

	"github.com/pkg/errors"
)

// Record is one table entity as read from the source. It is never mutated after it was read.
type Record struct {
	PartitionKey string
	RowKey       string

	// Payload is the entity's serialized wire representation.
	Payload []byte
}

// EstimatedSize is an upper bound of the bytes Payload occupies once encoded two bytes per character.
// Budgets are expressed in this unit, so the multiplier must not change.
// It does not bound the staged UTF-8 form: non-ASCII characters take up to 3 bytes there, so a block
// at the estimated budget can exceed the budget on the wire.
func (r Record) EstimatedSize() int64 {
	n := 0
	for _, c := range string(r.Payload) {
		n += utf16.RuneLen(c)
	}
	return int64(n) * 2
}

// RecordReader is a forward-only, single-pass sequence of records ordered by PartitionKey then RowKey.
type RecordReader interface {
	// ReadRecord returns io.EOF once the sequence is exhausted.
	ReadRecord(ctx context.Context) (Record, error)
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

const (
	MaxEntitiesPerBatch = 100

	// Save at most 3.5MB in a batch so that there is room for the framing a batch request adds.
	MaxBatchSize = int64(3.5 * 1024 * 1024)

	// Though a block can be of 4MB we stop before, to leave room for the block's own framing.
	MaxBlockSize = int64(3984588) // int(3.8 * 1024 * 1024)

	MaxBlocksPerObject = 20
)

// Limits are the structural budgets every destination writer must respect.
type Limits struct {
	MaxEntitiesPerBatch int
	MaxBatchSize        int64
	MaxBlockSize        int64
	MaxBlocksPerObject  int
}

func DefaultLimits() Limits {
	return Limits{
		MaxEntitiesPerBatch: MaxEntitiesPerBatch,
		MaxBatchSize:        MaxBatchSize,
		MaxBlockSize:        MaxBlockSize,
		MaxBlocksPerObject:  MaxBlocksPerObject,
	}
}

func (l Limits) Validate() error {
	switch {
	case l.MaxEntitiesPerBatch <= 0:
		return errors.Errorf("max entities per batch must be positive, got %d", l.MaxEntitiesPerBatch)
	case l.MaxBatchSize <= 0:
		return errors.Errorf("max batch size must be positive, got %d", l.MaxBatchSize)
	case l.MaxBlockSize < l.MaxBatchSize:
		return errors.Errorf("max block size %d is smaller than max batch size %d", l.MaxBlockSize, l.MaxBatchSize)
	case l.MaxBlocksPerObject <= 0:
		return errors.Errorf("max blocks per object must be positive, got %d", l.MaxBlocksPerObject)
	}
	return nil
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// ErrOversizedRecord is matched (errors.Is) by every OversizedRecordError.
var ErrOversizedRecord = errors.New("record exceeds the batch size budget")

// OversizedRecordError reports a record that can never be placed in a batch.
type OversizedRecordError struct {
	PartitionKey  string
	RowKey        string
	EstimatedSize int64
	Limit         int64
}

func (e *OversizedRecordError) Error() string {
	return errors.Wrapf(ErrOversizedRecord, "record (PartitionKey=%q, RowKey=%q) has estimated size %d, limit %d",
		e.PartitionKey, e.RowKey, e.EstimatedSize, e.Limit).Error()
}

func (e *OversizedRecordError) Is(target error) bool {
	return target == ErrOversizedRecord
}
