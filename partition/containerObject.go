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

// ContainerObject is the sequence of at most MaxBlocksPerObject blocks that make up one destination blob.
type ContainerObject struct {
	index  int
	cursor *EntityCursor
	limits Limits

	blocks  []*Block
	current *Block
	closed  bool
}

// NewContainerObject starts the index-th object over cursor.
func NewContainerObject(cursor *EntityCursor, limits Limits, index int) *ContainerObject {
	return &ContainerObject{index: index, cursor: cursor, limits: limits}
}

// Index is the object's position among the objects cut from the same cursor, starting at 0.
func (o *ContainerObject) Index() int {
	return o.index
}

// NextBlock opens the object's next block. The previous block must have been drained.
// The object is finalized when MaxBlocksPerObject blocks were produced or the cursor is exhausted.
func (o *ContainerObject) NextBlock(ctx context.Context) (*Block, bool) {
	if o.current != nil && !o.current.closed {
		panic("partition: NextBlock called before the previous block was drained")
	}
	if o.closed {
		return nil, false
	}

	if o.cursor.IsExhausted() || len(o.blocks) >= o.limits.MaxBlocksPerObject {
		o.closed = true
		return nil, false
	}
	if _, ok := o.cursor.peek(ctx); !ok {
		o.closed = true
		return nil, false
	}

	o.current = NewBlock(o.cursor, o.limits)
	o.blocks = append(o.blocks, o.current)
	return o.current, true
}

// BlockIDs lists, in order, the IDs of the blocks that received records. This is the list to commit.
func (o *ContainerObject) BlockIDs() []string {
	ids := make([]string, 0, len(o.blocks))
	for _, b := range o.blocks {
		if b.records > 0 {
			ids = append(ids, b.id)
		}
	}
	return ids
}

// Closed reports whether NextBlock has returned false.
func (o *ContainerObject) Closed() bool {
	return o.closed
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// Partitioner cuts the records of one reader into consecutive container objects.
// Records come out in reader order; none is dropped or repeated across boundaries.
type Partitioner struct {
	cursor  *EntityCursor
	limits  Limits
	objects int
	current *ContainerObject
}

func NewPartitioner(reader RecordReader, limits Limits) (*Partitioner, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	return &Partitioner{cursor: NewEntityCursor(reader), limits: limits}, nil
}

// NextContainerObject starts the next object, or returns false when no record remains.
// The previous object must have been drained.
func (p *Partitioner) NextContainerObject(ctx context.Context) (*ContainerObject, bool) {
	if p.current != nil && !p.current.closed {
		panic("partition: NextContainerObject called before the previous object was drained")
	}
	if p.cursor.IsExhausted() {
		return nil, false
	}
	if _, ok := p.cursor.peek(ctx); !ok {
		return nil, false
	}

	p.current = NewContainerObject(p.cursor, p.limits, p.objects)
	p.objects++
	return p.current, true
}

// Err reports why partitioning stopped early: a reader failure or an oversized record. It is nil at a clean end.
func (p *Partitioner) Err() error {
	return p.cursor.Err()
}
