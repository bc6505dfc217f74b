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

package traverser

import (
	"context"
	"encoding/json"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/pkg/errors"

	"github.com/rafaelcruz-net/AzureStorageSync/partition"
)

// entityKeys picks the two system properties out of an entity's JSON.
type entityKeys struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
}

// TableEntityReader streams the entities of one table as partition records, one page at a time.
// The service returns entities sorted by PartitionKey then RowKey, which the partitioner relies on.
// The raw entity JSON is kept as the record payload.
type TableEntityReader struct {
	table string
	pager *runtime.Pager[aztables.ListEntitiesResponse]
	page  [][]byte
	pos   int
	read  int64
}

func NewTableEntityReader(client EntityLister, table string) *TableEntityReader {
	return &TableEntityReader{table: table, pager: client.NewListEntitiesPager(nil)}
}

// ReadRecord returns io.EOF once every entity was returned.
func (r *TableEntityReader) ReadRecord(ctx context.Context) (partition.Record, error) {
	for r.pos >= len(r.page) {
		if !r.pager.More() {
			return partition.Record{}, io.EOF
		}
		resp, err := r.pager.NextPage(ctx)
		if err != nil {
			return partition.Record{}, errors.Wrapf(err, "cannot list entities of table %s", r.table)
		}
		r.page, r.pos = resp.Entities, 0
	}

	raw := r.page[r.pos]
	r.pos++

	var keys entityKeys
	if err := json.Unmarshal(raw, &keys); err != nil {
		return partition.Record{}, errors.Wrapf(err, "entity %d of table %s is not valid JSON", r.read, r.table)
	}
	r.read++
	return partition.Record{PartitionKey: keys.PartitionKey, RowKey: keys.RowKey, Payload: raw}, nil
}

// RecordsRead is the number of entities handed out so far.
func (r *TableEntityReader) RecordsRead() int64 {
	return r.read
}
