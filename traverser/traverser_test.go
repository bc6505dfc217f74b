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
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	blobservice "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/service"
	"github.com/stretchr/testify/assert"

	"github.com/rafaelcruz-net/AzureStorageSync/common"
	"github.com/rafaelcruz-net/AzureStorageSync/partition"
)

// pagerOf serves pages in order; when errAt matches the page index the fetch fails with err.
func pagerOf[T any](pages []T, errAt int, err error) *runtime.Pager[T] {
	i := 0
	return runtime.NewPager(runtime.PagingHandler[T]{
		More: func(T) bool { return i < len(pages) },
		Fetcher: func(ctx context.Context, _ *T) (T, error) {
			var zero T
			if i == errAt {
				return zero, err
			}
			if i >= len(pages) {
				return zero, nil
			}
			p := pages[i]
			i++
			return p, nil
		},
	})
}

type fakeContainerLister struct {
	pages [][]string
	errAt int
	err   error
}

func (f *fakeContainerLister) NewListContainersPager(*blobservice.ListContainersOptions) *runtime.Pager[blobservice.ListContainersResponse] {
	var pages []blobservice.ListContainersResponse
	for _, names := range f.pages {
		var items []*blobservice.ContainerItem
		for _, n := range names {
			items = append(items, &blobservice.ContainerItem{Name: to.Ptr(n)})
		}
		pages = append(pages, blobservice.ListContainersResponse{
			ListContainersSegmentResponse: blobservice.ListContainersSegmentResponse{ContainerItems: items},
		})
	}
	return pagerOf(pages, f.errAt, f.err)
}

type fakeTableLister struct {
	pages [][]string
}

func (f *fakeTableLister) NewListTablesPager(*aztables.ListTablesOptions) *runtime.Pager[aztables.ListTablesResponse] {
	var pages []aztables.ListTablesResponse
	for _, names := range f.pages {
		var tables []*aztables.TableProperties
		for _, n := range names {
			tables = append(tables, &aztables.TableProperties{Name: to.Ptr(n)})
		}
		pages = append(pages, aztables.ListTablesResponse{Tables: tables})
	}
	return pagerOf(pages, -1, nil)
}

type fakeBlobLister struct {
	items []*container.BlobItem
}

func (f *fakeBlobLister) NewListBlobsFlatPager(*container.ListBlobsFlatOptions) *runtime.Pager[container.ListBlobsFlatResponse] {
	var pages []container.ListBlobsFlatResponse
	for _, item := range f.items {
		pages = append(pages, container.ListBlobsFlatResponse{
			ListBlobsFlatSegmentResponse: container.ListBlobsFlatSegmentResponse{
				Segment: &container.BlobFlatListSegment{BlobItems: []*container.BlobItem{item}},
			},
		})
	}
	return pagerOf(pages, -1, nil)
}

type fakeEntityLister struct {
	pages [][]string
	errAt int
	err   error
}

func (f *fakeEntityLister) NewListEntitiesPager(*aztables.ListEntitiesOptions) *runtime.Pager[aztables.ListEntitiesResponse] {
	var pages []aztables.ListEntitiesResponse
	for _, entities := range f.pages {
		var raw [][]byte
		for _, e := range entities {
			raw = append(raw, []byte(e))
		}
		pages = append(pages, aztables.ListEntitiesResponse{Entities: raw})
	}
	return pagerOf(pages, f.errAt, f.err)
}

func captureConsole(t *testing.T) *bytes.Buffer {
	buf := &bytes.Buffer{}
	previous := common.GetLifecycleMgr()
	common.SetLifecycleMgr(common.NewLifecycleMgr(buf, buf))
	t.Cleanup(func() { common.SetLifecycleMgr(previous) })
	return buf
}

func TestListContainersExcludesAndKeepsOrder(t *testing.T) {
	a := assert.New(t)
	console := captureConsole(t)
	lister := &fakeContainerLister{pages: [][]string{{"$logs", "images", "vsdeploy"}, {"backups", "assets"}}, errAt: -1}

	names, err := NewBlobAccountTraverser(context.Background(), lister, "", []string{"$logs", "vsdeploy"}).ListContainers()

	a.NoError(err)
	a.Equal([]string{"images", "backups", "assets"}, names)
	a.Contains(console.String(), "Skipped container(s): $logs, vsdeploy")
}

func TestListContainersWithPattern(t *testing.T) {
	a := assert.New(t)
	captureConsole(t)
	lister := &fakeContainerLister{pages: [][]string{{"data-1", "images", "data-2"}}, errAt: -1}

	names, err := NewBlobAccountTraverser(context.Background(), lister, "data-*", nil).ListContainers()

	a.NoError(err)
	a.Equal([]string{"data-1", "data-2"}, names)

	_, err = NewBlobAccountTraverser(context.Background(), lister, "[", nil).ListContainers()
	a.Error(err)
}

func TestListContainersFailure(t *testing.T) {
	a := assert.New(t)
	lister := &fakeContainerLister{pages: [][]string{{"a"}, {"b"}}, errAt: 1, err: errors.New("AuthorizationFailure")}

	_, err := NewBlobAccountTraverser(context.Background(), lister, "", nil).ListContainers()

	a.Error(err)
	a.Contains(err.Error(), "cannot list containers")
	a.Contains(err.Error(), "AuthorizationFailure")
}

func TestListTablesExcludesIgnoringCase(t *testing.T) {
	a := assert.New(t)
	console := captureConsole(t)
	lister := &fakeTableLister{pages: [][]string{{"Orders", "AuditLog"}, {"Customers"}}}

	names, err := NewTableAccountTraverser(context.Background(), lister, "", []string{"auditlog"}).ListTables()

	a.NoError(err)
	a.Equal([]string{"Orders", "Customers"}, names)
	a.Contains(console.String(), "Skipped table(s): AuditLog")
}

func TestSkippedNamesAreLoggedAsWarnings(t *testing.T) {
	a := assert.New(t)
	captureConsole(t)
	logger := common.NewMemoryLogger(common.LogInfo)
	common.CurrentJobLogger = logger
	defer func() { common.CurrentJobLogger = nil }()

	lister := &fakeTableLister{pages: [][]string{{"Orders", "Sessions"}}}
	_, err := NewTableAccountTraverser(context.Background(), lister, "", []string{"sessions"}).ListTables()

	a.NoError(err)
	a.Equal([]string{"WARN: Skipped table(s): Sessions"}, logger.Lines())
}

func TestBlobTraverserListsEveryBlob(t *testing.T) {
	a := assert.New(t)
	lister := &fakeBlobLister{items: []*container.BlobItem{
		{Name: to.Ptr("a.txt"), Properties: &container.BlobProperties{ContentLength: to.Ptr(int64(12)), BlobType: to.Ptr(blob.BlobTypeBlockBlob)}},
		{Name: to.Ptr("dir/b.vhd"), Properties: &container.BlobProperties{ContentLength: to.Ptr(int64(512)), BlobType: to.Ptr(blob.BlobTypePageBlob)}},
		{Name: to.Ptr("c.log")},
	}}

	var listed []StoredObject
	err := NewBlobTraverser(context.Background(), "images", lister).Traverse(func(so StoredObject) error {
		listed = append(listed, so)
		return nil
	}, nil)

	a.NoError(err)
	a.Len(listed, 3)
	a.Equal(StoredObject{Name: "a.txt", Size: 12, BlobType: blob.BlobTypeBlockBlob, ContainerName: "images"}, listed[0])
	a.Equal(blob.BlobTypePageBlob, listed[1].BlobType)
	a.Equal(int64(0), listed[2].Size)
}

func TestBlobTraverserStopsOnProcessorError(t *testing.T) {
	a := assert.New(t)
	lister := &fakeBlobLister{items: []*container.BlobItem{{Name: to.Ptr("a")}, {Name: to.Ptr("b")}}}
	stop := errors.New("stop")

	var count int
	err := NewBlobTraverser(context.Background(), "c", lister).Traverse(func(so StoredObject) error {
		count++
		return stop
	}, nil)

	a.Equal(stop, err)
	a.Equal(1, count)
}

func TestTableEntityReaderStreamsEntities(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	lister := &fakeEntityLister{pages: [][]string{
		{`{"PartitionKey":"p1","RowKey":"r1","Name":"a"}`, `{"PartitionKey":"p1","RowKey":"r2"}`},
		{},
		{`{"PartitionKey":"p2","RowKey":"r1","Age":3}`},
	}, errAt: -1}

	r := NewTableEntityReader(lister, "orders")

	rec, err := r.ReadRecord(ctx)
	a.NoError(err)
	a.Equal("p1", rec.PartitionKey)
	a.Equal("r1", rec.RowKey)
	a.Equal(`{"PartitionKey":"p1","RowKey":"r1","Name":"a"}`, string(rec.Payload))

	_, err = r.ReadRecord(ctx)
	a.NoError(err)
	rec, err = r.ReadRecord(ctx)
	a.NoError(err)
	a.Equal(partition.RecordKey{PartitionKey: "p2", RowKey: "r1"}, rec.Key())

	_, err = r.ReadRecord(ctx)
	a.Equal(io.EOF, err)
	a.Equal(int64(3), r.RecordsRead())
}

func TestTableEntityReaderErrors(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	r := NewTableEntityReader(&fakeEntityLister{pages: [][]string{{`not json`}}, errAt: -1}, "orders")
	_, err := r.ReadRecord(ctx)
	a.Error(err)
	a.Contains(err.Error(), "table orders is not valid JSON")

	r = NewTableEntityReader(&fakeEntityLister{pages: [][]string{{`{"PartitionKey":"p","RowKey":"r"}`}, {}}, errAt: 1, err: errors.New("ServerBusy")}, "orders")
	_, err = r.ReadRecord(ctx)
	a.NoError(err)
	_, err = r.ReadRecord(ctx)
	a.Error(err)
	a.Contains(err.Error(), "ServerBusy")
}

func TestTableEntityReaderFeedsThePartitioner(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	lister := &fakeEntityLister{pages: [][]string{
		{`{"PartitionKey":"P1","RowKey":"R1"}`, `{"PartitionKey":"P1","RowKey":"R2"}`},
		{`{"PartitionKey":"P2","RowKey":"R3"}`},
	}, errAt: -1}

	p, err := partition.NewPartitioner(NewTableEntityReader(lister, "t"), partition.DefaultLimits())
	a.NoError(err)

	var batches [][]string
	for obj, ok := p.NextContainerObject(ctx); ok; obj, ok = p.NextContainerObject(ctx) {
		for block, ok := obj.NextBlock(ctx); ok; block, ok = obj.NextBlock(ctx) {
			for batch, ok := block.NextBatch(ctx); ok; batch, ok = block.NextBatch(ctx) {
				var rows []string
				for rec, ok := batch.Next(ctx); ok; rec, ok = batch.Next(ctx) {
					rows = append(rows, rec.RowKey)
				}
				batches = append(batches, rows)
			}
		}
	}

	a.NoError(p.Err())
	a.Equal([][]string{{"R1", "R2"}, {"R3"}}, batches)
}
