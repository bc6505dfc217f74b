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

	"github.com/pkg/errors"
)

// blobTraverser lists every blob of one container, flat.
type blobTraverser struct {
	ctx           context.Context
	containerName string
	client        BlobLister
}

func NewBlobTraverser(ctx context.Context, containerName string, client BlobLister) *blobTraverser {
	return &blobTraverser{ctx: ctx, containerName: containerName, client: client}
}

func (t *blobTraverser) Traverse(processor ObjectProcessor, filters []ObjectFilter) error {
	pager := t.client.NewListBlobsFlatPager(nil)
	for pager.More() {
		resp, err := pager.NextPage(t.ctx)
		if err != nil {
			return errors.Wrapf(err, "cannot list blobs in container %s", t.containerName)
		}
		if resp.Segment == nil {
			continue
		}

		for _, blobInfo := range resp.Segment.BlobItems {
			if blobInfo == nil || blobInfo.Name == nil {
				continue
			}
			storedObject := StoredObject{Name: *blobInfo.Name, ContainerName: t.containerName}
			if props := blobInfo.Properties; props != nil {
				if props.ContentLength != nil {
					storedObject.Size = *props.ContentLength
				}
				if props.BlobType != nil {
					storedObject.BlobType = *props.BlobType
				}
			}

			if !passesFilters(storedObject, filters) {
				continue
			}
			if err := processor(storedObject); err != nil {
				return err
			}
		}
	}
	return nil
}
