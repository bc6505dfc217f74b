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
	"strings"

	"github.com/pkg/errors"
)

// Enumerates the containers of a blob account, in the order the service lists them
type blobAccountTraverser struct {
	ctx              context.Context
	serviceClient    ContainerLister
	containerPattern string
	cachedContainers []string

	excludeContainerName []ObjectFilter
}

// ListContainers returns the names of the containers that are not excluded.
func (t *blobAccountTraverser) ListContainers() ([]string, error) {
	cachedContainers, skippedContainers, err := t.getListContainers()
	if len(skippedContainers) > 0 {
		WarnStdoutAndScanningLog("Skipped container(s): " + strings.Join(skippedContainers, ", "))
	}
	return cachedContainers, err
}

func (t *blobAccountTraverser) getListContainers() ([]string, []string, error) {
	var skippedContainers []string
	// a nil list also returns 0
	if len(t.cachedContainers) == 0 {
		cList := make([]string, 0)
		pager := t.serviceClient.NewListContainersPager(nil)
		for pager.More() {
			resp, err := pager.NextPage(t.ctx)
			if err != nil {
				return nil, nil, errors.Wrap(err, "cannot list containers")
			}
			for _, v := range resp.ContainerItems {
				if v == nil || v.Name == nil {
					continue
				}

				// Match a pattern for the container name and the container name only.
				if t.containerPattern != "" {
					if ok, err := containerNameMatchesPattern(*v.Name, t.containerPattern); err != nil {
						// Break if the pattern is invalid
						return nil, nil, err
					} else if !ok {
						// Ignore the container if it doesn't match the pattern.
						continue
					}
				}

				// get a list of containers that are not excluded
				if !passesFilters(StoredObject{ContainerName: *v.Name}, t.excludeContainerName) {
					skippedContainers = append(skippedContainers, *v.Name)
					continue
				}
				cList = append(cList, *v.Name)
			}
		}
		t.cachedContainers = cList
	}

	return t.cachedContainers, skippedContainers, nil
}

func NewBlobAccountTraverser(ctx context.Context, serviceClient ContainerLister, containerPattern string, excludeContainers []string) (t *blobAccountTraverser) {
	t = &blobAccountTraverser{
		ctx:                  ctx,
		serviceClient:        serviceClient,
		containerPattern:     containerPattern,
		excludeContainerName: buildExcludeContainerFilter(excludeContainers),
	}

	return
}
