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
	"path/filepath"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	blobservice "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/service"

	"github.com/rafaelcruz-net/AzureStorageSync/common"
)

// StoredObject describes one listed blob, container or table.
type StoredObject struct {
	Name     string
	Size     int64
	BlobType blob.BlobType // will be "" when unknown or not applicable

	// container source, only included by account and blob traversers.
	ContainerName string
}

// ObjectProcessor is handed every object that passed the filters, in listing order.
type ObjectProcessor func(storedObject StoredObject) error

type ObjectFilter interface {
	DoesPass(storedObject StoredObject) bool
}

func passesFilters(so StoredObject, filters []ObjectFilter) bool {
	for _, f := range filters {
		if !f.DoesPass(so) {
			return false
		}
	}
	return true
}

// The listers below are the slices of the SDK clients the traversers page through.
// *service.Client, *container.Client, *aztables.ServiceClient and *aztables.Client satisfy them.

type ContainerLister interface {
	NewListContainersPager(o *blobservice.ListContainersOptions) *runtime.Pager[blobservice.ListContainersResponse]
}

type BlobLister interface {
	NewListBlobsFlatPager(o *container.ListBlobsFlatOptions) *runtime.Pager[container.ListBlobsFlatResponse]
}

type TableLister interface {
	NewListTablesPager(listOptions *aztables.ListTablesOptions) *runtime.Pager[aztables.ListTablesResponse]
}

type EntityLister interface {
	NewListEntitiesPager(listOptions *aztables.ListEntitiesOptions) *runtime.Pager[aztables.ListEntitiesResponse]
}

func containerNameMatchesPattern(containerName, pattern string) (bool, error) {
	return filepath.Match(pattern, containerName)
}

// WarnStdoutAndScanningLog prints to the console and, when a run log is open, records a warning there too.
func WarnStdoutAndScanningLog(toLog string) {
	common.GetLifecycleMgr().Info(toLog)
	common.LogToJobLogWithPrefix(toLog, common.LogWarning)
}
