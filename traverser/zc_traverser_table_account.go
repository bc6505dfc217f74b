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
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Enumerates the tables of a storage account
type tableAccountTraverser struct {
	ctx           context.Context
	serviceClient TableLister
	tablePattern  string
	cachedTables  []string

	excludeTableName []ObjectFilter
}

// ListTables returns the names of the tables that are not excluded.
func (t *tableAccountTraverser) ListTables() ([]string, error) {
	if len(t.cachedTables) > 0 {
		return t.cachedTables, nil
	}

	var skippedTables []string
	tList := make([]string, 0)
	pager := t.serviceClient.NewListTablesPager(nil)
	for pager.More() {
		resp, err := pager.NextPage(t.ctx)
		if err != nil {
			return nil, errors.Wrap(err, "cannot list tables")
		}
		for _, v := range resp.Tables {
			if v == nil || v.Name == nil {
				continue
			}

			if t.tablePattern != "" {
				if ok, err := containerNameMatchesPattern(*v.Name, t.tablePattern); err != nil {
					return nil, err
				} else if !ok {
					continue
				}
			}

			if !passesFilters(StoredObject{Name: *v.Name}, t.excludeTableName) {
				skippedTables = append(skippedTables, *v.Name)
				continue
			}
			tList = append(tList, *v.Name)
		}
	}

	if len(skippedTables) > 0 {
		WarnStdoutAndScanningLog(fmt.Sprintf("Skipped table(s): %s", strings.Join(skippedTables, ", ")))
	}
	t.cachedTables = tList
	return tList, nil
}

func NewTableAccountTraverser(ctx context.Context, serviceClient TableLister, tablePattern string, excludeTables []string) *tableAccountTraverser {
	return &tableAccountTraverser{
		ctx:              ctx,
		serviceClient:    serviceClient,
		tablePattern:     tablePattern,
		excludeTableName: buildExcludeTableFilter(excludeTables),
	}
}
