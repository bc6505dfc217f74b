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

package common

import (
	"os"
	"path"

	"github.com/pkg/errors"
)

var LogPathFolder string

// InitializeFolders picks the log folder: STORAGESYNC_LOG_LOCATION when set, else appPathFolder.
// The folder is created if needed.
func InitializeFolders(appPathFolder string) (string, error) {
	LogPathFolder = GetEnvironmentVariable(EEnvironmentVariable.LogLocation()) // user specified location for log files

	// the user can optionally put the log files somewhere else
	if LogPathFolder == "" {
		LogPathFolder = path.Join(appPathFolder, "logs")
	}
	if err := os.MkdirAll(LogPathFolder, os.ModeDir|os.ModePerm); err != nil && !os.IsExist(err) {
		return "", errors.Wrapf(err, "problem making log directory %s. Try setting %s", LogPathFolder, EEnvironmentVariable.LogLocation().Name)
	}
	return LogPathFolder, nil
}
