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
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func logFileNames(t *testing.T, folder string) []string {
	entries, err := os.ReadDir(folder)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestRotatingWriterKeepsJobLogNames(t *testing.T) {
	a := assert.New(t)
	folder := t.TempDir()
	base := NewJobID().String() + "-scanning"
	line := []byte(strings.Repeat("x", 31) + "\n") // 32 bytes

	w, err := NewRotatingWriter(path.Join(folder, base+".log"), 64)
	a.NoError(err)

	// two lines fill the file exactly
	for i := 0; i < 2; i++ {
		n, err := w.Write(line)
		a.NoError(err)
		a.Equal(len(line), n)
	}
	a.Equal([]string{base + ".log"}, logFileNames(t, folder))

	// the third goes to a fresh file, the full one keeps its number
	_, err = w.Write(line)
	a.NoError(err)
	a.Equal([]string{base + ".0.log", base + ".log"}, logFileNames(t, folder))

	for i := 0; i < 2; i++ {
		_, err = w.Write(line)
		a.NoError(err)
	}
	a.NoError(w.Close())
	a.Equal([]string{base + ".0.log", base + ".1.log", base + ".log"}, logFileNames(t, folder))

	rotated, err := os.ReadFile(path.Join(folder, base+".0.log"))
	a.NoError(err)
	a.Equal(64, len(rotated))
	current, err := os.ReadFile(path.Join(folder, base+".log"))
	a.NoError(err)
	a.Equal(32, len(current))
}

func TestRotatingWriterRotatesOnceUnderConcurrentWrites(t *testing.T) {
	a := assert.New(t)
	folder := t.TempDir()
	base := NewJobID().String()
	chunk := []byte("0123456789")

	w, err := NewRotatingWriter(path.Join(folder, base+".log"), 100)
	a.NoError(err)
	for i := 0; i < 9; i++ {
		_, err = w.Write(chunk)
		a.NoError(err)
	}

	// 90 bytes written: the first concurrent write fills the file, the others share one new file
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := w.Write(chunk)
			a.NoError(err)
			a.Equal(len(chunk), n)
		}()
	}
	wg.Wait()
	a.NoError(w.Close())

	a.Equal([]string{base + ".0.log", base + ".log"}, logFileNames(t, folder))
}

func TestJobLoggerRotatesWithoutLosingLines(t *testing.T) {
	a := assert.New(t)
	folder := t.TempDir()
	id := NewJobID()

	logger := NewJobLogger(id, LogInfo, folder, "")
	logger.(*jobLogger).maxFileSize = 1024
	logger.OpenLog()
	const messages = 40
	for i := 0; i < messages; i++ {
		logger.Log(LogInfo, fmt.Sprintf("Staged block %02d of orders/ts/00000.json", i))
	}
	logger.CloseLog()

	names := logFileNames(t, folder)
	a.Contains(names, id.String()+".0.log")
	a.Contains(names, id.String()+".log")

	var all strings.Builder
	for _, name := range names {
		a.True(strings.HasPrefix(name, id.String()), name)
		content, err := os.ReadFile(path.Join(folder, name))
		a.NoError(err)
		a.LessOrEqual(len(content), 1024)
		all.Write(content)
	}
	for i := 0; i < messages; i++ {
		a.Equal(1, strings.Count(all.String(), fmt.Sprintf("Staged block %02d of", i)))
	}

	first, err := os.ReadFile(path.Join(folder, id.String()+".0.log"))
	a.NoError(err)
	a.Contains(string(first), "StorageSyncVersion")
}
