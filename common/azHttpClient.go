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
	"net/http"
	"runtime"
	"sync"
	"time"
)

// GlobalHTTPClient is the process-wide HTTP client handed to every storage SDK client as its transport.
var (
	GlobalHTTPClient     *http.Client
	globalHTTPClientOnce sync.Once
)

// GetGlobalHTTPClient initializes and returns the process-global HTTP client exactly once.
// Subsequent calls return the same client. The logger, if provided on the first call,
// records the transport settings.
func GetGlobalHTTPClient(logger ILogger) *http.Client {
	globalHTTPClientOnce.Do(func() {
		const concurrentDialsPerCpu = 10
		transport := &http.Transport{
			Proxy:                 ProxyFromFunc(GetProxy()),
			MaxConnsPerHost:       concurrentDialsPerCpu * runtime.NumCPU(),
			MaxIdleConns:          0,
			MaxIdleConnsPerHost:   maxIdleConnsPerHost,
			IdleConnTimeout:       180 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			DisableKeepAlives:     false,
			DisableCompression:    true,
		}
		GlobalHTTPClient = &http.Client{Transport: transport}
		if logger != nil {
			logger.Log(LogInfo, fmt.Sprintf(
				"GetGlobalHTTPClient: initialized MaxIdleConnsPerHost=%d MaxConnsPerHost=%d",
				transport.MaxIdleConnsPerHost, transport.MaxConnsPerHost))
		}
	})
	return GlobalHTTPClient
}

// Block staging and server-side copies reuse connections heavily; keep enough idle ones
// around that a burst of StartCopyFromURL calls does not redial.
const maxIdleConnsPerHost = 300
