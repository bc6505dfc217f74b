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
package ste

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/rafaelcruz-net/AzureStorageSync/common"
)

var concurrencyEnvName = common.EEnvironmentVariable.ConcurrencyValue().Name

func lookupOf(env map[string]string) func(string) string {
	return func(name string) string { return env[name] }
}

func TestConcurrencyValue(t *testing.T) {
	a := assert.New(t)

	c, err := GetMaxConcurrency(lookupOf(nil))
	a.NoError(err)
	a.Equal(5, c.Value)
	a.False(c.IsUserSpecified)
	a.Equal("Based on the default job concurrency. Set "+concurrencyEnvName+" environment variable to override", c.GetDescription())

	c, err = GetMaxConcurrency(lookupOf(map[string]string{concurrencyEnvName: "12"}))
	a.NoError(err)
	a.Equal(12, c.Value)
	a.True(c.IsUserSpecified)
	a.Equal("Based on "+concurrencyEnvName+" environment variable", c.GetDescription())
}

func TestConcurrencyValueInvalid(t *testing.T) {
	a := assert.New(t)

	_, err := GetMaxConcurrency(lookupOf(map[string]string{concurrencyEnvName: "lots"}))
	a.Error(err)
	a.Contains(err.Error(), concurrencyEnvName)

	for _, v := range []string{"0", "-3"} {
		_, err = GetMaxConcurrency(lookupOf(map[string]string{concurrencyEnvName: v}))
		a.True(errors.Is(err, ErrInvalidConcurrency), v)
	}
}
