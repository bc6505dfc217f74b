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
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/rafaelcruz-net/AzureStorageSync/common"
)

// ConfiguredInt is an integer which may be optionally configured by user through an environment variable
type ConfiguredInt struct {
	Value             int
	IsUserSpecified   bool
	EnvVarName        string
	DefaultSourceDesc string
}

func (i *ConfiguredInt) GetDescription() string {
	if i.IsUserSpecified {
		return fmt.Sprintf("Based on %s environment variable", i.EnvVarName)
	} else {
		return fmt.Sprintf("Based on %s. Set %s environment variable to override", i.DefaultSourceDesc, i.EnvVarName)
	}
}

// tryNewConfiguredInt populates a ConfiguredInt from an environment variable, or returns nil if env var is not set
func tryNewConfiguredInt(envVar common.EnvironmentVariable, lookup func(string) string) (*ConfiguredInt, error) {
	override := lookup(envVar.Name)
	if override == "" {
		return nil, nil
	}
	val, err := strconv.ParseInt(override, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing the env %s %q", envVar.Name, override)
	}
	if val < 1 {
		return nil, errors.Wrapf(ErrInvalidConcurrency, "env %s is %d", envVar.Name, val)
	}
	return &ConfiguredInt{int(val), true, envVar.Name, ""}, nil
}

// GetMaxConcurrency returns how many containers and tables may be backed up at the same time.
// STORAGESYNC_CONCURRENCY_VALUE overrides the built-in default.
func GetMaxConcurrency(lookup func(string) string) (*ConfiguredInt, error) {
	envVar := common.EEnvironmentVariable.ConcurrencyValue()
	if c, err := tryNewConfiguredInt(envVar, lookup); c != nil || err != nil {
		return c, err
	}

	def, _ := strconv.Atoi(envVar.DefaultValue)
	return &ConfiguredInt{def, false, envVar.Name, "the default job concurrency"}, nil
}
