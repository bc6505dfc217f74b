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
	"reflect"

	"github.com/JeffreyRichter/enum/enum"
)

var EJobPriority = JobPriority(0)

// JobPriority orders jobs ascending: lower values start first.
// Only two tiers are used, jobs named in a priority list and everything else.
type JobPriority uint8

func (JobPriority) High() JobPriority   { return JobPriority(1) }
func (JobPriority) Normal() JobPriority { return JobPriority(3) }

func (p *JobPriority) Parse(s string) error {
	val, err := enum.Parse(reflect.TypeOf(p), s, true)
	if err == nil {
		*p = val.(JobPriority)
	}
	return err
}

func (p JobPriority) String() string {
	return enum.StringInt(p, reflect.TypeOf(p))
}
