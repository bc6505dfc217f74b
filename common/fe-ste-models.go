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
	"encoding/json"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/JeffreyRichter/enum/enum"
	"github.com/google/uuid"
)

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// JobID identifies one backup run. It names the run's log file.
type JobID uuid.UUID

func NewJobID() JobID {
	return JobID(uuid.New())
}

func (j JobID) IsEmpty() bool {
	return j == JobID{}
}

func ParseJobID(jobID string) (JobID, error) {
	u, err := uuid.Parse(jobID)
	if err != nil {
		return JobID{}, err
	}
	return JobID(u), nil
}

func (j JobID) String() string {
	return uuid.UUID(j).String()
}

// Implementing MarshalJSON() method for type JobID
func (j JobID) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.String())
}

// Implementing UnmarshalJSON() method for type JobID
func (j *JobID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	id, err := ParseJobID(s)
	if err != nil {
		return err
	}
	*j = id
	return nil
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

var ELogLevel = LogLevel(0)

// LogLevel orders severities from most (Panic) to least (Debug) severe; None disables logging.
type LogLevel byte

const (
	LogNone    = LogLevel(0)
	LogPanic   = LogLevel(1)
	LogFatal   = LogLevel(2)
	LogError   = LogLevel(3)
	LogWarning = LogLevel(4)
	LogInfo    = LogLevel(5)
	LogDebug   = LogLevel(6)
)

func (LogLevel) None() LogLevel    { return LogNone }
func (LogLevel) Panic() LogLevel   { return LogPanic }
func (LogLevel) Fatal() LogLevel   { return LogFatal }
func (LogLevel) Error() LogLevel   { return LogError }
func (LogLevel) Warning() LogLevel { return LogWarning }
func (LogLevel) Info() LogLevel    { return LogInfo }
func (LogLevel) Debug() LogLevel   { return LogDebug }

func (ll *LogLevel) Parse(s string) error {
	if strings.EqualFold(s, "WARN") { // String() abbreviates Warning
		*ll = LogWarning
		return nil
	}
	val, err := enum.ParseInt(reflect.TypeOf(ll), s, true, true)
	if err == nil {
		*ll = val.(LogLevel)
	}
	return err
}

func (ll LogLevel) String() string {
	switch ll {
	case LogNone:
		return "NONE"
	case LogPanic:
		return "PANIC"
	case LogFatal:
		return "FATAL"
	case LogError:
		return "ERROR"
	case LogWarning:
		return "WARN"
	case LogInfo:
		return "INFO"
	case LogDebug:
		return "DEBUG"
	default:
		return enum.StringInt(ll, reflect.TypeOf(ll))
	}
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

var EJobStatus = JobStatus(0)

// JobStatus is the outcome of one scheduled job.
type JobStatus uint32 // Must be 32-bit for atomic operations

func (JobStatus) NotStarted() JobStatus { return JobStatus(0) }
func (JobStatus) InProgress() JobStatus { return JobStatus(1) }
func (JobStatus) Completed() JobStatus  { return JobStatus(2) }
func (JobStatus) Failed() JobStatus     { return JobStatus(3) }

func (j *JobStatus) AtomicLoad() JobStatus {
	return JobStatus(atomic.LoadUint32((*uint32)(j)))
}

func (j *JobStatus) AtomicStore(newJobStatus JobStatus) {
	atomic.StoreUint32((*uint32)(j), uint32(newJobStatus))
}

func (j *JobStatus) Parse(s string) error {
	val, err := enum.Parse(reflect.TypeOf(j), s, true)
	if err == nil {
		*j = val.(JobStatus)
	}
	return err
}

func (j JobStatus) String() string {
	return enum.StringInt(j, reflect.TypeOf(j))
}

// Implementing MarshalJSON() method for type JobStatus
func (j JobStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.String())
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

var EExitCode = ExitCode(0)

type ExitCode uint32

func (ExitCode) Success() ExitCode { return ExitCode(0) }
func (ExitCode) Error() ExitCode   { return ExitCode(1) }

func (c ExitCode) String() string {
	return enum.StringInt(c, reflect.TypeOf(c))
}
