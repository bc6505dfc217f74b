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
	"io"
	"log"
	"path"
	"runtime"
	"strings"
	"sync"
	"time"
)

// CurrentJobLogger is the log of the backup run in progress. It is nil until a run opens its log.
var CurrentJobLogger ILoggerResetable

// LogToJobLogWithPrefix logs to the current run's log, if one is open.
func LogToJobLogWithPrefix(msg string, level LogLevel) {
	if CurrentJobLogger != nil {
		CurrentJobLogger.Log(level, msg)
	}
}

func withLevelPrefix(level LogLevel, msg string) string {
	if level <= LogWarning {
		return fmt.Sprintf("%s: %s", level, msg) // so readers can find serious ones, but information ones still look uncluttered without INFO:
	}
	return msg
}

type ILogger interface {
	ShouldLog(level LogLevel) bool
	Log(level LogLevel, msg string)
	Panic(err error)
}

type ILoggerCloser interface {
	ILogger
	CloseLog()
}

type ILoggerResetable interface {
	OpenLog()
	MinimumLogLevel() LogLevel
	ILoggerCloser
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

const maxLogSize = 500 * 1024 * 1024

type jobLogger struct {
	// maximum loglevel represents the maximum severity of log messages which can be logged to Job Log file.
	// any message with severity higher than this will be ignored.
	jobID             JobID
	minimumLevelToLog LogLevel       // The maximum customer-desired log level for this job
	file              io.WriteCloser // The job's log file
	logFileFolder     string         // The log file's parent folder, needed for opening the file at the right place
	logger            *log.Logger    // The Job's logger
	sanitizer         LogSanitizer
	logFileNameSuffix string // Used to allow more than 1 log per job
	maxFileSize       uint64
}

func NewJobLogger(jobID JobID, minimumLevelToLog LogLevel, logFileFolder string, logFileNameSuffix string) ILoggerResetable {
	return &jobLogger{
		jobID:             jobID,
		minimumLevelToLog: minimumLevelToLog,
		logFileFolder:     logFileFolder,
		sanitizer:         NewLogSanitizer(),
		logFileNameSuffix: logFileNameSuffix,
		maxFileSize:       maxLogSize,
	}
}

// LogFilePath is where OpenLog creates the job's log.
func (jl *jobLogger) LogFilePath() string {
	return path.Join(jl.logFileFolder, jl.jobID.String()+jl.logFileNameSuffix+".log")
}

func (jl *jobLogger) OpenLog() {
	if jl.minimumLevelToLog == LogNone {
		return
	}

	file, err := NewRotatingWriter(jl.LogFilePath(), jl.maxFileSize)
	PanicIfErr(err)

	jl.file = file

	flags := log.LstdFlags | log.LUTC
	utcMessage := fmt.Sprintf("Log times are in UTC. Local time is %s", time.Now().Format("2 Jan 2006 15:04:05"))

	jl.logger = log.New(jl.file, "", flags)
	jl.logger.Println("StorageSyncVersion ", Version)
	jl.logger.Println("OS-Environment ", runtime.GOOS)
	jl.logger.Println("OS-Architecture ", runtime.GOARCH)
	jl.logger.Println(utcMessage)
}

func (jl *jobLogger) MinimumLogLevel() LogLevel {
	return jl.minimumLevelToLog
}

func (jl *jobLogger) ShouldLog(level LogLevel) bool {
	if level == LogNone {
		return false
	}
	return level <= jl.minimumLevelToLog
}

func (jl *jobLogger) CloseLog() {
	if jl.minimumLevelToLog == LogNone || jl.logger == nil {
		return
	}

	jl.logger.Println("Closing Log")
	_ = jl.file.Close() // If it was already closed, that's alright. We wanted to close it, anyway.
}

func (jl *jobLogger) Log(loglevel LogLevel, msg string) {
	if !jl.ShouldLog(loglevel) || jl.logger == nil {
		return
	}

	// ensure all secrets are redacted
	msg = withLevelPrefix(loglevel, jl.sanitizer.SanitizeLogMessage(msg))

	if runtime.GOOS == "windows" {
		msg = strings.Replace(msg, "\n", "\r\n", -1)
	}
	jl.logger.Println(msg)
}

func (jl *jobLogger) Panic(err error) {
	if jl.logger != nil {
		jl.logger.Println(err) // We do NOT panic here as the app would terminate; we just log it
	}
	panic(err)
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

var memorySanitizer = NewLogSanitizer()

// MemoryLogger keeps log lines in memory. Tests use it to assert on what a component logged.
type MemoryLogger struct {
	mu                sync.Mutex
	minimumLevelToLog LogLevel
	lines             []string
}

func NewMemoryLogger(minimumLevelToLog LogLevel) *MemoryLogger {
	return &MemoryLogger{minimumLevelToLog: minimumLevelToLog}
}

func (ml *MemoryLogger) OpenLog()                  {}
func (ml *MemoryLogger) CloseLog()                 {}
func (ml *MemoryLogger) MinimumLogLevel() LogLevel { return ml.minimumLevelToLog }

func (ml *MemoryLogger) ShouldLog(level LogLevel) bool {
	return level != LogNone && level <= ml.minimumLevelToLog
}

func (ml *MemoryLogger) Log(level LogLevel, msg string) {
	if !ml.ShouldLog(level) {
		return
	}
	ml.mu.Lock()
	defer ml.mu.Unlock()
	ml.lines = append(ml.lines, withLevelPrefix(level, memorySanitizer.SanitizeLogMessage(msg)))
}

func (ml *MemoryLogger) Panic(err error) {
	ml.Log(LogPanic, err.Error())
	panic(err)
}

// Lines returns a copy of everything logged so far.
func (ml *MemoryLogger) Lines() []string {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	return append([]string(nil), ml.lines...)
}
