package common

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var lcm LifecycleMgr = NewLifecycleMgr(os.Stdout, os.Stderr)

// SetLifecycleMgr replaces the process-wide lifecycle manager.
// Be careful when using this function, as it will replace the existing lifecycle manager.
func SetLifecycleMgr(mgr LifecycleMgr) {
	lcm = mgr
}

func GetLifecycleMgr() LifecycleMgr {
	return lcm
}

// LifecycleMgr owns console output and the process exit.
// Jobs run concurrently, so implementations must serialize writes.
type LifecycleMgr interface {
	Info(msg string)  // simple print, timestamped like the run banners
	Warn(msg string)  // print to stderr, keep going
	Error(msg string) // print to stderr and exit with EExitCode.Error()
	Exit(code ExitCode)
}

type lifecycleMgr struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	exit   func(int)
}

func NewLifecycleMgr(out, errOut io.Writer) LifecycleMgr {
	return &lifecycleMgr{out: out, errOut: errOut, exit: os.Exit}
}

// consoleTimeFormat mirrors the "yyyy MM dd hh:mm:ss" stamp of the run banners.
const consoleTimeFormat = "2006 01 02 15:04:05"

func (m *lifecycleMgr) print(w io.Writer, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, _ = fmt.Fprintf(w, "%s %s\n", time.Now().UTC().Format(consoleTimeFormat), msg)
}

func (m *lifecycleMgr) Info(msg string) {
	m.print(m.out, msg)
}

func (m *lifecycleMgr) Warn(msg string) {
	m.print(m.errOut, "WARN: "+msg)
}

func (m *lifecycleMgr) Error(msg string) {
	m.print(m.errOut, "ERROR: "+msg)
	m.Exit(EExitCode.Error())
}

func (m *lifecycleMgr) Exit(code ExitCode) {
	if CurrentJobLogger != nil {
		CurrentJobLogger.CloseLog()
	}
	m.exit(int(code))
}
