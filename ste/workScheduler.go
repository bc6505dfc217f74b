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
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/rafaelcruz-net/AzureStorageSync/common"
)

var ErrInvalidConcurrency = errors.New("max concurrency must be at least 1")

// JobAction is the body of a job. Returning an error marks the job failed; the run carries on.
type JobAction func(ctx context.Context) error

// Job is one independent unit of work, for example backing up one container or one table.
type Job struct {
	Name     string
	Priority JobPriority
	Action   JobAction
}

// JobResult records how a job ended. Sequence is the position in which the job was dispatched.
type JobResult struct {
	Name     string
	Priority JobPriority
	Sequence int
	Status   common.JobStatus
	Err      error
	Start    time.Time
	Duration time.Duration
}

// RunSummary lists the job results in completion order.
type RunSummary struct {
	Results []JobResult
	Elapsed time.Duration
}

func (s RunSummary) Failed() []JobResult {
	var failed []JobResult
	for _, r := range s.Results {
		if r.Status == common.EJobStatus.Failed() {
			failed = append(failed, r)
		}
	}
	return failed
}

func (s RunSummary) Succeeded() int {
	return len(s.Results) - len(s.Failed())
}

// ExitCode is EExitCode.Error() when any job failed.
func (s RunSummary) ExitCode() common.ExitCode {
	return common.Iff(len(s.Failed()) == 0, common.EExitCode.Success(), common.EExitCode.Error())
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

type dispatchedJob struct {
	Job
	sequence int
}

// WorkScheduler runs a priority-ordered list of jobs with at most N of them active.
// Every finished job is replaced by exactly one queued job, and the run ends once the
// queue is empty and the last active job has finished.
type WorkScheduler struct {
	logger common.ILogger

	mu         sync.Mutex
	running    bool
	queue      []dispatchedJob
	active     int
	dispatched int
	signaled   bool
	done       chan struct{}
	results    []JobResult
}

func NewWorkScheduler(logger common.ILogger) *WorkScheduler {
	return &WorkScheduler{logger: logger}
}

// ActiveCount returns the number of jobs currently running.
func (s *WorkScheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Run blocks until every job has completed, successfully or not.
// Jobs are started in ascending priority, keeping the given order within a priority.
// Calling Run again before it returns is a programming error and panics.
func (s *WorkScheduler) Run(ctx context.Context, jobs []Job, maxConcurrency int) (RunSummary, error) {
	if maxConcurrency < 1 {
		return RunSummary{}, errors.Wrapf(ErrInvalidConcurrency, "got %d", maxConcurrency)
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		panic("WorkScheduler.Run called while a previous run is still in progress")
	}
	s.running = true
	s.queue = make([]dispatchedJob, 0, len(jobs))
	for _, j := range sortByPriority(jobs) {
		s.queue = append(s.queue, dispatchedJob{Job: j})
	}
	s.active, s.dispatched, s.signaled = 0, 0, false
	s.results = make([]JobResult, 0, len(jobs))
	s.done = make(chan struct{})
	startTime := time.Now()

	// only jobs that are actually started count as active, so a short list never waits on phantom workers
	var initial []dispatchedJob
	for s.active < maxConcurrency && len(s.queue) > 0 {
		initial = append(initial, s.dequeueLocked())
		s.active++
	}
	if s.active == 0 {
		s.signalLocked()
	}
	done := s.done
	s.mu.Unlock()

	s.log(common.LogInfo, fmt.Sprintf("Scheduling %d jobs with max concurrency %d", len(jobs), maxConcurrency))
	for _, j := range initial {
		go s.worker(ctx, j)
	}

	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	summary := RunSummary{Results: s.results, Elapsed: time.Since(startTime)}
	s.results = nil
	s.running = false
	return summary, nil
}

// worker runs j, then keeps taking the next queued job until the queue is drained.
func (s *WorkScheduler) worker(ctx context.Context, j dispatchedJob) {
	for {
		result := s.execute(ctx, j)
		next, ok := s.onJobComplete(result)
		if !ok {
			return
		}
		j = next
	}
}

func (s *WorkScheduler) execute(ctx context.Context, j dispatchedJob) (result JobResult) {
	result = JobResult{Name: j.Name, Priority: j.Priority, Sequence: j.sequence, Start: time.Now()}
	status := common.EJobStatus.InProgress()

	defer func() {
		if r := recover(); r != nil {
			result.Err = errors.Errorf("job %s panicked: %v", j.Name, r)
		}
		result.Duration = time.Since(result.Start)
		if result.Err != nil {
			status.AtomicStore(common.EJobStatus.Failed())
			s.log(common.LogError, fmt.Sprintf("Job %s failed after %v: %v", j.Name, result.Duration, result.Err))
		} else {
			status.AtomicStore(common.EJobStatus.Completed())
			s.log(common.LogInfo, fmt.Sprintf("Job %s completed in %v", j.Name, result.Duration))
		}
		result.Status = status.AtomicLoad()
	}()

	// jobs dequeued after cancellation are not started, but still complete so the run can end
	if err := ctx.Err(); err != nil {
		result.Err = errors.Wrapf(err, "job %s not started", j.Name)
		return
	}

	s.log(common.LogInfo, fmt.Sprintf("Starting job %s (priority %s)", j.Name, j.Priority))
	if j.Action == nil {
		result.Err = errors.Errorf("job %s has no action", j.Name)
		return
	}
	result.Err = j.Action(ctx)
	return
}

// onJobComplete records result and hands back the next queued job, if any.
// When nothing is queued the caller's slot is released, and the last release ends the run.
func (s *WorkScheduler) onJobComplete(result JobResult) (dispatchedJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = append(s.results, result)
	if len(s.queue) > 0 {
		return s.dequeueLocked(), true
	}

	s.active--
	if s.active == 0 {
		s.signalLocked()
	}
	return dispatchedJob{}, false
}

func (s *WorkScheduler) dequeueLocked() dispatchedJob {
	j := s.queue[0]
	s.queue = s.queue[1:]
	j.sequence = s.dispatched
	s.dispatched++
	return j
}

func (s *WorkScheduler) signalLocked() {
	if s.signaled {
		panic("WorkScheduler completion signaled twice")
	}
	s.signaled = true
	close(s.done)
}

func (s *WorkScheduler) log(level common.LogLevel, msg string) {
	if s.logger != nil && s.logger.ShouldLog(level) {
		s.logger.Log(level, msg)
	}
}

// sortByPriority returns a copy of jobs sorted ascending by priority, stable within a priority.
func sortByPriority(jobs []Job) []Job {
	sorted := make([]Job, len(jobs))
	copy(sorted, jobs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return sorted
}
