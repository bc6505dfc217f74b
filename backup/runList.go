package backup

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rafaelcruz-net/AzureStorageSync/ste"
)

// CreateRunList builds one job per name, in discovery order. Names listed in priority get
// EJobPriority.High() and move to the front; the order is otherwise kept.
func CreateRunList(kind string, names []string, priority []string, newAction func(name string) ste.JobAction) []ste.Job {
	jobs := make([]ste.Job, 0, len(names))
	for _, name := range names {
		jobs = append(jobs, ste.Job{
			Name:     fmt.Sprintf("%s %s", kind, name),
			Priority: ste.EJobPriority.Normal(),
			Action:   newAction(name),
		})
		for _, p := range priority {
			if strings.EqualFold(p, name) {
				jobs[len(jobs)-1].Priority = ste.EJobPriority.High()
				break
			}
		}
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].Priority < jobs[j].Priority
	})
	return jobs
}
