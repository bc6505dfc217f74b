package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/rafaelcruz-net/AzureStorageSync/common"
	"github.com/rafaelcruz-net/AzureStorageSync/ste"
	"github.com/rafaelcruz-net/AzureStorageSync/traverser"
)

// runTimestampFormat names the folder that holds one run's table objects.
const runTimestampFormat = "20060102T150405Z"

// Backup copies every selected container and table of the source account into the destination,
// at most opts.MaxConcurrency of them at a time. A failed job does not stop the others;
// the returned summary tells which ones failed.
func (c *Client) Backup(ctx context.Context, opts BackupOptions) (ste.RunSummary, error) {
	if err := opts.Validate(); err != nil {
		return ste.RunSummary{}, err
	}

	started := c.now().UTC()
	lcm := common.GetLifecycleMgr()
	lcm.Info("Backup started")
	c.log(common.LogInfo, fmt.Sprintf("Backup started with max concurrency %d", opts.MaxConcurrency))

	var jobs []ste.Job
	if opts.IncludeContainers {
		containers, err := traverser.NewBlobAccountTraverser(ctx, c.containers, opts.ContainerPattern, opts.ExcludeContainers).ListContainers()
		if err != nil {
			return ste.RunSummary{}, err
		}

		job := &containerBackup{
			src:         c.blobSource,
			dst:         c.destination,
			logger:      c.logger,
			sasValidity: opts.SASValidity,
			concurrency: opts.BlobCopyConcurrency,
			now:         c.now,
		}
		jobs = append(jobs, CreateRunList("container", containers, opts.PriorityContainers, job.action)...)
	}

	if opts.IncludeTables {
		tables, err := traverser.NewTableAccountTraverser(ctx, c.tables, opts.TablePattern, opts.ExcludeTables).ListTables()
		if err != nil {
			return ste.RunSummary{}, err
		}

		if len(tables) > 0 {
			if err := c.destination.CreateContainer(ctx, opts.TableBackupContainer); err != nil {
				return ste.RunSummary{}, errors.Wrapf(err, "cannot create table backup container %s", opts.TableBackupContainer)
			}
		}

		job := &tableBackup{
			src:          c.tableSource,
			dst:          c.destination,
			logger:       c.logger,
			container:    opts.TableBackupContainer,
			runTimestamp: started.Format(runTimestampFormat),
			limits:       opts.Limits,
		}
		jobs = append(jobs, CreateRunList("table", tables, opts.PriorityTables, job.action)...)
	}

	summary, err := ste.NewWorkScheduler(c.logger).Run(ctx, jobs, opts.MaxConcurrency)
	if err != nil {
		return summary, err
	}

	c.logSummary(summary)
	lcm.Info(fmt.Sprintf("Backup finished in %v: %d jobs succeeded, %d failed",
		summary.Elapsed.Round(time.Millisecond), summary.Succeeded(), len(summary.Failed())))
	return summary, nil
}

func (c *Client) logSummary(summary ste.RunSummary) {
	for _, r := range summary.Results {
		if r.Err != nil {
			c.log(common.LogError, fmt.Sprintf("%s (priority %s) failed after %v: %v", r.Name, r.Priority, r.Duration, r.Err))
			common.GetLifecycleMgr().Warn(fmt.Sprintf("%s failed: %v", r.Name, r.Err))
			continue
		}
		c.log(common.LogInfo, fmt.Sprintf("%s (priority %s) completed in %v", r.Name, r.Priority, r.Duration))
	}
}

func (c *Client) log(level common.LogLevel, msg string) {
	if c.logger != nil && c.logger.ShouldLog(level) {
		c.logger.Log(level, msg)
	}
}
