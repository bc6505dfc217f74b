package backup

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/rafaelcruz-net/AzureStorageSync/common"
	"github.com/rafaelcruz-net/AzureStorageSync/ste"
	"github.com/rafaelcruz-net/AzureStorageSync/traverser"
)

type copySource interface {
	ListBlobs(ctx context.Context, containerName string, processor traverser.ObjectProcessor) error
	ReadURL(containerName, blobName string, expiry time.Time) (string, error)
}

type copyDestination interface {
	CreateContainer(ctx context.Context, containerName string) error
	StartCopy(ctx context.Context, containerName, blobName, sourceURL string) error
}

type destinationAccount interface {
	copyDestination
	tableDestination
}

// containerBackup copies every blob of a container into the same-named container of the
// destination account. The copies run server side; a failed blob does not stop the others.
type containerBackup struct {
	src         copySource
	dst         copyDestination
	logger      common.ILogger
	sasValidity time.Duration
	concurrency int
	now         func() time.Time
}

func (b *containerBackup) action(containerName string) ste.JobAction {
	return func(ctx context.Context) error {
		return b.Run(ctx, containerName)
	}
}

func (b *containerBackup) Run(ctx context.Context, containerName string) error {
	common.GetLifecycleMgr().Info(fmt.Sprintf("Backing up container %s", containerName))

	if err := b.dst.CreateContainer(ctx, containerName); err != nil {
		return errors.Wrapf(err, "cannot create destination container %s", containerName)
	}

	expiry := b.now().Add(b.sasValidity)
	var copied, failed, bytes int64

	var g errgroup.Group
	g.SetLimit(b.concurrency)
	listErr := b.src.ListBlobs(ctx, containerName, func(so traverser.StoredObject) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.Go(func() error {
			if err := b.copyBlob(ctx, so, expiry); err != nil {
				atomic.AddInt64(&failed, 1)
				b.log(common.LogError, fmt.Sprintf("Failed to copy %s/%s: %v", containerName, so.Name, err))
				return nil
			}
			atomic.AddInt64(&copied, 1)
			atomic.AddInt64(&bytes, so.Size)
			return nil
		})
		return nil
	})
	_ = g.Wait() // copy failures are counted, never returned

	summary := fmt.Sprintf("%d blobs (%s) copied", copied, humanize.IBytes(uint64(bytes)))
	if listErr != nil {
		return errors.Wrapf(listErr, "listing stopped after %s", summary)
	}
	if failed > 0 {
		return errors.Errorf("%d of %d blobs failed to copy", failed, failed+copied)
	}

	common.GetLifecycleMgr().Info(fmt.Sprintf("Finished backing up container %s: %s", containerName, summary))
	return nil
}

func (b *containerBackup) copyBlob(ctx context.Context, so traverser.StoredObject, expiry time.Time) error {
	sourceURL, err := b.src.ReadURL(so.ContainerName, so.Name, expiry)
	if err != nil {
		return err
	}
	if err := b.dst.StartCopy(ctx, so.ContainerName, so.Name, sourceURL); err != nil {
		return err
	}
	b.log(common.LogDebug, fmt.Sprintf("Started copy of %s/%s (%s, %s)", so.ContainerName, so.Name, so.BlobType, humanize.IBytes(uint64(so.Size))))
	return nil
}

func (b *containerBackup) log(level common.LogLevel, msg string) {
	if b.logger != nil && b.logger.ShouldLog(level) {
		b.logger.Log(level, msg)
	}
}
