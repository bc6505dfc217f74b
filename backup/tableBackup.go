package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/streaming"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/rafaelcruz-net/AzureStorageSync/common"
	"github.com/rafaelcruz-net/AzureStorageSync/partition"
	"github.com/rafaelcruz-net/AzureStorageSync/ste"
)

type tableSource interface {
	NewReader(table string) partition.RecordReader
}

// blockStager is the part of *blockblob.Client a table backup writes through.
type blockStager interface {
	StageBlock(ctx context.Context, base64BlockID string, body io.ReadSeekCloser, options *blockblob.StageBlockOptions) (blockblob.StageBlockResponse, error)
	CommitBlockList(ctx context.Context, base64BlockIDs []string, options *blockblob.CommitBlockListOptions) (blockblob.CommitBlockListResponse, error)
}

type tableDestination interface {
	NewObject(containerName, objectName string) blockStager
}

// blockDocument is the staged form of one block: its batches in order, each holding raw entity JSON.
type blockDocument struct {
	Batches [][]json.RawMessage `json:"batches"`
}

// tableBackup streams a table into block blobs. Every container object of the partitioner
// becomes one blob, every block one staged block of it.
type tableBackup struct {
	src          tableSource
	dst          tableDestination
	logger       common.ILogger
	container    string
	runTimestamp string
	limits       partition.Limits
}

func (b *tableBackup) action(table string) ste.JobAction {
	return func(ctx context.Context) error {
		return b.Run(ctx, table)
	}
}

func objectName(table, runTimestamp string, index int) string {
	return fmt.Sprintf("%s/%s/%05d.json", table, runTimestamp, index)
}

func (b *tableBackup) Run(ctx context.Context, table string) error {
	common.GetLifecycleMgr().Info(fmt.Sprintf("Backing up table %s", table))

	p, err := partition.NewPartitioner(b.src.NewReader(table), b.limits)
	if err != nil {
		return err
	}

	var objects, records int
	var size int64
	for obj, ok := p.NextContainerObject(ctx); ok; obj, ok = p.NextContainerObject(ctx) {
		name := objectName(table, b.runTimestamp, obj.Index())
		stager := b.dst.NewObject(b.container, name)

		for block, ok := obj.NextBlock(ctx); ok; block, ok = obj.NextBlock(ctx) {
			payload, err := encodeBlock(ctx, block)
			if err != nil {
				return errors.Wrapf(err, "cannot encode a block of %s", name)
			}
			if block.Len() == 0 {
				continue
			}

			if _, err := stager.StageBlock(ctx, block.ID(), streaming.NopCloser(bytes.NewReader(payload)), nil); err != nil {
				return errors.Wrapf(err, "cannot stage block %s of %s", block.ID(), name)
			}
			s := block.Summary()
			records += s.Records
			size += s.Size
			b.log(common.LogInfo, fmt.Sprintf("Staged block %s of %s: %d batches, %d entities, %s, (%s, %s) to (%s, %s)",
				s.ID, name, s.Batches, s.Records, humanize.IBytes(uint64(s.Size)),
				s.First.PartitionKey, s.First.RowKey, s.Last.PartitionKey, s.Last.RowKey))
		}

		// a failed source leaves the object uncommitted
		if err := p.Err(); err != nil {
			break
		}
		ids := obj.BlockIDs()
		if len(ids) == 0 {
			continue
		}
		_, err := stager.CommitBlockList(ctx, ids, &blockblob.CommitBlockListOptions{
			HTTPHeaders: &blob.HTTPHeaders{BlobContentType: to.Ptr("application/json")},
			Metadata:    map[string]*string{"sourcetable": to.Ptr(table)},
		})
		if err != nil {
			return errors.Wrapf(err, "cannot commit %s", name)
		}
		objects++
	}
	if err := p.Err(); err != nil {
		return errors.Wrapf(err, "backup of table %s stopped after %d entities", table, records)
	}

	common.GetLifecycleMgr().Info(fmt.Sprintf("Finished backing up table %s: %d entities in %d objects (%s)",
		table, records, objects, humanize.IBytes(uint64(size))))
	return nil
}

// encodeBlock drains block and renders it as a blockDocument.
func encodeBlock(ctx context.Context, block *partition.Block) ([]byte, error) {
	doc := blockDocument{Batches: make([][]json.RawMessage, 0)}
	for batch, ok := block.NextBatch(ctx); ok; batch, ok = block.NextBatch(ctx) {
		entities := make([]json.RawMessage, 0, batch.Len())
		for rec, ok := batch.Next(ctx); ok; rec, ok = batch.Next(ctx) {
			entities = append(entities, json.RawMessage(rec.Payload))
		}
		doc.Batches = append(doc.Batches, entities)
	}
	return json.Marshal(doc)
}

func (b *tableBackup) log(level common.LogLevel, msg string) {
	if b.logger != nil && b.logger.ShouldLog(level) {
		b.logger.Log(level, msg)
	}
}
