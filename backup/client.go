package backup

import (
	"context"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	blobservice "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/service"
	"github.com/pkg/errors"

	"github.com/rafaelcruz-net/AzureStorageSync/common"
	"github.com/rafaelcruz-net/AzureStorageSync/partition"
	"github.com/rafaelcruz-net/AzureStorageSync/traverser"
)

// Client backs up the blob containers and tables of one storage account into another.
type Client struct {
	logger common.ILogger

	containers  traverser.ContainerLister
	tables      traverser.TableLister
	blobSource  copySource
	tableSource tableSource
	destination destinationAccount

	now func() time.Time
}

// NewClient connects to both accounts. Source and destination are storage connection strings.
func NewClient(source, destination string, logger common.ILogger) (*Client, error) {
	options := createClientOptions(logger)

	srcBlobs, err := blobservice.NewClientFromConnectionString(source, &blobservice.ClientOptions{ClientOptions: options})
	if err != nil {
		return nil, errors.Wrap(err, "invalid source connection string")
	}
	srcTables, err := aztables.NewServiceClientFromConnectionString(source, &aztables.ClientOptions{ClientOptions: options})
	if err != nil {
		return nil, errors.Wrap(err, "invalid source connection string")
	}
	dstBlobs, err := blobservice.NewClientFromConnectionString(destination, &blobservice.ClientOptions{ClientOptions: options})
	if err != nil {
		return nil, errors.Wrap(err, "invalid destination connection string")
	}

	return &Client{
		logger:      logger,
		containers:  srcBlobs,
		tables:      srcTables,
		blobSource:  &blobAccount{client: srcBlobs},
		tableSource: &tableAccount{client: srcTables},
		destination: &blobAccount{client: dstBlobs},
		now:         time.Now,
	}, nil
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// blobAccount adapts a blob service client to the source and destination seams of the backup jobs.
type blobAccount struct {
	client *blobservice.Client
}

func (a *blobAccount) ListBlobs(ctx context.Context, containerName string, processor traverser.ObjectProcessor) error {
	return traverser.NewBlobTraverser(ctx, containerName, a.client.NewContainerClient(containerName)).Traverse(processor, nil)
}

// ReadURL returns a URL the destination service can read the blob from until expiry.
// Accounts reached through a SAS connection string cannot sign, their URL already carries the token.
func (a *blobAccount) ReadURL(containerName, blobName string, expiry time.Time) (string, error) {
	blobClient := a.client.NewContainerClient(containerName).NewBlobClient(blobName)
	sasURL, err := blobClient.GetSASURL(sas.BlobPermissions{Read: true}, expiry, nil)
	if err != nil {
		if strings.Contains(blobClient.URL(), "sig=") {
			return blobClient.URL(), nil
		}
		return "", errors.Wrapf(err, "cannot sign a read URL for %s/%s", containerName, blobName)
	}
	return sasURL, nil
}

// CreateContainer creates a private container; one that already exists is fine.
func (a *blobAccount) CreateContainer(ctx context.Context, containerName string) error {
	_, err := a.client.NewContainerClient(containerName).Create(ctx, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return err
	}
	return nil
}

func (a *blobAccount) StartCopy(ctx context.Context, containerName, blobName, sourceURL string) error {
	_, err := a.client.NewContainerClient(containerName).NewBlobClient(blobName).StartCopyFromURL(ctx, sourceURL, nil)
	return err
}

func (a *blobAccount) NewObject(containerName, objectName string) blockStager {
	return a.client.NewContainerClient(containerName).NewBlockBlobClient(objectName)
}

type tableAccount struct {
	client *aztables.ServiceClient
}

func (a *tableAccount) NewReader(table string) partition.RecordReader {
	return traverser.NewTableEntityReader(a.client.NewClient(table), table)
}
