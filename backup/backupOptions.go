package backup

import (
	"regexp"
	"time"

	"github.com/pkg/errors"

	"github.com/rafaelcruz-net/AzureStorageSync/partition"
	"github.com/rafaelcruz-net/AzureStorageSync/ste"
)

const (
	DefaultMaxConcurrency       = 5
	DefaultBlobCopyConcurrency  = 16
	DefaultSASValidity          = 14 * 24 * time.Hour
	DefaultTableBackupContainer = "tablebackup"
)

// DefaultExcludeContainers are never worth copying: storage analytics logs and deployment packages.
var DefaultExcludeContainers = []string{"$logs", "vsdeploy"}

type BackupOptions struct {
	// storage connection strings
	Source      string
	Destination string

	MaxConcurrency int

	IncludeContainers  bool
	ContainerPattern   string
	PriorityContainers []string
	ExcludeContainers  []string

	IncludeTables  bool
	TablePattern   string
	PriorityTables []string
	ExcludeTables  []string

	// container in the destination account receiving the table objects
	TableBackupContainer string
	BlobCopyConcurrency  int
	SASValidity          time.Duration

	Limits partition.Limits
}

func DefaultBackupOptions() BackupOptions {
	return BackupOptions{
		MaxConcurrency:       DefaultMaxConcurrency,
		IncludeContainers:    true,
		ExcludeContainers:    append([]string(nil), DefaultExcludeContainers...),
		IncludeTables:        true,
		TableBackupContainer: DefaultTableBackupContainer,
		BlobCopyConcurrency:  DefaultBlobCopyConcurrency,
		SASValidity:          DefaultSASValidity,
		Limits:               partition.DefaultLimits(),
	}
}

var containerNameRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func isValidContainerName(name string) bool {
	return len(name) >= 3 && len(name) <= 63 && containerNameRegex.MatchString(name)
}

func (o BackupOptions) Validate() error {
	if o.Source == "" {
		return errors.New("the source connection string is required")
	}
	if o.Destination == "" {
		return errors.New("the destination connection string is required")
	}
	if o.MaxConcurrency < 1 {
		return errors.Wrapf(ste.ErrInvalidConcurrency, "max concurrency is %d", o.MaxConcurrency)
	}
	if !o.IncludeContainers && !o.IncludeTables {
		return errors.New("nothing to back up: both containers and tables are excluded")
	}
	if o.IncludeContainers {
		if o.BlobCopyConcurrency < 1 {
			return errors.Errorf("blob copy concurrency must be at least 1, got %d", o.BlobCopyConcurrency)
		}
		if o.SASValidity <= 0 {
			return errors.Errorf("SAS validity must be positive, got %v", o.SASValidity)
		}
	}
	if o.IncludeTables {
		if !isValidContainerName(o.TableBackupContainer) {
			return errors.Errorf("%q is not a valid container name for table backups", o.TableBackupContainer)
		}
		if err := o.Limits.Validate(); err != nil {
			return err
		}
	}
	return nil
}
