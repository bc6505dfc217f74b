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
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/rafaelcruz-net/AzureStorageSync/backup"
	"github.com/rafaelcruz-net/AzureStorageSync/common"
	"github.com/rafaelcruz-net/AzureStorageSync/ste"
)

const (
	sourceFlag               = "source"
	destinationFlag          = "destination"
	configFlag               = "config"
	maxConcurrencyFlag       = "max-concurrency"
	includeContainersFlag    = "include-containers"
	containerPatternFlag     = "container-pattern"
	priorityContainersFlag   = "priority-containers"
	excludeContainersFlag    = "exclude-containers"
	includeTablesFlag        = "include-tables"
	tablePatternFlag         = "table-pattern"
	priorityTablesFlag       = "priority-tables"
	excludeTablesFlag        = "exclude-tables"
	tableBackupContainerFlag = "table-backup-container"
	blobCopyConcurrencyFlag  = "blob-copy-concurrency"
	sasValidityFlag          = "sas-validity"
)

// holds raw input from user
type rawBackupCmdArgs struct {
	configPath  string
	source      string
	destination string

	maxConcurrency int

	includeContainers  bool
	containerPattern   string
	priorityContainers []string
	excludeContainers  []string

	includeTables  bool
	tablePattern   string
	priorityTables []string
	excludeTables  []string

	tableBackupContainer string
	blobCopyConcurrency  int
	sasValidity          time.Duration
}

func (raw *rawBackupCmdArgs) bindFlags(flags *pflag.FlagSet) {
	defaults := backup.DefaultBackupOptions()

	flags.StringVar(&raw.configPath, configFlag, "", "YAML file holding the backup settings. Flags given on the command line override it.")
	flags.StringVar(&raw.source, sourceFlag, "", "Connection string of the account to back up. Defaults to "+common.EEnvironmentVariable.SourceConnectionString().Name+".")
	flags.StringVar(&raw.destination, destinationFlag, "", "Connection string of the account receiving the backup. Defaults to "+common.EEnvironmentVariable.DestinationConnectionString().Name+".")
	flags.IntVar(&raw.maxConcurrency, maxConcurrencyFlag, defaults.MaxConcurrency, "How many containers and tables are backed up at the same time. Defaults to "+common.EEnvironmentVariable.ConcurrencyValue().Name+" when set.")

	flags.BoolVar(&raw.includeContainers, includeContainersFlag, defaults.IncludeContainers, "Back up the blob containers.")
	flags.StringVar(&raw.containerPattern, containerPatternFlag, "", "Only back up containers whose name matches this wildcard pattern, e.g. 'prod-*'.")
	flags.StringSliceVar(&raw.priorityContainers, priorityContainersFlag, nil, "Containers to start first, comma separated.")
	flags.StringSliceVar(&raw.excludeContainers, excludeContainersFlag, defaults.ExcludeContainers, "Containers to skip, comma separated.")

	flags.BoolVar(&raw.includeTables, includeTablesFlag, defaults.IncludeTables, "Back up the tables.")
	flags.StringVar(&raw.tablePattern, tablePatternFlag, "", "Only back up tables whose name matches this wildcard pattern.")
	flags.StringSliceVar(&raw.priorityTables, priorityTablesFlag, nil, "Tables to start first, comma separated. Matching ignores case.")
	flags.StringSliceVar(&raw.excludeTables, excludeTablesFlag, nil, "Tables to skip, comma separated. Matching ignores case.")

	flags.StringVar(&raw.tableBackupContainer, tableBackupContainerFlag, defaults.TableBackupContainer, "Destination container receiving the table backups.")
	flags.IntVar(&raw.blobCopyConcurrency, blobCopyConcurrencyFlag, defaults.BlobCopyConcurrency, "How many blob copies of one container are started at the same time.")
	flags.DurationVar(&raw.sasValidity, sasValidityFlag, defaults.SASValidity, "How long the read SAS handed to the server-side copies stays valid.")
}

// backupConfigFile is the YAML form of the backup flags. Unset keys keep the defaults.
type backupConfigFile struct {
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`

	MaxConcurrency *int `yaml:"max-concurrency"`

	IncludeContainers  *bool    `yaml:"include-containers"`
	ContainerPattern   string   `yaml:"container-pattern"`
	PriorityContainers []string `yaml:"priority-containers"`
	ExcludeContainers  []string `yaml:"exclude-containers"`

	IncludeTables  *bool    `yaml:"include-tables"`
	TablePattern   string   `yaml:"table-pattern"`
	PriorityTables []string `yaml:"priority-tables"`
	ExcludeTables  []string `yaml:"exclude-tables"`

	TableBackupContainer string         `yaml:"table-backup-container"`
	BlobCopyConcurrency  *int           `yaml:"blob-copy-concurrency"`
	SASValidity          *time.Duration `yaml:"sas-validity"`

	Limits *backupLimitsConfig `yaml:"limits"`
}

type backupLimitsConfig struct {
	EntitiesPerBatch *int   `yaml:"entities-per-batch"`
	BatchSize        *int64 `yaml:"batch-size"`
	BlockSize        *int64 `yaml:"block-size"`
	BlocksPerObject  *int   `yaml:"blocks-per-object"`
}

func loadBackupConfigFile(filePath string) (backupConfigFile, error) {
	var cfg backupConfigFile

	f, err := os.Open(filePath)
	if err != nil {
		return cfg, errors.Wrapf(err, "cannot open config file %s", filePath)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, errors.Wrapf(err, "cannot parse config file %s", filePath)
	}
	return cfg, nil
}

// apply copies every key set in the file onto opts.
func (cfg backupConfigFile) apply(opts *backup.BackupOptions) {
	if cfg.Source != "" {
		opts.Source = cfg.Source
	}
	if cfg.Destination != "" {
		opts.Destination = cfg.Destination
	}
	if cfg.MaxConcurrency != nil {
		opts.MaxConcurrency = *cfg.MaxConcurrency
	}

	if cfg.IncludeContainers != nil {
		opts.IncludeContainers = *cfg.IncludeContainers
	}
	if cfg.ContainerPattern != "" {
		opts.ContainerPattern = cfg.ContainerPattern
	}
	if cfg.PriorityContainers != nil {
		opts.PriorityContainers = cfg.PriorityContainers
	}
	if cfg.ExcludeContainers != nil {
		opts.ExcludeContainers = cfg.ExcludeContainers
	}

	if cfg.IncludeTables != nil {
		opts.IncludeTables = *cfg.IncludeTables
	}
	if cfg.TablePattern != "" {
		opts.TablePattern = cfg.TablePattern
	}
	if cfg.PriorityTables != nil {
		opts.PriorityTables = cfg.PriorityTables
	}
	if cfg.ExcludeTables != nil {
		opts.ExcludeTables = cfg.ExcludeTables
	}

	if cfg.TableBackupContainer != "" {
		opts.TableBackupContainer = cfg.TableBackupContainer
	}
	if cfg.BlobCopyConcurrency != nil {
		opts.BlobCopyConcurrency = *cfg.BlobCopyConcurrency
	}
	if cfg.SASValidity != nil {
		opts.SASValidity = *cfg.SASValidity
	}

	if l := cfg.Limits; l != nil {
		if l.EntitiesPerBatch != nil {
			opts.Limits.MaxEntitiesPerBatch = *l.EntitiesPerBatch
		}
		if l.BatchSize != nil {
			opts.Limits.MaxBatchSize = *l.BatchSize
		}
		if l.BlockSize != nil {
			opts.Limits.MaxBlockSize = *l.BlockSize
		}
		if l.BlocksPerObject != nil {
			opts.Limits.MaxBlocksPerObject = *l.BlocksPerObject
		}
	}
}

// cook merges, in increasing precedence: defaults, environment, config file, explicit flags.
// changed reports whether a flag was given on the command line.
func (raw rawBackupCmdArgs) cook(changed func(name string) bool, lookupEnv func(string) string) (backup.BackupOptions, error) {
	opts := backup.DefaultBackupOptions()

	concurrency, err := ste.GetMaxConcurrency(lookupEnv)
	if err != nil {
		return opts, err
	}
	opts.MaxConcurrency = concurrency.Value

	if raw.configPath != "" {
		cfg, err := loadBackupConfigFile(raw.configPath)
		if err != nil {
			return opts, err
		}
		cfg.apply(&opts)
	}

	if changed(sourceFlag) {
		opts.Source = raw.source
	}
	if changed(destinationFlag) {
		opts.Destination = raw.destination
	}
	if changed(maxConcurrencyFlag) {
		opts.MaxConcurrency = raw.maxConcurrency
	}
	if changed(includeContainersFlag) {
		opts.IncludeContainers = raw.includeContainers
	}
	if changed(containerPatternFlag) {
		opts.ContainerPattern = raw.containerPattern
	}
	if changed(priorityContainersFlag) {
		opts.PriorityContainers = raw.priorityContainers
	}
	if changed(excludeContainersFlag) {
		opts.ExcludeContainers = raw.excludeContainers
	}
	if changed(includeTablesFlag) {
		opts.IncludeTables = raw.includeTables
	}
	if changed(tablePatternFlag) {
		opts.TablePattern = raw.tablePattern
	}
	if changed(priorityTablesFlag) {
		opts.PriorityTables = raw.priorityTables
	}
	if changed(excludeTablesFlag) {
		opts.ExcludeTables = raw.excludeTables
	}
	if changed(tableBackupContainerFlag) {
		opts.TableBackupContainer = raw.tableBackupContainer
	}
	if changed(blobCopyConcurrencyFlag) {
		opts.BlobCopyConcurrency = raw.blobCopyConcurrency
	}
	if changed(sasValidityFlag) {
		opts.SASValidity = raw.sasValidity
	}

	if opts.Source == "" {
		opts.Source = lookupEnv(common.EEnvironmentVariable.SourceConnectionString().Name)
	}
	if opts.Destination == "" {
		opts.Destination = lookupEnv(common.EEnvironmentVariable.DestinationConnectionString().Name)
	}

	return opts, opts.Validate()
}

// runBackup opens the job log and backs up the account. It returns the process exit code.
func runBackup(ctx context.Context, opts backup.BackupOptions) (common.ExitCode, error) {
	folder, err := logFolder()
	if err != nil {
		return common.EExitCode.Error(), err
	}

	logger := common.NewJobLogger(storageSyncCurrentJobID, storageSyncLogLevel, folder, "")
	logger.OpenLog()
	common.CurrentJobLogger = logger

	glcm.Info(fmt.Sprintf("Job %s has started", storageSyncCurrentJobID))
	if storageSyncLogLevel != common.LogNone {
		glcm.Info("Log file is located at: " + path.Join(folder, storageSyncCurrentJobID.String()+".log"))
	}

	client, err := backup.NewClient(opts.Source, opts.Destination, logger)
	if err != nil {
		return common.EExitCode.Error(), err
	}

	summary, err := client.Backup(ctx, opts)
	if err != nil {
		return common.EExitCode.Error(), err
	}
	return summary.ExitCode(), nil
}

func init() {
	raw := rawBackupCmdArgs{}

	// backupCmd represents the backup command
	backupCmd := &cobra.Command{
		Use:     "backup",
		Aliases: []string{"bk"},
		Short:   backupCmdShortDescription,
		Long:    backupCmdLongDescription,
		Example: backupCmdExample,
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			opts, err := raw.cook(cmd.Flags().Changed, os.Getenv)
			if err != nil {
				glcm.Error("failed to parse user input due to error: " + err.Error())
				return
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			code, err := runBackup(ctx, opts)
			stop()
			if err != nil {
				glcm.Error("backup failed: " + err.Error())
				return
			}
			glcm.Exit(code)
		},
	}
	rootCmd.AddCommand(backupCmd)

	raw.bindFlags(backupCmd.Flags())
}
