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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"

	"github.com/rafaelcruz-net/AzureStorageSync/backup"
	"github.com/rafaelcruz-net/AzureStorageSync/common"
	"github.com/rafaelcruz-net/AzureStorageSync/ste"
)

const (
	testSource      = "DefaultEndpointsProtocol=https;AccountName=src;AccountKey=a2V5;EndpointSuffix=core.windows.net"
	testDestination = "DefaultEndpointsProtocol=https;AccountName=dst;AccountKey=a2V5;EndpointSuffix=core.windows.net"
)

func envOf(vars map[string]string) func(string) string {
	return func(name string) string { return vars[name] }
}

// cookArgs parses args the way the backup command does and cooks them.
func cookArgs(t *testing.T, env map[string]string, args ...string) (backup.BackupOptions, error) {
	raw := rawBackupCmdArgs{}
	flags := pflag.NewFlagSet("backup", pflag.ContinueOnError)
	raw.bindFlags(flags)
	if err := flags.Parse(args); err != nil {
		t.Fatalf("cannot parse %v: %v", args, err)
	}
	return raw.cook(flags.Changed, envOf(env))
}

func writeConfig(t *testing.T, content string) string {
	filePath := filepath.Join(t.TempDir(), "backup.yaml")
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return filePath
}

func TestCookDefaults(t *testing.T) {
	a := assert.New(t)

	opts, err := cookArgs(t, nil, "--source", testSource, "--destination", testDestination)
	a.NoError(err)

	expected := backup.DefaultBackupOptions()
	expected.Source = testSource
	expected.Destination = testDestination
	a.Equal(expected, opts)
	a.Equal([]string{"$logs", "vsdeploy"}, opts.ExcludeContainers)
	a.Equal(14*24*time.Hour, opts.SASValidity)
}

func TestCookFlags(t *testing.T) {
	a := assert.New(t)

	opts, err := cookArgs(t, nil,
		"--source", testSource,
		"--destination", testDestination,
		"--max-concurrency", "2",
		"--priority-containers", "orders,images",
		"--exclude-containers", "scratch",
		"--container-pattern", "prod-*",
		"--priority-tables", "Audit",
		"--exclude-tables", "Sessions,Cache",
		"--include-tables=false",
		"--table-backup-container", "tables-2024",
		"--blob-copy-concurrency", "4",
		"--sas-validity", "72h",
	)
	a.NoError(err)
	a.Equal(2, opts.MaxConcurrency)
	a.Equal([]string{"orders", "images"}, opts.PriorityContainers)
	a.Equal([]string{"scratch"}, opts.ExcludeContainers)
	a.Equal("prod-*", opts.ContainerPattern)
	a.Equal([]string{"Audit"}, opts.PriorityTables)
	a.Equal([]string{"Sessions", "Cache"}, opts.ExcludeTables)
	a.True(opts.IncludeContainers)
	a.False(opts.IncludeTables)
	a.Equal("tables-2024", opts.TableBackupContainer)
	a.Equal(4, opts.BlobCopyConcurrency)
	a.Equal(72*time.Hour, opts.SASValidity)
}

func TestCookConnectionStringsFromEnvironment(t *testing.T) {
	a := assert.New(t)

	env := map[string]string{
		common.EEnvironmentVariable.SourceConnectionString().Name:      testSource,
		common.EEnvironmentVariable.DestinationConnectionString().Name: testDestination,
	}
	opts, err := cookArgs(t, env)
	a.NoError(err)
	a.Equal(testSource, opts.Source)
	a.Equal(testDestination, opts.Destination)

	// an explicit flag wins over the environment
	opts, err = cookArgs(t, env, "--source", "AccountName=other")
	a.NoError(err)
	a.Equal("AccountName=other", opts.Source)
	a.Equal(testDestination, opts.Destination)
}

func TestCookMissingConnectionString(t *testing.T) {
	a := assert.New(t)

	_, err := cookArgs(t, nil, "--source", testSource)
	a.Error(err)
	a.Contains(err.Error(), "destination")
}

func TestCookConcurrencyFromEnvironment(t *testing.T) {
	a := assert.New(t)
	envName := common.EEnvironmentVariable.ConcurrencyValue().Name
	args := []string{"--source", testSource, "--destination", testDestination}

	opts, err := cookArgs(t, map[string]string{envName: "9"}, args...)
	a.NoError(err)
	a.Equal(9, opts.MaxConcurrency)

	// the flag wins over the environment
	opts, err = cookArgs(t, map[string]string{envName: "9"}, append(args, "--max-concurrency", "3")...)
	a.NoError(err)
	a.Equal(3, opts.MaxConcurrency)

	_, err = cookArgs(t, map[string]string{envName: "many"}, args...)
	a.Error(err)

	_, err = cookArgs(t, map[string]string{envName: "0"}, args...)
	a.ErrorIs(err, ste.ErrInvalidConcurrency)
}

func TestCookInvalidConcurrencyFlag(t *testing.T) {
	a := assert.New(t)

	_, err := cookArgs(t, nil, "--source", testSource, "--destination", testDestination, "--max-concurrency", "0")
	a.ErrorIs(err, ste.ErrInvalidConcurrency)
}

func TestCookConfigFile(t *testing.T) {
	a := assert.New(t)

	configPath := writeConfig(t, `
source: `+testSource+`
destination: `+testDestination+`
max-concurrency: 8
include-containers: false
priority-tables: [Audit, Orders]
exclude-tables: [Sessions]
table-pattern: "a*"
table-backup-container: nightly-tables
sas-validity: 2h
limits:
  entities-per-batch: 50
  blocks-per-object: 10
`)

	opts, err := cookArgs(t, nil, "--config", configPath)
	a.NoError(err)
	a.Equal(testSource, opts.Source)
	a.Equal(testDestination, opts.Destination)
	a.Equal(8, opts.MaxConcurrency)
	a.False(opts.IncludeContainers)
	a.True(opts.IncludeTables)
	a.Equal([]string{"Audit", "Orders"}, opts.PriorityTables)
	a.Equal([]string{"Sessions"}, opts.ExcludeTables)
	a.Equal("a*", opts.TablePattern)
	a.Equal("nightly-tables", opts.TableBackupContainer)
	a.Equal(2*time.Hour, opts.SASValidity)
	a.Equal(50, opts.Limits.MaxEntitiesPerBatch)
	a.Equal(10, opts.Limits.MaxBlocksPerObject)
	// untouched keys keep their defaults
	a.Equal(backup.DefaultBackupOptions().Limits.MaxBlockSize, opts.Limits.MaxBlockSize)
	a.Equal(backup.DefaultExcludeContainers, opts.ExcludeContainers)
}

func TestCookFlagsOverrideConfigFile(t *testing.T) {
	a := assert.New(t)

	configPath := writeConfig(t, `
source: `+testSource+`
destination: `+testDestination+`
max-concurrency: 8
exclude-containers: [a, b]
`)
	env := map[string]string{common.EEnvironmentVariable.ConcurrencyValue().Name: "6"}

	opts, err := cookArgs(t, env, "--config", configPath, "--max-concurrency", "1", "--exclude-containers", "c")
	a.NoError(err)
	a.Equal(1, opts.MaxConcurrency)
	a.Equal([]string{"c"}, opts.ExcludeContainers)

	// the file wins over the environment
	opts, err = cookArgs(t, env, "--config", configPath)
	a.NoError(err)
	a.Equal(8, opts.MaxConcurrency)
}

func TestCookConfigFileErrors(t *testing.T) {
	a := assert.New(t)

	_, err := cookArgs(t, nil, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	a.Error(err)
	a.Contains(err.Error(), "cannot open config file")

	_, err = cookArgs(t, nil, "--config", writeConfig(t, "max-concurency: 3\n"))
	a.Error(err)
	a.Contains(err.Error(), "cannot parse config file")

	_, err = cookArgs(t, nil, "--config", writeConfig(t, "sas-validity: soon\n"))
	a.Error(err)
}

func TestCookEmptyConfigFile(t *testing.T) {
	a := assert.New(t)

	opts, err := cookArgs(t, nil, "--config", writeConfig(t, ""), "--source", testSource, "--destination", testDestination)
	a.NoError(err)
	a.Equal(backup.DefaultMaxConcurrency, opts.MaxConcurrency)
}

func TestDescribeEnvironmentRedactsConnectionStrings(t *testing.T) {
	a := assert.New(t)
	name := common.EEnvironmentVariable.SourceConnectionString().Name
	t.Setenv(name, testSource)

	joined := strings.Join(describeEnvironment(false), "\n")
	a.Contains(joined, "Name: "+name+"\nCurrent Value: REDACTED")
	a.NotContains(joined, testSource)

	joined = strings.Join(describeEnvironment(true), "\n")
	a.Contains(joined, testSource)
}

func TestLogFolder(t *testing.T) {
	a := assert.New(t)
	defer func() { logLocationRaw = "" }()

	logLocationRaw = filepath.Join(t.TempDir(), "custom", "logs")
	folder, err := logFolder()
	a.NoError(err)
	a.Equal(logLocationRaw, folder)
	a.DirExists(folder)

	logLocationRaw = ""
	storageSyncAppPathFolder = t.TempDir()
	t.Setenv(common.EEnvironmentVariable.LogLocation().Name, "")
	folder, err = logFolder()
	a.NoError(err)
	a.Equal(filepath.Join(storageSyncAppPathFolder, "logs"), folder)
	a.DirExists(folder)
}
