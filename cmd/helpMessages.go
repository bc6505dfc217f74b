package cmd

import "github.com/rafaelcruz-net/AzureStorageSync/common"

// ===================================== ROOT COMMAND ===================================== //
const rootCmdShortDescription = "StorageSync backs up the blob containers and tables of an Azure Storage account."

const rootCmdLongDescription = "StorageSync " + common.Version +
	`
  The general format of the commands is: storagesync [command] --[flag-name]=[flag-value].
`

// ===================================== BACKUP COMMAND ===================================== //
const backupCmdShortDescription = "Backs up every container and table of a storage account into another account"

const backupCmdLongDescription = `
Copies each blob container of the source account into a container of the same name in the destination
account, using server-side copies. Each table is exported as JSON objects under
<table-backup-container>/<table>/<run timestamp>/, split into batches of at most 100 entities that share a
partition key.

At most --max-concurrency containers and tables are backed up at the same time. Names listed in
--priority-containers and --priority-tables are started first. A failing container or table does not stop
the others; the command exits with a non-zero code if any of them failed.

Connection strings can be passed with --source and --destination, set in the file given to --config, or
read from the environment variables ` + "STORAGESYNC_SOURCE_CONNECTION_STRING and STORAGESYNC_DESTINATION_CONNECTION_STRING" + `.
Flags given on the command line override the config file.`

const backupCmdExample = `
Back up everything, starting with the "orders" container and the "Audit" table:

  - storagesync backup --source "<connection string>" --destination "<connection string>" --priority-containers orders --priority-tables Audit

Back up only the tables, using settings from a file:

  - storagesync backup --config backup.yaml --include-containers=false

A config file uses the flag names as keys:

  source: <connection string>
  destination: <connection string>
  max-concurrency: 8
  exclude-containers: [$logs, vsdeploy, scratch]
  table-pattern: "audit*"
  sas-validity: 72h
`

// ===================================== ENV COMMAND ===================================== //
const envCmdShortDescription = "Shows the environment variables that can configure StorageSync's behavior"

const envCmdLongDescription = `Shows the environment variables that can configure StorageSync's behavior.
Connection strings are redacted unless --show-sensitive is given.`
