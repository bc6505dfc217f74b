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
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rafaelcruz-net/AzureStorageSync/common"
)

var storageSyncAppPathFolder string
var logLevelRaw string
var logLocationRaw string
var storageSyncLogLevel = common.LogInfo
var storageSyncCurrentJobID common.JobID

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version:       common.Version, // will enable the user to see the version info in the standard posix way: --version
	Use:           "storagesync",
	Short:         rootCmdShortDescription,
	Long:          rootCmdLongDescription,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := storageSyncLogLevel.Parse(logLevelRaw); err != nil {
			return errors.Wrapf(err, "invalid log level %q", logLevelRaw)
		}
		return nil
	},
}

// hold a pointer to the global lifecycle controller so that commands could output messages and exit properly
var glcm = common.GetLifecycleMgr()

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(appPathFolder string) {
	storageSyncAppPathFolder = appPathFolder
	storageSyncCurrentJobID = common.NewJobID()

	if err := rootCmd.Execute(); err != nil {
		glcm.Error(err.Error())
	} else {
		// only commands that don't explicitly exit reach this point (e.g. help commands)
		glcm.Exit(common.EExitCode.Success())
	}
}

// logFolder returns the folder receiving the job log. --log-location wins over STORAGESYNC_LOG_LOCATION.
func logFolder() (string, error) {
	if logLocationRaw == "" {
		return common.InitializeFolders(storageSyncAppPathFolder)
	}
	if err := os.MkdirAll(logLocationRaw, os.ModeDir|os.ModePerm); err != nil && !os.IsExist(err) {
		return "", errors.Wrapf(err, "problem making log directory %s", logLocationRaw)
	}
	common.LogPathFolder = logLocationRaw
	return logLocationRaw, nil
}

func init() {
	// replace the word "global" to avoid confusion
	rootCmd.SetUsageTemplate(strings.Replace((&cobra.Command{}).UsageTemplate(), "Global Flags", "Flags Applying to All Commands", -1))

	rootCmd.PersistentFlags().StringVar(&logLevelRaw, "log-level", "INFO", "Define the log verbosity for the log file, available levels: DEBUG, INFO, WARN, ERROR, NONE.")
	rootCmd.PersistentFlags().StringVar(&logLocationRaw, "log-location", "", "Folder receiving the log files. Defaults to "+common.EEnvironmentVariable.LogLocation().Name+", then to the logs folder of the application data.")
}
