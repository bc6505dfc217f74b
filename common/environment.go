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

package common

import "os"

type EnvironmentVariable struct {
	Name         string
	DefaultValue string
	Description  string
	Hidden       bool
}

// This array needs to be updated when a new public environment variable is added
var VisibleEnvironmentVariables = []EnvironmentVariable{
	EEnvironmentVariable.ConcurrencyValue(),
	EEnvironmentVariable.LogLocation(),
	EEnvironmentVariable.SourceConnectionString(),
	EEnvironmentVariable.DestinationConnectionString(),
}

var EEnvironmentVariable = EnvironmentVariable{}

func (EnvironmentVariable) ConcurrencyValue() EnvironmentVariable {
	return EnvironmentVariable{
		Name:         "STORAGESYNC_CONCURRENCY_VALUE",
		DefaultValue: "5",
		Description:  "Overrides how many containers and tables are backed up at the same time.",
	}
}

func (EnvironmentVariable) LogLocation() EnvironmentVariable {
	return EnvironmentVariable{
		Name:        "STORAGESYNC_LOG_LOCATION",
		Description: "Overrides where the log files are stored, to avoid filling up a disk.",
	}
}

func (EnvironmentVariable) SourceConnectionString() EnvironmentVariable {
	return EnvironmentVariable{
		Name:        "STORAGESYNC_SOURCE_CONNECTION_STRING",
		Description: "Connection string of the account to back up, used when --source is not given.",
		Hidden:      true,
	}
}

func (EnvironmentVariable) DestinationConnectionString() EnvironmentVariable {
	return EnvironmentVariable{
		Name:        "STORAGESYNC_DESTINATION_CONNECTION_STRING",
		Description: "Connection string of the backup account, used when --destination is not given.",
		Hidden:      true,
	}
}

func (EnvironmentVariable) UserAgentPrefix() EnvironmentVariable {
	return EnvironmentVariable{
		Name:        "STORAGESYNC_USER_AGENT_PREFIX",
		Description: "Add a prefix to the default user agent. A space is added between the prefix and the default user agent.",
	}
}

// GetEnvironmentVariable returns the value of env, or its default when unset.
func GetEnvironmentVariable(env EnvironmentVariable) string {
	value := os.Getenv(env.Name)
	if value == "" {
		return env.DefaultValue
	}
	return value
}
