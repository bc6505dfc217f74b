package backup

import (
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/rafaelcruz-net/AzureStorageSync/common"
)

// retry settings shared by every storage call
const (
	maxTries      = 20
	tryTimeout    = time.Minute * 15
	retryDelay    = time.Second * 4
	maxRetryDelay = time.Second * 60
)

func createClientOptions(logger common.ILogger) azcore.ClientOptions {
	return azcore.ClientOptions{
		Retry: policy.RetryOptions{
			MaxRetries:    maxTries,
			TryTimeout:    tryTimeout,
			RetryDelay:    retryDelay,
			MaxRetryDelay: maxRetryDelay,
		},
		Telemetry: policy.TelemetryOptions{
			ApplicationID: common.AddUserAgentPrefix(common.UserAgent),
		},
		Transport: common.GetGlobalHTTPClient(logger),
	}
}
