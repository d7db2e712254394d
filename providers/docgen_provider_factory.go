package providers

import (
	"time"

	"github.com/meysamhadeli/docai/providers/contracts"
	"github.com/meysamhadeli/docai/providers/readme_agent"
)

// DocGenProviderFactory builds the generation client from configuration.
// A single backend flavor exists today; the factory keeps the construction
// in one place for when that changes.
func DocGenProviderFactory(config *DocGenBackendConfig) contracts.IDocGenProvider {
	return readme_agent.NewReadmeAgentProvider(&readme_agent.ReadmeAgentConfig{
		BaseURL:     config.BaseURL,
		Timeout:     time.Duration(config.TimeoutSeconds) * time.Second,
		MaxAttempts: config.MaxAttempts,
		Backoff:     time.Duration(config.BackoffSeconds) * time.Second,
	})
}
