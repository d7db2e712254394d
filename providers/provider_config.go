package providers

// DocGenBackendConfig holds the settings for the remote README generation
// backend. A single fixed endpoint is supported; the retry knobs bound how
// long one logical generate call may take.
type DocGenBackendConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxAttempts    int    `mapstructure:"max_attempts"`
	BackoffSeconds int    `mapstructure:"backoff_seconds"`
}
