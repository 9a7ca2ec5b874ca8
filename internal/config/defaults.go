package config

// Environment variables read by Load.
const (
	EnvHome     = "PANTRY_HOME"
	EnvAPIKey   = "SPOONACULAR_API_KEY"
	EnvBaseURL  = "PANTRY_BASE_URL"
	EnvOffline  = "PANTRY_OFFLINE"
	EnvLogLevel = "PANTRY_LOG_LEVEL"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseDir:  DefaultBaseDir(),
		LogLevel: "info",

		API: APIConfig{
			BaseURL:        "https://api.spoonacular.com",
			RateLimit:      60,
			TimeoutSeconds: 15,
		},

		Paging: PagingConfig{
			PageSize:        20,
			InitialLoadSize: 40,
		},

		Cache: CacheConfig{
			RetentionHours: 24,
		},

		Network: NetworkConfig{
			ProbeAddress:         "api.spoonacular.com:443",
			ProbeTimeoutSeconds:  3,
			WatchIntervalSeconds: 5,
		},
	}
}
