package config

const (
	defaultQuotaKB uint = 2000

	defaultModelProvider = "ollama"
	defaultModelTarget   = "http://localhost:11434"
	defaultModelName     = "llama3.2"

	defaultAPIListen = ":8085"

	defaultEventsProvider = "nop"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Store: StoreConfig{
			QuotaKB: defaultQuotaKB,
		},
		Model: ModelConfig{
			Provider: defaultModelProvider,
			Target:   defaultModelTarget,
			Name:     defaultModelName,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
		},
	}
}
