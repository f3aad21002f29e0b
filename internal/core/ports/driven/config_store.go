package driven

// ConfigStore provides access to persisted engine configuration. Keys use
// dot notation mirroring the TOML table layout ("store.site_id").
type ConfigStore interface {
	// Get retrieves a raw value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, or "" when missing or mistyped.
	GetString(key string) string

	// GetBool retrieves a boolean value, or false when missing or mistyped.
	GetBool(key string) bool

	// Set stores a value and persists immediately.
	Set(key string, value any) error

	// Path returns the backing file path, for diagnostics.
	Path() string
}
