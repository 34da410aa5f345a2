package pipeline

// Config is the run configuration published by the measurement server. The
// payload structure is not validated here; consumers fail on use, not on
// receipt.
type Config map[string]any

// ConfigStore holds the most recent run configuration. Each update replaces
// the previous configuration wholesale; there are no merge semantics.
type ConfigStore struct {
	cell *Cell[Config]
}

// NewConfigStore returns a store holding an empty configuration.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{cell: NewCell(Config{})}
}

// Replace swaps in a new configuration.
func (s *ConfigStore) Replace(c Config) {
	s.cell.Store(c)
}

// Load returns the last received configuration, or the empty one before any
// update has arrived.
func (s *ConfigStore) Load() Config {
	return s.cell.Load()
}
