package config

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level     string `yaml:"level"`      // debug, info, warn, error
	Format    string `yaml:"format"`     // json, console
	DebugMode bool   `yaml:"debug_mode"` // false silences every category
	// Categories switches single categories (boot, actions, host, kernel,
	// audit) off or on. Unlisted categories follow DebugMode.
	Categories map[string]bool `yaml:"categories"`
}

// IsCategoryEnabled reports whether category logs under this config.
// The CLI hands it to the logging package as its category filter.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	if on, listed := c.Categories[category]; listed {
		return on
	}
	return true
}
