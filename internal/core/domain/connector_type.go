package domain

// ConnectorType describes a connector the CLI can create sources for.
type ConnectorType struct {
	ID          string
	Name        string
	Description string
	ConfigKeys  []ConfigKey

	// WebURLResolver may be nil.
	WebURLResolver WebURLResolver
}

// WebURLResolver maps a document URI to a URL a browser can open, or ""
// when it cannot.
type WebURLResolver func(uri string, metadata map[string]any) string

// ConfigKey is one entry of Source.Config.
type ConfigKey struct {
	Key         string
	Label       string
	Description string
	Default     string
	Required    bool
}

// MissingKeys lists the required keys that are absent or empty in config,
// in declaration order.
func (c *ConnectorType) MissingKeys(config map[string]string) []string {
	var missing []string
	for _, k := range c.ConfigKeys {
		if k.Required && config[k.Key] == "" {
			missing = append(missing, k.Key)
		}
	}
	return missing
}
