package driven

// ConfigStore is the notion-nlp settings file. Keys are dotted paths
// such as "notion.page_size" or "tagging.rules_file".
//
// Typed getters return the zero value when a key is missing or holds a
// different type; GetFloat also accepts integers.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set updates a key and writes the file.
	Set(key string, value any) error

	Save() error
	Load() error
	Path() string
}
