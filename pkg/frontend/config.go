package frontend

// Config represents frontend configuration
type Config struct {
	Enabled bool `yaml:"enabled" default:"true"`
}
