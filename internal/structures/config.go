package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	// Port 0 defers to the port stored in the settings document.
	Port int `yaml:"port" validate:"uint|max:65535"`
}

type StorageConfig struct {
	DataDir      string `yaml:"dataDir" validate:"required|unixPath"`
	ArchiveDir   string `yaml:"archiveDir" validate:"required|unixPath"`
	EventsFile   string `yaml:"eventsFile" validate:"required"`
	RowLogFile   string `yaml:"rowLogFile" validate:"required"`
	SettingsFile string `yaml:"settingsFile" validate:"required|unixPath"`
}

type ArchiveConfig struct {
	Compress bool `yaml:"compress"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server        `yaml:"webServer"`
	Storage   StorageConfig `yaml:"storage"`
	Archive   ArchiveConfig `yaml:"archive"`
	Logger    LoggerConfig  `yaml:"logger"`
	Cache     CacheConfig   `yaml:"cache"`
	Metrics   MetricsConfig `yaml:"metrics"`
}
