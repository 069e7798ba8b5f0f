package providers

import (
	"fmt"
	"github.com/spf13/viper"
	"path/filepath"
	"ratingd/internal/structures"
	"strings"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.SetDefault("webServer.host", "127.0.0.1")
	v.SetDefault("storage.eventsFile", "ratings.json")
	v.SetDefault("storage.rowLogFile", "ratings.csv")
	v.SetDefault("cache.ttl", "60s")

	v.BindEnv("logger.level", "RATINGD_LOG_LEVEL")
	v.BindEnv("storage.dataDir", "RATINGD_DATA_DIR")
	v.BindEnv("webServer.port", "RATINGD_PORT")
	v.BindEnv("cache.enabled", "RATINGD_CACHE_ENABLED")
	v.BindEnv("cache.size", "RATINGD_CACHE_SIZE")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "RatingDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
