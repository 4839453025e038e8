package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"barbuddy/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.SetDefault("windows.resetHour", 5)
	viper.SetDefault("windows.likeResetHour", 4)
	viper.SetDefault("windows.likeResetMinute", 59)
	viper.SetDefault("windows.cooldownHours", 2)
	viper.SetDefault("windows.dailyLikeLimit", 3)
	viper.SetDefault("windows.sweepInterval", "60s")
	viper.SetDefault("sync.flushInterval", "30s")
	viper.SetDefault("sync.retryBackoff", "30s")
	viper.SetDefault("propagation.xpDebounce", "300ms")
	viper.SetDefault("propagation.achievementDebounce", "500ms")
	viper.SetDefault("cache.ttlSeconds", 2)

	viper.BindEnv("logger.level", "BB_LOG_LEVEL")
	viper.BindEnv("persistence.saveInterval", "BB_SAVE_INTERVAL")
	viper.BindEnv("sync.dsn", "BB_SYNC_DSN")
	viper.BindEnv("sync.enabled", "BB_SYNC_ENABLED")
	viper.BindEnv("cache.enabled", "BB_CACHE_ENABLED")
	viper.BindEnv("cache.size", "BB_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "BarBuddyEngine"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
