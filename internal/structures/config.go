package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

// WindowsConfig holds the daily window boundaries and interaction limits.
// The like boundary is offset from the visit boundary so the two quotas
// never reset in the same instant.
type WindowsConfig struct {
	ResetHour       int           `yaml:"resetHour" validate:"int|min:0|max:23"`
	LikeResetHour   int           `yaml:"likeResetHour" validate:"int|min:0|max:23"`
	LikeResetMinute int           `yaml:"likeResetMinute" validate:"int|min:0|max:59"`
	CooldownHours   int           `yaml:"cooldownHours" validate:"int|min:0"`
	DailyLikeLimit  int           `yaml:"dailyLikeLimit" validate:"int|min:1"`
	SweepInterval   time.Duration `yaml:"sweepInterval" validate:"required|min:1"`
}

type SyncConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Driver        string        `yaml:"driver" validate:"in:sqlite3"`
	DSN           string        `yaml:"dsn"`
	FlushInterval time.Duration `yaml:"flushInterval"`
	RetryBackoff  time.Duration `yaml:"retryBackoff"`
}

type PropagationConfig struct {
	XPDebounce          time.Duration `yaml:"xpDebounce"`
	AchievementDebounce time.Duration `yaml:"achievementDebounce"`
}

type CacheConfig struct {
	Enabled    bool `yaml:"enabled"`
	Size       int  `yaml:"size"`
	TTLSeconds int  `yaml:"ttlSeconds"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	Windows     WindowsConfig     `yaml:"windows"`
	WebServer   Server            `yaml:"webServer"`
	Persistence Persistence       `yaml:"persistence"`
	Logger      LoggerConfig      `yaml:"logger"`
	Sync        SyncConfig        `yaml:"sync"`
	Propagation PropagationConfig `yaml:"propagation"`
	Cache       CacheConfig       `yaml:"cache"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	RateLimit   RateLimitConfig   `yaml:"rateLimit"`
}
