package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cron       CronConfig       `mapstructure:"cron"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Reconciler ReconcilerConfig `mapstructure:"reconciler"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type RedisConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Addr          string `mapstructure:"addr"`
	ChannelPrefix string `mapstructure:"channel_prefix"`
}

type CronConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Reconcile string `mapstructure:"reconcile"`
}

// PastAction controls what Schedule does with a resolved execute_at
// that is not in the future. "persist" mirrors the original system:
// the row is written and a validation error returned to the caller,
// leaving the next sweep to fire it immediately. "reject" refuses the
// write outright.
const (
	PastActionPersist = "persist"
	PastActionReject  = "reject"
)

type SchedulerConfig struct {
	PastAction string `mapstructure:"past_action"`
}

type ReconcilerConfig struct {
	BatchSize  int           `mapstructure:"batch_size"`
	ClaimLease time.Duration `mapstructure:"claim_lease"`

	// TrackLastPost re-derives a due based-on-last-post deadline from
	// the topic's latest reply before firing; a newer reply pushes the
	// row forward instead of closing the topic.
	TrackLastPost bool `mapstructure:"track_last_post"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FORUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.channel_prefix", "forum")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.reconcile", "@every 1m")
	v.SetDefault("scheduler.past_action", PastActionPersist)
	v.SetDefault("reconciler.batch_size", 100)
	v.SetDefault("reconciler.claim_lease", "5m")
	v.SetDefault("reconciler.track_last_post", true)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
