package configuration

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"job-board/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	Database Database `json:"database"`
	App      App      `json:"app"`
	Redis    Redis    `json:"redis"`
	Cache    Cache    `json:"cache"`
	LLM      LLM      `json:"llm"`
	Logger   Logger   `json:"logger"`
}

type App struct {
	Port           int      `json:"port"`
	SecretKey      string   `json:"secretKey"`
	TokenTTLHours  int      `json:"tokenTTLHours"`
	AllowedOrigins []string `json:"allowedOrigins"`
}

type Database struct {
	Psql Db `json:"psql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	SSLMode  string `json:"sslMode"`
}

// DSN renders a lib/pq connection string.
func (d Db) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type Redis struct {
	URL string `json:"url"`
}

// Cache timings are in milliseconds, TTLs in seconds.
type Cache struct {
	ConnectTimeoutMs int `json:"connectTimeoutMs"`
	OpTimeoutMs      int `json:"opTimeoutMs"`
	RetryBackoffMs   int `json:"retryBackoffMs"`
	PageTTLSeconds   int `json:"pageTTLSeconds"`
	CountTTLSeconds  int `json:"countTTLSeconds"`
	ItemTTLSeconds   int `json:"itemTTLSeconds"`
}

func (c Cache) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMs) * time.Millisecond
}
func (c Cache) OpTimeout() time.Duration { return time.Duration(c.OpTimeoutMs) * time.Millisecond }
func (c Cache) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMs) * time.Millisecond
}
func (c Cache) PageTTL() time.Duration  { return time.Duration(c.PageTTLSeconds) * time.Second }
func (c Cache) CountTTL() time.Duration { return time.Duration(c.CountTTLSeconds) * time.Second }
func (c Cache) ItemTTL() time.Duration  { return time.Duration(c.ItemTTLSeconds) * time.Second }

type Logger struct {
	Level string `json:"level"`
}

var C Config

func init() {
	Reload()
}

// Reload rebuilds C from the config file and the current environment. Call it
// after LoadEnvFromFile so values from env files apply.
func Reload() {
	C = Config{}
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initRedis(&C)
	initCache(&C)
	initLLM(&C)
	initLogger(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	db := &C.Database.Psql
	db.Name = getConfigValue(db.Name, "DB_NAME", "job_board")
	db.Host = getConfigValue(db.Host, "DB_HOST", "localhost")
	db.Port = getConfigValue(db.Port, "DB_PORT", "5432")
	db.User = getConfigValue(db.User, "DB_USER", "postgres")
	db.Password = getConfigValue(db.Password, "DB_PASSWORD", "")
	db.SSLMode = getConfigValue(db.SSLMode, "DB_SSLMODE", "disable")
	logger.GetLogger().WithFields(map[string]interface{}{
		"host": db.Host,
		"port": db.Port,
		"name": db.Name,
	}).Info("Database configuration")
}

func initApp(C *Config) {
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// APP_PORT -> PORT -> config -> 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	C.App.TokenTTLHours = envInt("TOKEN_TTL_HOURS", C.App.TokenTTLHours, 24)
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		C.App.AllowedOrigins = splitList(v)
	}
	if len(C.App.AllowedOrigins) == 0 {
		C.App.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set. Provide SECRET_KEY via environment.")
	}
}

var ErrMissingSecretKey = errors.New("app secret key is not set")

// Validate reports settings the server cannot run without.
func (a App) Validate() error {
	if strings.TrimSpace(a.SecretKey) == "" {
		return ErrMissingSecretKey
	}
	return nil
}

func initRedis(C *Config) {
	C.Redis.URL = getConfigValue(C.Redis.URL, "REDIS_URL", "redis://localhost:6379")
}

func initCache(C *Config) {
	C.Cache.ConnectTimeoutMs = envInt("CACHE_CONNECT_TIMEOUT_MS", C.Cache.ConnectTimeoutMs, 10000)
	C.Cache.OpTimeoutMs = envInt("CACHE_OP_TIMEOUT_MS", C.Cache.OpTimeoutMs, 1000)
	C.Cache.RetryBackoffMs = envInt("CACHE_RETRY_BACKOFF_MS", C.Cache.RetryBackoffMs, 5000)
	C.Cache.PageTTLSeconds = envInt("CACHE_PAGE_TTL_SECONDS", C.Cache.PageTTLSeconds, 300)
	C.Cache.CountTTLSeconds = envInt("CACHE_COUNT_TTL_SECONDS", C.Cache.CountTTLSeconds, 300)
	C.Cache.ItemTTLSeconds = envInt("CACHE_ITEM_TTL_SECONDS", C.Cache.ItemTTLSeconds, 600)
}

func initLogger(C *Config) {
	C.Logger.Level = getConfigValue(C.Logger.Level, "LOG_LEVEL", "debug")
	logger.SetLevel(C.Logger.Level)
}

// getConfigValue prefers the environment, then a non-placeholder config value, then def.
func getConfigValue(configValue, envKey, def string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return def
}

func envInt(envKey string, configValue, def int) int {
	if v := os.Getenv(envKey); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		logger.GetLogger().WithField("key", envKey).Warn("Ignoring non-positive or malformed integer")
	}
	if configValue > 0 {
		return configValue
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
