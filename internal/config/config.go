package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var once sync.Once
var logger *zap.SugaredLogger
var loggerOnce sync.Once

// isTestRun returns true if the current process is a Go test binary.
func isTestRun() bool {
	return flag.Lookup("test.v") != nil || filepath.Ext(os.Args[0]) == ".test"
}

func initConfig() {
	once.Do(func() {
		root, err := getProjectRoot()
		if err != nil {
			GetLogger().Errorw("Error finding project root", "error", err)
		}
		viper.SetConfigType("yaml")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		viper.SetConfigName("config")
		viper.AddConfigPath(root)
		if err = viper.ReadInConfig(); err != nil {
			GetLogger().Errorw("Error reading config file", "error", err)
		}

		if isTestRun() {
			viper.SetConfigName("config_test")
			viper.AddConfigPath(root)
		}

		err = viper.MergeInConfig()
		if err != nil {
			GetLogger().Errorw("Error reading config file", "error", err)
		}
	})
}

func getProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// GetOpenWeatherApiUrl returns the base URL for the weather data endpoints (/data/2.5/...).
func GetOpenWeatherApiUrl() string {
	initConfig()
	return stringOr("openweathermap.api_url", "https://api.openweathermap.org")
}

// GetOpenWeatherGeoUrl returns the base URL for the geocoding endpoints (/geo/1.0/...).
func GetOpenWeatherGeoUrl() string {
	initConfig()
	return stringOr("openweathermap.geo_url", GetOpenWeatherApiUrl())
}

func GetOpenWeatherMapAPIKey() string {
	_ = godotenv.Load()
	return os.Getenv("OPENWEATHERMAP_API_KEY")
}

// GetGeocodeRetries is the number of retries after an HTTP 429 from geocoding.
func GetGeocodeRetries() int {
	initConfig()
	if !viper.IsSet("openweathermap.geocode_retries") {
		return 2
	}
	return viper.GetInt("openweathermap.geocode_retries")
}

// GetRetryBackoff is the base backoff used when a 429 carries no Retry-After header.
func GetRetryBackoff() time.Duration {
	initConfig()
	return durationOr("openweathermap.retry_backoff", 1200*time.Millisecond)
}

func GetNewsApiUrl() string {
	initConfig()
	return stringOr("news.api_url", "https://saurav.tech/NewsAPI/top-headlines/category/general/in.json")
}

func GetRedisAddr() string {
	initConfig()
	return viper.GetString("redis.addr")
}

// GetStoragePrefix returns the namespace prepended to every saved-cities key.
func GetStoragePrefix() string {
	initConfig()
	return viper.GetString("storage.prefix")
}

func GetServerPort() string {
	initConfig()
	serverPort := viper.GetString("server.port")
	return serverPort
}

// GetServerTimeoutDuration parses a server timeout, falling back to def when unset or invalid.
func GetServerTimeoutDuration(key string, def time.Duration) time.Duration {
	initConfig()
	return durationOr("server."+key, def)
}

func GetHourlyCount() int {
	initConfig()
	n := viper.GetInt("forecast.hourly_count")
	if n <= 0 {
		return 8
	}
	return n
}

// GetGeolocationTimeout bounds a lookup by coordinates. Defaults to 10s.
func GetGeolocationTimeout() time.Duration {
	initConfig()
	return durationOr("geolocation.timeout", 10*time.Second)
}

// GetSessionIdleTimeout is how long a session's request generation is kept
// without new searches. Defaults to 30m.
func GetSessionIdleTimeout() time.Duration {
	initConfig()
	return durationOr("generations.idle_timeout", 30*time.Minute)
}

func GetTestRedisMockPort() string {
	initConfig()
	return viper.GetString("test.redis_mock_port")
}

// ReloadConfigForTest resets the config singleton and reloads Viper config. Use only in tests.
func ReloadConfigForTest() {
	once = sync.Once{}
	initConfig()
}

func GetLogger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		logger = l.Sugar()
	})
	return logger
}

// GetRateLimiterCleanupTimeout returns the rate limiter cleanup timeout as a time.Duration.
// Defaults to 3m if not set or invalid.
func GetRateLimiterCleanupTimeout() time.Duration {
	initConfig()
	return durationOr("rate_limiter.cleanup_timeout", 3*time.Minute)
}

// GetGlobalRateLimiterConfig returns the rate (requests per minute) and burst for the global rate limiter.
func GetGlobalRateLimiterConfig() (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64("rate_limiter.global.rate")
	if rate == 0 {
		rate = 10
	}
	burst = viper.GetInt("rate_limiter.global.burst")
	if burst == 0 {
		burst = 10
	}
	return
}

// GetParamRateLimiterConfig returns the rate (requests per minute) and burst for the param rate limiter.
func GetParamRateLimiterConfig() (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64("rate_limiter.param.rate")
	if rate == 0 {
		rate = 2
	}
	burst = viper.GetInt("rate_limiter.param.burst")
	if burst == 0 {
		burst = 2
	}
	return
}

func stringOr(key, def string) string {
	if s := viper.GetString(key); s != "" {
		return s
	}
	return def
}

func durationOr(key string, def time.Duration) time.Duration {
	durStr := viper.GetString(key)
	if durStr == "" {
		return def
	}
	dur, err := time.ParseDuration(durStr)
	if err != nil {
		return def
	}
	return dur
}
