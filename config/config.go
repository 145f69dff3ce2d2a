// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validEnvs         = []string{"development", "production"}
	validAuthModes    = []string{"hs256", "oidc"}
	validDBDrivers    = []string{"sqlite", "postgres"}
	validStorageTypes = []string{"s3", "r2", "minio", "memory"}
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Flags, if given, take precedence over the config file
// and the environment. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup(flags *pflag.FlagSet) error {
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return fmt.Errorf("failed to bind flags, %w", err)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	bindEnvs()
	setDefaults()

	if err := v.ReadInConfig(); err != nil {
		var notFound v.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if err := validate(); err != nil {
		return err
	}

	// Stored in MB, used in bytes
	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	return nil
}

func bindEnvs() {
	v.BindEnv("app.log_level", "APP_LOG_LEVEL")
	v.BindEnv("app.env", "APP_ENV")

	v.BindEnv("host.port", "HOST_PORT")
	v.BindEnv("host.cors_origins", "HOST_CORS_ORIGINS")

	v.BindEnv("auth.mode", "AUTH_MODE")
	v.BindEnv("auth.jwt_secret", "AUTH_JWT_SECRET")
	v.BindEnv("auth.oidc_issuer", "AUTH_OIDC_ISSUER")
	v.BindEnv("auth.oidc_audience", "AUTH_OIDC_AUDIENCE")

	v.BindEnv("db.driver", "DB_DRIVER")
	v.BindEnv("db.dsn", "DB_DSN")

	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.primary_bucket", "STORAGE_PRIMARY_BUCKET")
	v.BindEnv("storage.fallback_bucket", "STORAGE_FALLBACK_BUCKET")
	v.BindEnv("storage.fallback_prefix", "STORAGE_FALLBACK_PREFIX")
	v.BindEnv("storage.upload_url_ttl", "STORAGE_UPLOAD_URL_TTL")
	v.BindEnv("storage.read_url_ttl", "STORAGE_READ_URL_TTL")
	v.BindEnv("storage.placeholder", "STORAGE_PLACEHOLDER")
	v.BindEnv("storage.memory.base_url", "STORAGE_MEMORY_BASE_URL")

	v.BindEnv("s3.region", "S3_REGION")
	v.BindEnv("s3.endpoint", "S3_ENDPOINT")
	v.BindEnv("s3.access_key_id", "S3_ACCESS_KEY_ID")
	v.BindEnv("s3.secret_access_key", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("s3.force_path_style", "S3_FORCE_PATH_STYLE")

	v.BindEnv("cloudflare.account_id", "CLOUDFLARE_ACCOUNT_ID")

	v.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	v.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("minio.use_ssl", "MINIO_USE_SSL")

	v.BindEnv("upload.max_size", "UPLOAD_MAX_SIZE")
	v.BindEnv("upload.max_name_length", "UPLOAD_MAX_NAME_LENGTH")

	v.BindEnv("security.rate_limit", "SECURITY_RATE_LIMIT")

	v.BindEnv("cleanup.enabled", "CLEANUP_ENABLED")
	v.BindEnv("cleanup.interval", "CLEANUP_INTERVAL")
	v.BindEnv("cleanup.grace", "CLEANUP_GRACE")

	v.BindEnv("metrics.enabled", "METRICS_ENABLED")

	v.BindEnv("thumbnail.ffmpeg", "THUMBNAIL_FFMPEG")

	v.BindEnv("debug.pprof", "DEBUG_PPROF")
}

func setDefaults() {
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.env", "production")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("auth.mode", "hs256")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	v.SetDefault("storage.type", "s3")
	v.SetDefault("storage.primary_bucket", "project-files")
	v.SetDefault("storage.fallback_bucket", "avatars")
	v.SetDefault("storage.fallback_prefix", "uploads")
	v.SetDefault("storage.upload_url_ttl", "2h")
	v.SetDefault("storage.read_url_ttl", "1h")
	v.SetDefault("storage.placeholder", "/placeholder.svg")
	v.SetDefault("storage.memory.base_url", "http://localhost:8080/api/blob")

	v.SetDefault("s3.region", "us-east-1")

	v.SetDefault("upload.max_size", 50)
	v.SetDefault("upload.max_name_length", 245)

	v.SetDefault("security.rate_limit", 20)

	v.SetDefault("cleanup.enabled", false)
	v.SetDefault("cleanup.interval", "24h")
	v.SetDefault("cleanup.grace", "24h")

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("thumbnail.ffmpeg", false)

	v.SetDefault("debug.pprof", false)
}

func validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if !slices.Contains(validEnvs, v.GetString("app.env")) {
		return errors.New("invalid app environment provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	switch v.GetString("auth.mode") {
	case "hs256":
		if v.GetString("auth.jwt_secret") == "" {
			return fmt.Errorf("auth.jwt_secret is missing. Set it as an environment variable or in the config.toml file, for example:\n\n%s", genSecret())
		}
	case "oidc":
		if v.GetString("auth.oidc_issuer") == "" {
			return errors.New("auth.oidc_issuer can't be empty")
		}
	default:
		return fmt.Errorf("invalid auth mode provided, expected one of %v", validAuthModes)
	}

	if !slices.Contains(validDBDrivers, v.GetString("db.driver")) {
		return fmt.Errorf("invalid database driver provided, expected one of %v", validDBDrivers)
	}

	if v.GetString("db.dsn") == "" {
		return errors.New("db.dsn can't be empty")
	}

	switch v.GetString("storage.type") {
	case "s3":
		if v.GetString("s3.region") == "" {
			return errors.New("s3.region can't be empty")
		}
	case "r2":
		if v.GetString("cloudflare.account_id") == "" {
			return errors.New("account id can't be empty")
		}
		if v.GetString("s3.access_key_id") == "" {
			return errors.New("account access id can't be empty")
		}
		if v.GetString("s3.secret_access_key") == "" {
			return errors.New("secret access key can't be empty")
		}
	case "minio":
		if v.GetString("minio.endpoint") == "" {
			return errors.New("minio.endpoint can't be empty")
		}
	case "memory":
		if v.GetString("storage.memory.base_url") == "" {
			return errors.New("storage.memory.base_url can't be empty")
		}
	default:
		return fmt.Errorf("invalid storage type provided, expected one of %v", validStorageTypes)
	}

	if v.GetString("storage.primary_bucket") == "" {
		return errors.New("storage.primary_bucket can't be empty")
	}

	for _, key := range []string{"storage.upload_url_ttl", "storage.read_url_ttl"} {
		if v.GetDuration(key) <= 0 {
			return fmt.Errorf("%s must be a positive duration", key)
		}
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if v.GetInt("upload.max_name_length") <= 0 {
		return errors.New("upload.max_name_length must be bigger than 0")
	}

	if v.GetInt("security.rate_limit") <= 0 {
		return errors.New("security.rate_limit must be bigger than 0")
	}

	if v.GetBool("cleanup.enabled") {
		if v.GetDuration("cleanup.interval") <= 0 {
			return errors.New("cleanup.interval must be a positive duration")
		}
		if v.GetDuration("cleanup.grace") < 0 {
			return errors.New("cleanup.grace can't be negative")
		}
	}

	return nil
}
