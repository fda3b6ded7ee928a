// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	_ = pflag.String("mint-token", "", "Prints a development bearer token for the given uid and exits (hmac provider only)")
	_ = pflag.String("mint-role", "creator", "Role claim of the token printed by --mint-token")

	validLogLevels       = []string{"debug", "info", "warn", "error", "fatal"}
	validDatabaseDrivers = []string{"sqlite", "postgres", "mongo"}
	validStorageTypes    = []string{"s3", "gcs", "azure", "local"}
	validAuthProviders   = []string{"hmac", "jwks", "firebase"}
)

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	// A missing .env is fine, the environment may already be populated
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env file, %w", err)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	BindEnvs()
	SetDefaults()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if err := Validate(); err != nil {
		return err
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	return nil
}

// BindEnvs binds the environment variable names that don't follow the
// key-with-underscores convention
func BindEnvs() {
	v.BindEnv("host.port", "PORT", "HOST_PORT")
	v.BindEnv("database.dsn", "DATABASE_DSN", "COSMOS_CONN")
	v.BindEnv("storage.azure.connection_string", "STORAGE_AZURE_CONNECTION_STRING", "BLOB_CONN")
	v.BindEnv("storage.gcs.credentials_file", "STORAGE_GCS_CREDENTIALS_FILE", "GOOGLE_APPLICATION_CREDENTIALS")

	v.BindEnv("firebase.project_id", "FIREBASE_PROJECT_ID")
	v.BindEnv("firebase.client_email", "FIREBASE_CLIENT_EMAIL")
	v.BindEnv("firebase.private_key", "FIREBASE_PRIVATE_KEY")
}

func SetDefaults() {
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 5000)
	v.SetDefault("host.cors", "*")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "database.db")
	v.SetDefault("database.name", "videoshare")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.container", "videos")
	v.SetDefault("storage.local.path", "uploads-store")
	v.SetDefault("storage.local.base_url", "http://localhost:5000/files")

	v.SetDefault("auth.provider", "hmac")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("ffmpeg.path", "ffmpeg")
	v.SetDefault("ffmpeg.ffprobe_path", "ffprobe")
	v.SetDefault("ffmpeg.codec", "libx264")
	v.SetDefault("ffmpeg.max_jobs", 2)
	v.SetDefault("ffmpeg.timeout", 10*time.Minute)

	v.SetDefault("upload.max_size", 500)
	v.SetDefault("upload.scratch_dir", "uploads")
	v.SetDefault("upload.converted_dir", "converted")

	v.SetDefault("cache.ttl", 10)

	v.SetDefault("security.rate_limit", 20)

	v.SetDefault("turnstile.enabled", false)
}

// Validate checks the loaded values for anything the app can't run with
func Validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if p := v.GetInt("host.port"); p <= 0 || p > 65535 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDatabaseDrivers, v.GetString("database.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("database.dsn") == "" {
		return errors.New("database dsn can't be empty")
	}

	if v.GetString("database.driver") == "mongo" && v.GetString("database.name") == "" {
		return errors.New("database name can't be empty")
	}

	switch v.GetString("storage.type") {
	case "s3":
		if v.GetString("storage.container") == "" {
			return errors.New("bucket can't be empty")
		}
		if (v.GetString("storage.s3.access_key_id") == "") != (v.GetString("storage.s3.secret_access_key") == "") {
			return errors.New("s3 access key id and secret access key must be set together")
		}
	case "azure":
		if v.GetString("storage.azure.connection_string") == "" {
			return errors.New("azure connection string can't be empty")
		}
	case "gcs":
		if v.GetString("storage.container") == "" {
			return errors.New("bucket can't be empty")
		}
	case "local":
		if v.GetString("storage.local.path") == "" {
			return errors.New("local storage path can't be empty")
		}
	}

	if !slices.Contains(validStorageTypes, v.GetString("storage.type")) {
		return errors.New("invalid storage type provided")
	}

	switch v.GetString("auth.provider") {
	case "hmac":
		if v.GetString("auth.jwt_secret") == "" {
			return errors.New("auth.jwt_secret is required for the hmac provider")
		}
	case "jwks":
		if v.GetString("auth.jwks_url") == "" {
			return errors.New("auth.jwks_url is required for the jwks provider")
		}
	case "firebase":
		if v.GetString("firebase.project_id") == "" {
			return errors.New("firebase.project_id is required for the firebase provider")
		}
	}

	if !slices.Contains(validAuthProviders, v.GetString("auth.provider")) {
		return errors.New("invalid auth provider provided")
	}

	if v.GetInt("ffmpeg.max_jobs") <= 0 {
		return errors.New("ffmpeg.max_jobs must be bigger than 0")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if v.GetInt("cache.ttl") < 0 {
		return errors.New("cache.ttl can't be negative")
	}

	if v.GetBool("turnstile.enabled") && v.GetString("turnstile.secret_token") == "" {
		return errors.New("turnstile secret token is missing")
	}

	return nil
}
