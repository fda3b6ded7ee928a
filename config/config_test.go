package config

import (
	"testing"

	v "github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func withDefaults(t *testing.T) {
	t.Helper()

	v.Reset()
	SetDefaults()
	v.Set("auth.jwt_secret", "secret")
}

func TestValidateDefaults(t *testing.T) {
	withDefaults(t)
	assert.NoError(t, Validate())
	assert.Equal(t, 5000, v.GetInt("host.port"))
	assert.Equal(t, "local", v.GetString("storage.type"))
}

func TestValidateRejects(t *testing.T) {
	tests := map[string]func(){
		"log level":       func() { v.Set("app.log_level", "verbose") },
		"port":            func() { v.Set("host.port", 0) },
		"driver":          func() { v.Set("database.driver", "mysql") },
		"storage":         func() { v.Set("storage.type", "ftp") },
		"azure":           func() { v.Set("storage.type", "azure") },
		"s3 half creds":   func() { v.Set("storage.type", "s3"); v.Set("storage.s3.access_key_id", "id") },
		"provider":        func() { v.Set("auth.provider", "ldap") },
		"hmac secret":     func() { v.Set("auth.jwt_secret", "") },
		"jwks url":        func() { v.Set("auth.provider", "jwks") },
		"firebase":        func() { v.Set("auth.provider", "firebase") },
		"max jobs":        func() { v.Set("ffmpeg.max_jobs", 0) },
		"upload size":     func() { v.Set("upload.max_size", 0) },
		"cache ttl":       func() { v.Set("cache.ttl", -1) },
		"turnstile token": func() { v.Set("turnstile.enabled", true) },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			withDefaults(t)
			mutate()
			assert.Error(t, Validate())
		})
	}
}
