package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "STORAGE_DRIVER", "STORAGE_PATH", "ACCESS_TOKEN_MAX_AGE",
		"PASSWORD_MODE", "MAX_IMAGE_SIZE_BYTES", "IMAGE_MAX_WIDTH", "LOG_LEVEL",
		"ACTIVITY_WORKERS", "EVENT_STREAM_MAXLEN",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfigFrom(t.TempDir() + "/missing.env")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, StorageFile, cfg.StorageDriver)
	assert.Equal(t, "./data", cfg.StoragePath)
	assert.Equal(t, 86400, cfg.AccessTokenMaxAge)
	assert.Equal(t, PasswordPlain, cfg.PasswordMode)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxImageSizeBytes)
	assert.Equal(t, 1920, cfg.ImageMaxWidth)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 2, cfg.ActivityWorkers)
	assert.Equal(t, int64(10000), cfg.EventStreamMax)
	assert.False(t, cfg.R2Enabled())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("STORAGE_PATH", "/tmp/blog.db")
	t.Setenv("PASSWORD_MODE", "bcrypt")
	t.Setenv("ACCESS_TOKEN_MAX_AGE", "60")
	t.Setenv("ACTIVITY_WORKERS", "0")

	cfg, err := LoadConfigFrom(t.TempDir() + "/missing.env")
	require.NoError(t, err)

	assert.Equal(t, StorageSQLite, cfg.StorageDriver)
	assert.Equal(t, "/tmp/blog.db", cfg.StoragePath)
	assert.Equal(t, PasswordBcrypt, cfg.PasswordMode)
	assert.Equal(t, 60, cfg.AccessTokenMaxAge)
	assert.Equal(t, 0, cfg.ActivityWorkers)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "memory plain",
			cfg:  Config{StorageDriver: StorageMemory, PasswordMode: PasswordPlain},
		},
		{
			name:    "unknown driver",
			cfg:     Config{StorageDriver: "etcd", PasswordMode: PasswordPlain},
			wantErr: true,
		},
		{
			name:    "unknown password mode",
			cfg:     Config{StorageDriver: StorageMemory, PasswordMode: "md5"},
			wantErr: true,
		},
		{
			name:    "redis without url",
			cfg:     Config{StorageDriver: StorageRedis, PasswordMode: PasswordPlain},
			wantErr: true,
		},
		{
			name:    "postgres without host",
			cfg:     Config{StorageDriver: StoragePostgres, PasswordMode: PasswordPlain, DBName: "blog"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
