package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setMinimalEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("BLOB_DRIVER", "memory")
	t.Setenv("AUTH_MODE", "placeholder")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, int64(10*1000*1000), cfg.Blob.MaxUploadBytes())
	assert.Equal(t, "0 0 3 * * *", cfg.Sweep.Schedule)
	assert.Equal(t, time.Hour, cfg.Sweep.Grace)
}

func TestLoad_Overrides(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("MAX_UPLOAD_SIZE", "2MB")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REQUEST_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(2*1000*1000), cfg.Blob.MaxUploadBytes())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
}

func TestDatabaseConfig_ConnString(t *testing.T) {
	assert.Equal(t, "postgres://x", DatabaseConfig{DSN: "postgres://x", Host: "db"}.ConnString())
	assert.Equal(t, "", DatabaseConfig{}.ConnString())
	assert.Equal(t,
		"host=db port=5432 user=admin password=pw dbname=content sslmode=disable",
		DatabaseConfig{Host: "db", Port: 5432, User: "admin", Password: "pw", Name: "content", SSLMode: "disable"}.ConnString(),
	)
}

func TestLoad_PostgresFromParts(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Contains(t, cfg.Database.ConnString(), "host=db.internal port=5432")
	assert.Equal(t, 10, cfg.Database.MaxConns)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unknown store", map[string]string{"STORE_DRIVER": "mongo"}, "unknown STORE_DRIVER"},
		{"postgres without dsn", map[string]string{"STORE_DRIVER": "postgres"}, "DB_DSN"},
		{"firebase blob without bucket", map[string]string{"BLOB_DRIVER": "firebase"}, "FIREBASE_STORAGE_BUCKET"},
		{"s3 without bucket", map[string]string{"BLOB_DRIVER": "s3"}, "BLOB_S3_BUCKET"},
		{"bad upload size", map[string]string{"MAX_UPLOAD_SIZE": "lots"}, "MAX_UPLOAD_SIZE"},
		{"placeholder without creds", map[string]string{"ADMIN_PASSWORD": ""}, "ADMIN_EMAIL and ADMIN_PASSWORD"},
		{"unknown auth", map[string]string{"AUTH_MODE": "ldap"}, "unknown AUTH_MODE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setMinimalEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
