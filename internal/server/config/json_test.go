package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_http":      ":9090",
		"database_dsn":            "postgres://u:p@host:5432/authentix",
		"secret_key":              "my_secret_key",
		"token_validity_duration": "30m",
		"index_backend":           "pgvector",
		"data_dir":                "/var/lib/authentix",
		"extractor_face_url":      "http://face:8000",
		"extractor_voice_url":     "http://voice:8000",
		"extractor_gesture_url":   "http://gesture:8000",
		"extractor_timeout":       "5s",
		"s3_root_user":            "user",
		"s3_root_password":        "password",
		"s3_bucket":               "bucket",
		"s3_region":               "region",
		"s3_base_endpoint":        "base_endpoint",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, cfg.EndpointAddrHTTP, ":9090")
		assert.Equal(t, cfg.DatabaseDSN, "postgres://u:p@host:5432/authentix")
		assert.Equal(t, cfg.SecretKey, "my_secret_key")
		assert.Equal(t, cfg.TokenValidityDuration, 30*time.Minute)
		assert.Equal(t, cfg.IndexBackend, "pgvector")
		assert.Equal(t, cfg.DataDir, "/var/lib/authentix")
		assert.Equal(t, cfg.ExtractorFaceURL, "http://face:8000")
		assert.Equal(t, cfg.ExtractorVoiceURL, "http://voice:8000")
		assert.Equal(t, cfg.ExtractorGestureURL, "http://gesture:8000")
		assert.Equal(t, cfg.ExtractorTimeout, 5*time.Second)
		assert.Equal(t, cfg.S3RootUser, "user")
		assert.Equal(t, cfg.S3RootPassword, "password")
		assert.Equal(t, cfg.S3Bucket, "bucket")
		assert.Equal(t, cfg.S3Region, "region")
		assert.Equal(t, cfg.S3BaseEndpoint, "base_endpoint")
	})

	t.Run("no json flag leaves config untouched", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, cfg.EndpointAddrHTTP, ":8080")
		assert.Equal(t, cfg.IndexBackend, IndexBackendFile)
	})
}
