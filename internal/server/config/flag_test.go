package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_parseFlags_OverridesDefaults(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin",
		"-a", ":7070",
		"-d", "postgres://u:p@host:5432/db",
		"-s", "flag_secret",
		"-t", "45",
		"-i", "s3",
		"-w", "/tmp/authentix",
		"-f", "http://face.local",
		"-v", "http://voice.local",
		"-m", "http://gesture.local",
		"-x", "3",
		"-u", "s3user",
		"-p", "s3pass",
		"-b", "s3bucket",
		"-g", "eu-west-1",
		"-e", "http://minio:9000/",
	}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, cfg.EndpointAddrHTTP, ":7070")
	assert.Equal(t, cfg.DatabaseDSN, "postgres://u:p@host:5432/db")
	assert.Equal(t, cfg.SecretKey, "flag_secret")
	assert.Equal(t, cfg.TokenValidityDuration, 45*time.Minute)
	assert.Equal(t, cfg.IndexBackend, IndexBackendS3)
	assert.Equal(t, cfg.DataDir, "/tmp/authentix")
	assert.Equal(t, cfg.ExtractorFaceURL, "http://face.local")
	assert.Equal(t, cfg.ExtractorVoiceURL, "http://voice.local")
	assert.Equal(t, cfg.ExtractorGestureURL, "http://gesture.local")
	assert.Equal(t, cfg.ExtractorTimeout, 3*time.Second)
	assert.Equal(t, cfg.S3RootUser, "s3user")
	assert.Equal(t, cfg.S3RootPassword, "s3pass")
	assert.Equal(t, cfg.S3Bucket, "s3bucket")
	assert.Equal(t, cfg.S3Region, "eu-west-1")
	assert.Equal(t, cfg.S3BaseEndpoint, "http://minio:9000/")
}

func Test_parseFlags_KeepsDefaultsWithoutFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, cfg.EndpointAddrHTTP, ":8080")
	assert.Equal(t, cfg.TokenValidityDuration, 15*time.Minute)
	assert.Equal(t, cfg.ExtractorTimeout, 10*time.Second)
}
