package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/authentix/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      session token validity, minutes
//	-i string   index backend (file, s3, pgvector)
//	-w string   data directory for file snapshots
//	-f string   face extractor base URL
//	-v string   voice extractor base URL
//	-m string   gesture (motion) extractor base URL
//	-x int      extractor call timeout, seconds
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers and then converted to
//     time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-i", "-w", "-f", "-v", "-m", "-x", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidityDuration := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token_validity_duration (in minutes)")

	fs.StringVar(&config.IndexBackend, "i", config.IndexBackend, "index backend (file, s3, pgvector)")
	fs.StringVar(&config.DataDir, "w", config.DataDir, "data directory for file snapshots")

	fs.StringVar(&config.ExtractorFaceURL, "f", config.ExtractorFaceURL, "face extractor base URL")
	fs.StringVar(&config.ExtractorVoiceURL, "v", config.ExtractorVoiceURL, "voice extractor base URL")
	fs.StringVar(&config.ExtractorGestureURL, "m", config.ExtractorGestureURL, "gesture extractor base URL")

	extractorTimeout := fs.Int("x", int(config.ExtractorTimeout.Seconds()), "extractor_timeout (in seconds)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidityDuration) * time.Minute
	config.ExtractorTimeout = time.Duration(*extractorTimeout) * time.Second
}
