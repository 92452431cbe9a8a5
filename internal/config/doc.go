// Package config defines the service configuration and loads it once at
// startup from defaults, an optional config.yaml, an optional .env file and
// COMPETE_-prefixed environment variables. Components receive the parts they
// need; nothing reads the environment after Load returns.
package config
