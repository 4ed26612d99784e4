// Package config loads and validates Warren's process configuration.
//
// Configuration comes from environment variables with the WARREN_ prefix,
// optionally seeded from a .env file at startup. The loaded Config is a
// read-only snapshot constructed once in main and passed down to each
// component; nothing reads the environment after load.
package config
