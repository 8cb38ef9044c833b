// Package config handles loading and parsing of configuration from YAML files
// and environment variables. It defines the settings for the monitor,
// dispatcher, and autoscaler binaries, including scaling bounds, poll
// intervals, and per-call timeouts. Invalid bounds refuse startup.
package config
