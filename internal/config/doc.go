// Package config loads, normalizes, and validates tankobon configuration.
//
// Configuration is TOML, looked up at ~/.config/tankobon/config.toml or a
// project-local tankobon.toml unless an explicit path is given. Defaults
// are usable without any file present except for email delivery, which
// requires credentials when enabled.
package config
