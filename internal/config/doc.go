// Package config loads shelf's configuration.
//
// # Resolution order
//
//  1. Built-in defaults (Default)
//  2. The TOML file at the given path, or ~/.config/shelf/config.toml
//  3. A .env file in the working directory
//  4. The process environment
//
// A missing config file or .env file is not an error. Empty or zero values in
// the TOML file keep the default.
//
// # TOML Format
//
//	api_url          = "https://fakestoreapi.com"
//	request_timeout  = 10                # seconds
//	refresh_interval = 0                 # seconds, 0 disables background refresh
//	log_file         = "~/.local/state/shelf/shelf.log"
//	log_level        = "info"
//	metrics_addr     = ""                # e.g. "127.0.0.1:9464"
//
// # Environment
//
//   - SHELF_API_URL overrides api_url
//   - SHELF_LOG_LEVEL overrides log_level
//   - SHELF_METRICS_ADDR overrides metrics_addr (set it empty to disable)
//
// Paths starting with ~ are expanded against the user's home directory.
package config
