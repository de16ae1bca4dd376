// Package config loads runtime configuration for the tubeboost terminal
// client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via -c or -config. JSON, or YAML when
//     the file ends in .yaml or .yml.
//  3. Environment: API_URL, CLIENT_ORIGIN.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   backend API URL
//	-o string   client origin URL
//	-d string   local database path
//	-l string   log level
//
// # File schema
//
//	api_url: https://api.example.com
//	origin: https://app.example.com
//	db_path: /var/lib/tubeboost/client.db
//	log_level: debug
//	log_backend: zap
package config
