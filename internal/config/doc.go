// Package config loads application settings from defaults, an optional YAML
// file, a dotenv file and KANBAN_* environment variables, and validates them
// before any component is built.
package config
