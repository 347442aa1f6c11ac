// Package config defines the application configuration structure and the
// loading logic. Configuration is environment-driven (TASKVAULT_ prefix)
// with an optional YAML file, read once at process start; there is no
// runtime reconfiguration.
package config
