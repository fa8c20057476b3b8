package config

import (
	"os"
)

// Environment names the deployment the process runs in. It decides where
// credentials are read from and how the service logs.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment reads ENV. CI=true wins over it; anything unknown is
// development.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	switch env := Environment(os.Getenv("ENV")); env {
	case Production, Test:
		return env
	default:
		return Development
	}
}

// Local reports whether the process runs on a developer machine or under
// go test.
func (e Environment) Local() bool {
	return e == Development || e == Test
}

// LogFormat is console output for local runs and JSON everywhere else.
func (e Environment) LogFormat() string {
	if e.Local() {
		return "console"
	}
	return "json"
}

// DebugHTTP reports whether gin should run in debug mode.
func (c *Config) DebugHTTP() bool {
	return c.Environment.Local() && c.LogLevel == "debug"
}
