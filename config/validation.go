package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigRequirements defines required configuration for each environment
type ConfigRequirements struct {
	RequirePassword bool
	RequireSecret   bool
	AllowSQLite     bool
}

var (
	// Environment-specific requirements
	requirements = map[Environment]ConfigRequirements{
		Development: {AllowSQLite: true},
		Test:        {AllowSQLite: true},
		CI:          {RequireSecret: true, AllowSQLite: true},
		Production:  {RequirePassword: true, RequireSecret: true},
	}
)

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	reqs := requirements[env]

	var errors []string

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" {
			errors = append(errors, ValidationError{"DB_HOST", "is required"}.Error())
		}
		if cfg.DBName == "" {
			errors = append(errors, ValidationError{"DB_NAME", "is required"}.Error())
		}
		if reqs.RequirePassword && cfg.DBPassword == "" {
			errors = append(errors, ValidationError{"db_password", "secret is required"}.Error())
		}
	case "sqlite":
		if !reqs.AllowSQLite {
			errors = append(errors, ValidationError{"DB_DRIVER", fmt.Sprintf("sqlite is not allowed in %s", env)}.Error())
		}
		if cfg.SQLitePath == "" {
			errors = append(errors, ValidationError{"SQLITE_PATH", "is required"}.Error())
		}
	default:
		errors = append(errors, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)}.Error())
	}

	if reqs.RequireSecret && cfg.JWTSecret == "" {
		errors = append(errors, ValidationError{"jwt_secret", "secret is required"}.Error())
	}

	if cfg.PageSize <= 0 || cfg.PageSize > cfg.Rules.MaxPageSize {
		errors = append(errors, ValidationError{"PAGE_SIZE", fmt.Sprintf("must be between 1 and %d", cfg.Rules.MaxPageSize)}.Error())
	}
	if cfg.Rules.MinCookingTime > cfg.Rules.MaxCookingTime {
		errors = append(errors, ValidationError{"Rules", "cooking time bounds are inverted"}.Error())
	}
	if cfg.Rules.MinAmount > cfg.Rules.MaxAmount {
		errors = append(errors, ValidationError{"Rules", "amount bounds are inverted"}.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
