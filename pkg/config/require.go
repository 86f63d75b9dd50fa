package config

import "fmt"

// Require reports the first required setting that is missing.
func (c Config) Require() error {
	if c.DatabaseURL == "" {
		return missing("DATABASE_URL")
	}
	if len(c.JWTSecret) == 0 {
		return missing("JWT_SECRET")
	}
	return nil
}

func missing(envName string) error {
	return fmt.Errorf("missing required env %s", envName)
}
