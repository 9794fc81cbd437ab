package config

import (
	"github.com/caarlos0/env/v11"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
)

// ParseEnv applies BRIDGE_* environment overrides to cfg. Unset variables
// leave the current values.
func ParseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return errors.ParseFailed("environment", err)
	}
	return nil
}
