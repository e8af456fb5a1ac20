package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads envFiles (or the optional default .env when none are given), parses
// the environment into v and validates the result.
//
// Example:
//
//	var cfg upload.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T, envFiles ...string) error {
	if v == nil {
		return ErrNilPointer
	}

	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return errors.Join(ErrLoadingEnvFile, err)
		}
	} else {
		// The default .env file is optional.
		_ = godotenv.Load()
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	return Validate(v)
}

// MustLoad works like Load but panics on failure.
func MustLoad[T any](v *T, envFiles ...string) {
	if err := Load(v, envFiles...); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// Validate runs `validate` struct tags on v.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return errors.Join(ErrValidation, err)
	}
	return nil
}
