// Package config loads application configuration from the environment.
//
// It wraps three libraries:
//
//   - github.com/joho/godotenv reads one or more .env files (the default .env in
//     the working directory is optional).
//   - github.com/caarlos0/env/v11 parses variables into a struct using `env` and
//     `envDefault` tags.
//   - github.com/go-playground/validator/v10 checks `validate` tags after parsing.
//
// Usage:
//
//	type UploadConfig struct {
//		Destination string `env:"UPLOAD_DESTINATION" envDefault:"." validate:"required"`
//		Transfer    string `env:"UPLOAD_TRANSFER" envDefault:"move" validate:"oneof=move copy s3"`
//	}
//
//	var cfg UploadConfig
//	if err := config.Load(&cfg, ".env.local"); err != nil {
//		log.Fatalf("config: %v", err)
//	}
//
// Values already present in the process environment win over .env files.
//
// # Error Handling
//
//   - ErrLoadingEnvFile: an explicitly named .env file could not be read.
//   - ErrParsingConfig: the environment did not parse into the struct.
//   - ErrValidation: a `validate` rule failed.
//   - ErrNilPointer: Load was given a nil pointer.
package config
