package redis

import "time"

type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"` // ConnectionURL should look like "redis://:password@localhost:6379/0".
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3" validate:"gte=1"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
	ResultsKey     string        `env:"REDIS_RESULTS_KEY" envDefault:"uploads:results"` // ResultsKey is the list upload results are appended to.
	ResultsMaxLen  int64         `env:"REDIS_RESULTS_MAX_LEN" envDefault:"1000" validate:"gte=0"`
}
