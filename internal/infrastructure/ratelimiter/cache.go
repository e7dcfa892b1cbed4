package ratelimiter

import (
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

// bucketState is one source's token bucket. Tokens holds fractional refill
// progress; a request spends a whole token.
type bucketState struct {
	Tokens   float64
	LastFill int64 // Unix milliseconds
}

type GetterSetter interface {
	Get(key string) (bucketState, error)
	SetWithExpiration(key string, state bucketState, expiration time.Duration) error
	Close() error
}
