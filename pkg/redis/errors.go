package redis

import "errors"

var (
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready within the given time period")
	ErrEmptyConnectionURL           = errors.New("empty redis connection URL")
	ErrHealthcheckFailed            = errors.New("redis healthcheck failed")
	ErrCacheRead                    = errors.New("redis: cache read failed")
	ErrCacheWrite                   = errors.New("redis: cache write failed")
	ErrCacheDecode                  = errors.New("redis: cache value encoding failed")
)
