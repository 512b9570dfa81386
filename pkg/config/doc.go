// Package config loads typed configuration from environment variables.
//
// Structs are annotated with caarlos0/env tags and parsed by Load, which
// reads ./.env through godotenv on first use and caches one value per
// configuration type. LoadEnv reads additional env files explicitly.
//
//	type Config struct {
//		StripeSecretKey string        `env:"STRIPE_SECRET_KEY,required"`
//		CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// Reload and ResetCache exist for tests that change the environment.
package config
