package subscriptions

import "time"

// Config holds the billing settings of the plugin.
type Config struct {
	StripeSecretKey      string        `env:"STRIPE_SECRET_KEY,required"`          // StripeSecretKey authenticates processor calls.
	StripeAPIURL         string        `env:"STRIPE_API_URL"`                      // StripeAPIURL overrides the processor endpoint, e.g. for stripe-mock.
	DefaultPlanProductID string        `env:"DEFAULT_PLAN_PRODUCT_ID,required"`    // DefaultPlanProductID is the catalog product new members are linked to.
	PlanFamily           string        `env:"PLAN_FAMILY" envDefault:"individual"` // PlanFamily keeps only products whose metadata type matches.
	CatalogCacheTTL      time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m"`   // CatalogCacheTTL bounds how long projected plans stay in Redis.
}
