// Package redis connects to Redis with go-redis/v9 and provides the small
// JSON helpers the plan catalog cache is built on.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	found, err := redis.GetJSON(ctx, client, "subscriptions:catalog:all", &plans)
package redis
