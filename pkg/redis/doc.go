// Package redis connects to the Redis server that stores upload results.
//
// Connect parses a redis:// URL and pings the server, retrying until it
// answers or the attempts run out. Healthcheck turns a client into a probe
// for the HTTP server's /health endpoint.
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	client, err := redis.Connect(ctx, cfg, redis.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	sink := upload.NewRedisSink(client, upload.WithSinkMaxLen(1000))
package redis
