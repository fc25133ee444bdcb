// Package redis connects to Redis with go-redis/v9 and provides Locker, a
// SET NX based mutex shared by every instance of the service.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	locker := redis.NewLocker(client)
//	sweeper := auth.NewSweeper(tokens, auth.WithSweepLocker(locker, time.Minute))
//
// A lock is released only by the Locker that took it: Unlock compares the
// stored owner token in a Lua script before deleting the key.
package redis
