package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultDialTimeout = 5 * time.Second
	defaultIOTimeout   = 3 * time.Second
)

// Options configures the client. ConnectTimeout bounds how long startup keeps retrying
// the initial PING; zero means a single attempt.
type Options struct {
	Addr           string
	Password       string
	DB             int
	ConnectTimeout time.Duration
}

// NewRedisClient returns a go-redis client that has answered PING.
func NewRedisClient(opts Options, logger *zap.Logger) (*redis.Client, error) {
	opts.Addr = strings.TrimSpace(opts.Addr)
	if opts.Addr == "" {
		return nil, errors.New("redis: addr is empty")
	}
	if opts.DB < 0 {
		return nil, errors.New("redis: negative db index")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  defaultDialTimeout,
		ReadTimeout:  defaultIOTimeout,
		WriteTimeout: defaultIOTimeout,
	})

	ping := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), defaultDialTimeout)
		defer cancel()
		return client.Ping(ctx).Err()
	}

	var err error
	if opts.ConnectTimeout <= 0 {
		err = ping()
	} else {
		bo := backoff.NewExponentialBackOff()
		bo.MaxElapsedTime = opts.ConnectTimeout
		err = backoff.RetryNotify(ping, bo, func(err error, wait time.Duration) {
			logger.Warn("redis not ready, retrying", zap.String("addr", opts.Addr), zap.Error(err), zap.Duration("wait", wait))
		})
	}
	if err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
