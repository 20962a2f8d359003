package cxredis

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/zikwall/dataframe-buffer/src/cx"
)

const prefix = "df_buffer"

func key(bucket string) string {
	return prefix + ":" + bucket
}

type redisBuffer struct {
	client  *redis.Client
	context context.Context
	bucket  string
	// number of frames handed out by the last Read, Flush trims exactly these
	read int64
}

// NewBuffer returns a buffer engine keeping pending frames in a redis list.
// The bucket is owned by one dumper: any frames left in it are discarded,
// call Recover first to get them back after a crash.
func NewBuffer(ctx context.Context, rdb *redis.Client, bucket string) (cx.Buffer, error) {
	if err := rdb.Del(ctx, key(bucket)).Err(); err != nil {
		return nil, fmt.Errorf("cxredis: reset bucket %s: %w", bucket, err)
	}
	return &redisBuffer{
		client:  rdb,
		context: ctx,
		bucket:  key(bucket),
	}, nil
}

// Recover returns the frames a previous, interrupted, dumper left in the bucket
func Recover(ctx context.Context, rdb *redis.Client, bucket string) ([]*cx.Frame, error) {
	values, err := rdb.LRange(ctx, key(bucket), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("cxredis: recover bucket %s: %w", bucket, err)
	}
	return decode(values)
}

func decode(values []string) ([]*cx.Frame, error) {
	frames := make([]*cx.Frame, 0, len(values))
	for _, value := range values {
		frame, err := cx.FrameDecoded(value).Decode()
		if err != nil {
			return nil, fmt.Errorf("cxredis: decode frame: %w", err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

func (r *redisBuffer) isContextClosedErr(err error) bool {
	return errors.Is(err, redis.ErrClosed) && r.context.Err() != nil && r.context.Err() == context.Canceled
}
