package cxredis

import (
	"fmt"

	"github.com/zikwall/dataframe-buffer/src/cx"
)

func (r *redisBuffer) Write(frame *cx.Frame) error {
	buf, err := frame.Encode()
	if err != nil {
		return fmt.Errorf("cxredis: encode frame: %w", err)
	}
	if err = r.client.RPush(r.context, r.bucket, buf).Err(); err != nil {
		if r.isContextClosedErr(err) {
			return r.context.Err()
		}
		return fmt.Errorf("cxredis: write frame: %w", err)
	}
	return nil
}

func (r *redisBuffer) Read() ([]*cx.Frame, error) {
	values, err := r.client.LRange(r.context, r.bucket, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("cxredis: read frames: %w", err)
	}
	frames, err := decode(values)
	if err != nil {
		return nil, err
	}
	r.read = int64(len(values))
	return frames, nil
}

func (r *redisBuffer) Len() int {
	return int(r.client.LLen(r.context, r.bucket).Val())
}

func (r *redisBuffer) Flush() error {
	if r.read == 0 {
		return nil
	}
	if err := r.client.LTrim(r.context, r.bucket, r.read, -1).Err(); err != nil {
		return fmt.Errorf("cxredis: flush frames: %w", err)
	}
	r.read = 0
	return nil
}
