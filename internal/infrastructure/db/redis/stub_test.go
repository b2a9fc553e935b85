package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// stubCmdable records the few commands the stores use. Anything else
// panics through the embedded nil interface.
type stubCmdable struct {
	redis.Cmdable
	values map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newStubCmdable() *stubCmdable {
	return &stubCmdable{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *stubCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	if s.err != nil {
		return redis.NewStringResult("", s.err)
	}
	v, ok := s.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (s *stubCmdable) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if s.err != nil {
		return redis.NewStatusResult("", s.err)
	}
	s.values[key] = fmt.Sprint(value)
	s.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (s *stubCmdable) SetNX(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	if s.err != nil {
		return redis.NewBoolResult(false, s.err)
	}
	if _, ok := s.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	s.values[key] = fmt.Sprint(value)
	s.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (s *stubCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if s.err != nil {
		return redis.NewIntResult(0, s.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := s.values[k]; ok {
			delete(s.values, k)
			delete(s.ttls, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}
