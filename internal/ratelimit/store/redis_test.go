//go:build integration

package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"cubemint/pkg/testutil/containers"
)

type RedisBucketStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisBucketStore
}

func TestRedisBucketStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisBucketStoreSuite))
}

func (s *RedisBucketStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = NewRedisBucketStore(s.redis.Client)
}

func (s *RedisBucketStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisBucketStoreSuite) TestAllowUntilLimit() {
	ctx := context.Background()
	for i := range 3 {
		res, err := s.store.Allow(ctx, "mint:caller:a", 3, time.Minute)
		s.Require().NoError(err)
		s.True(res.Allowed)
		s.Equal(2-i, res.Remaining)
	}

	res, err := s.store.Allow(ctx, "mint:caller:a", 3, time.Minute)
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.GreaterOrEqual(res.RetryAfter, 1)

	ttl, err := s.redis.Client.PTTL(ctx, "cubemint:ratelimit:mint:caller:a").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0), "bucket expires on its own")
}

func (s *RedisBucketStoreSuite) TestWindowSlides() {
	ctx := context.Background()
	now := time.Now()
	s.store.now = func() time.Time { return now }

	_, err := s.store.Allow(ctx, "k", 1, time.Second)
	s.Require().NoError(err)
	res, _ := s.store.Allow(ctx, "k", 1, time.Second)
	s.False(res.Allowed)

	now = now.Add(1100 * time.Millisecond)
	res, err = s.store.Allow(ctx, "k", 1, time.Second)
	s.Require().NoError(err)
	s.True(res.Allowed)
}

func (s *RedisBucketStoreSuite) TestConcurrentAllowIsAtomic() {
	ctx := context.Background()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 40 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.store.Allow(ctx, "shared", 7, time.Minute)
			if err == nil && res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(7, allowed)
}
