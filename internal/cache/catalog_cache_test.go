package cache

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingSource struct {
	disciplineCalls atomic.Int32
	roleCalls       atomic.Int32

	mu        sync.Mutex
	monitorOf []int64
}

func newCountingSource() *countingSource {
	return &countingSource{monitorOf: []int64{1}}
}

func (s *countingSource) GetDiscipline(_ context.Context, id int64) (*model.Discipline, error) {
	s.disciplineCalls.Add(1)
	if id != 1 {
		return nil, model.ErrDisciplineNotFound
	}
	return &model.Discipline{ID: 1, Name: "Calculus I", Monitors: []int64{10}}, nil
}

func (s *countingSource) ResolveRoles(_ context.Context, userID int64) (model.Membership, error) {
	s.roleCalls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Membership{UserID: userID, MonitorOf: append([]int64{}, s.monitorOf...)}, nil
}

func (s *countingSource) setMonitorOf(ids ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monitorOf = ids
}

// unreachableRedis points at a closed port so every command fails fast.
func unreachableRedis(t *testing.T) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

// liveRedis connects to TEST_REDIS_ADDR or skips the test.
func liveRedis(t *testing.T) *redis.Client {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, rdb.Ping(context.Background()).Err())
	t.Cleanup(func() {
		_ = rdb.Del(context.Background(), disciplineKey(1)).Err()
		_ = rdb.Close()
	})
	require.NoError(t, rdb.Del(context.Background(), disciplineKey(1)).Err())
	return rdb
}

func TestCatalogCache_FallsBackWhenRedisIsDown(t *testing.T) {
	source := newCountingSource()
	c := NewCatalogCache(source, unreachableRedis(t), time.Minute, zap.NewNop())
	ctx := context.Background()

	d, err := c.GetDiscipline(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Calculus I", d.Name)

	m, err := c.ResolveRoles(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, m.MonitorOf)

	_, err = c.GetDiscipline(ctx, 2)
	assert.ErrorIs(t, err, model.ErrDisciplineNotFound)

	assert.Equal(t, int32(2), source.disciplineCalls.Load())
	assert.Equal(t, int32(1), source.roleCalls.Load())
}

func TestCatalogCache_CachesDisciplinesOnly(t *testing.T) {
	source := newCountingSource()
	c := NewCatalogCache(source, liveRedis(t), time.Minute, zap.NewNop())
	ctx := context.Background()

	for range 3 {
		d, err := c.GetDiscipline(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{10}, d.Monitors)
	}
	assert.Equal(t, int32(1), source.disciplineCalls.Load())

	m, err := c.ResolveRoles(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, m.MonitorOf)

	source.setMonitorOf()

	m, err = c.ResolveRoles(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, m.MonitorOf)
	assert.Equal(t, int32(2), source.roleCalls.Load())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "tutoring:catalog:discipline:7", disciplineKey(7))
}
