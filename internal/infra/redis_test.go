package infra

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClientConnects(t *testing.T) {
	mr := miniredis.RunT(t)

	// No client name: the in-process server does not implement CLIENT SETNAME.
	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr(), "")
	require.NoError(t, err)
	defer client.Close()

	opt := client.Options()
	assert.Equal(t, redisDialTimeout, opt.DialTimeout)
	assert.Equal(t, redisIOTimeout, opt.ReadTimeout)
	assert.Equal(t, redisIOTimeout, opt.WriteTimeout)
}

func TestApplyRedisDefaultsNamesClient(t *testing.T) {
	opt := &redis.Options{}
	applyRedisDefaults(opt, "tally")
	assert.Equal(t, "tally", opt.ClientName)
}

func TestApplyRedisDefaultsKeepsURLSettings(t *testing.T) {
	opt := &redis.Options{ClientName: "custom", ReadTimeout: 5 * time.Second}
	applyRedisDefaults(opt, "tally")

	assert.Equal(t, "custom", opt.ClientName)
	assert.Equal(t, 5*time.Second, opt.ReadTimeout)
	assert.Equal(t, redisIOTimeout, opt.WriteTimeout)
}

func TestNewRedisClientRejectsBadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "", "tally")
	assert.Error(t, err)
	_, err = NewRedisClient(context.Background(), "http://nope", "tally")
	assert.Error(t, err)
}
