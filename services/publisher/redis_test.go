package publisher

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// This test requires a running Redis instance
// If Redis is not available, the test will be skipped
func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   0,
	})
	defer client.Close()

	if _, err := client.Ping(ctx).Result(); err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	publisher := NewRedisPublisher(ctx, "localhost:6379", 0, "test_market_analysis", 10)
	defer publisher.Close()
	defer client.Del(ctx, "test_market_analysis")

	record := []byte(`{"card_name":"Bonecrusher Giant","market_min":3.0}`)
	assert.NoError(t, publisher.Publish("analysis", record))

	messages, err := client.XRange(ctx, "test_market_analysis", "-", "+").Result()
	assert.NoError(t, err)
	assert.Len(t, messages, 1)

	encoded, ok := messages[0].Values["analysis"].(string)
	assert.True(t, ok)
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	assert.NoError(t, err)
	assert.Equal(t, record, decoded)
}

func TestRedisPublisherCapsStream(t *testing.T) {
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 0})
	defer client.Close()

	if _, err := client.Ping(ctx).Result(); err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	publisher := NewRedisPublisher(ctx, "localhost:6379", 0, "test_capped_stream", 5)
	defer publisher.Close()
	defer client.Del(ctx, "test_capped_stream")

	for i := 0; i < 200; i++ {
		assert.NoError(t, publisher.Publish("analysis", []byte("x")))
	}

	length, err := client.XLen(ctx, "test_capped_stream").Result()
	assert.NoError(t, err)
	// MaxLen is approximate, but 200 entries must not all survive
	assert.Less(t, length, int64(200))
}
