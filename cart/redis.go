package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pizza-delivery-api/models"
)

// RedisStore keeps carts as JSON under cart:<userID>, refreshing the TTL on
// every save. Expiry is left to redis.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func key(userID uint) string {
	return fmt.Sprintf("cart:%d", userID)
}

func (r *RedisStore) Get(ctx context.Context, userID uint) (*models.Cart, error) {
	val, err := r.client.Get(ctx, key(userID)).Result()
	if err == redis.Nil {
		return emptyCart(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	var c models.Cart
	if err := json.Unmarshal([]byte(val), &c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	return &c, nil
}

func (r *RedisStore) Save(ctx context.Context, c *models.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key(c.UserID), data, r.ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, userID uint) error {
	return r.client.Del(ctx, key(userID)).Err()
}
