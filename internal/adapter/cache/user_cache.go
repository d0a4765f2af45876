package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-profile-service/internal/domain/user"
)

const (
	keyPrefix = "user:"
	// entryVersion is bumped whenever the layout of entry changes.
	entryVersion = 1
)

// UserCache stores user profiles by ID.
type UserCache interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, id int64) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
}

// RedisUserCache implements UserCache with one JSON string per user.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client *redis.Client, ttl time.Duration, log *zap.Logger) UserCache {
	return &RedisUserCache{client: client, ttl: ttl, log: log}
}

// CacheKey returns the Redis key holding the user with the given ID.
func CacheKey(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// entry is the cached representation of a user.
type entry struct {
	Version     int       `json:"v"`
	ID          int64     `json:"id"`
	FirebaseUID string    `json:"firebase_uid"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       *string   `json:"phone,omitempty"`
	Position    *string   `json:"position,omitempty"`
	Facebook    *string   `json:"facebook,omitempty"`
	Twitter     *string   `json:"twitter,omitempty"`
	Github      *string   `json:"github,omitempty"`
	Dribbble    *string   `json:"dribbble,omitempty"`
	Location    *string   `json:"location,omitempty"`
	State       *string   `json:"state,omitempty"`
	Pin         *string   `json:"pin,omitempty"`
	Zip         *string   `json:"zip,omitempty"`
	TaxNo       *string   `json:"tax_no,omitempty"`
	Role        string    `json:"role"`
	Group       string    `json:"group"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toEntry(u *domain.User) entry {
	return entry{
		Version:     entryVersion,
		ID:          u.ID,
		FirebaseUID: u.FirebaseUID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		Position:    u.Position,
		Facebook:    u.Facebook,
		Twitter:     u.Twitter,
		Github:      u.Github,
		Dribbble:    u.Dribbble,
		Location:    u.Location,
		State:       u.State,
		Pin:         u.Pin,
		Zip:         u.Zip,
		TaxNo:       u.TaxNo,
		Role:        u.Role,
		Group:       u.Group,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (e entry) toDomain() *domain.User {
	return &domain.User{
		Auditable:   domain.Auditable{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt},
		FirebaseUID: e.FirebaseUID,
		Email:       e.Email,
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		Phone:       e.Phone,
		Position:    e.Position,
		Facebook:    e.Facebook,
		Twitter:     e.Twitter,
		Github:      e.Github,
		Dribbble:    e.Dribbble,
		Location:    e.Location,
		State:       e.State,
		Pin:         e.Pin,
		Zip:         e.Zip,
		TaxNo:       e.TaxNo,
		Role:        e.Role,
		Group:       e.Group,
	}
}

// Get reads the user with the given ID.
// Entries that cannot be decoded, or were written with another layout version, are evicted and reported as a miss.
func (c *RedisUserCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	key := CacheKey(id)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.Int64("user_id", id))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil || e.Version != entryVersion || e.ID != id {
		c.log.Warn("evicting stale cache entry", zap.Int64("user_id", id), zap.Int("version", e.Version), zap.Error(err))
		_ = c.client.Del(ctx, key).Err()
		return nil, nil
	}

	c.log.Debug("cache hit", zap.Int64("user_id", id))
	return e.toDomain(), nil
}

// Set writes u with the configured TTL.
func (c *RedisUserCache) Set(ctx context.Context, u *domain.User) error {
	if u == nil {
		return errors.New("cannot cache nil user")
	}

	data, err := json.Marshal(toEntry(u))
	if err != nil {
		return fmt.Errorf("encode cached user %d: %w", u.ID, err)
	}

	if err := c.client.Set(ctx, CacheKey(u.ID), data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.Int64("user_id", u.ID), zap.Error(err))
		return err
	}

	c.log.Debug("cached user", zap.Int64("user_id", u.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete evicts the user with the given ID. Deleting an absent key is not an error.
func (c *RedisUserCache) Delete(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, CacheKey(id)).Err(); err != nil {
		c.log.Error("failed to delete from cache", zap.Int64("user_id", id), zap.Error(err))
		return err
	}

	c.log.Debug("deleted from cache", zap.Int64("user_id", id))
	return nil
}
