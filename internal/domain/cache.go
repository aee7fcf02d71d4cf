package domain

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations.
// Supports two-phase caching: local LRU (Community) + Redis (Pro).
// All methods require tenantID for strict multi-tenancy isolation.
type Cache interface {
	// Get retrieves a value from cache.
	// Returns nil, nil if key not found.
	Get(ctx context.Context, tenantID string, key string) ([]byte, error)

	// Set stores a value in cache with expiration.
	Set(ctx context.Context, tenantID string, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache.
	Delete(ctx context.Context, tenantID string, key string) error

	// GetReward retrieves a cached reward outcome.
	GetReward(ctx context.Context, tenantID string, key string) (*RewardCache, error)

	// SetReward caches a reward outcome for repeated identical spends.
	SetReward(ctx context.Context, tenantID string, key string, data *RewardCache, ttl time.Duration) error

	// IncrementCounter atomically increments a counter and returns new value.
	// Used for period reward counters (points earned per statement cycle).
	IncrementCounter(ctx context.Context, tenantID string, key string, window time.Duration) (int64, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RewardCache holds a cached reward outcome keyed by spend fingerprint.
type RewardCache struct {
	ProductID  string  `json:"productId"`
	Quantity   float64 `json:"qty"`
	RewardText string  `json:"rewardText"`
	RateType   string  `json:"rateType"`
	Category   string  `json:"category"`
	Timestamp  string  `json:"timestamp"`
}

// CacheConfig holds configuration for cache initialization.
type CacheConfig struct {
	// Type is the cache type: "memory" or "redis"
	Type string

	// Local LRU cache settings (Community tier)
	LocalMaxSize int
	LocalTTL     time.Duration

	// Redis settings (Pro tier)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Two-phase settings
	EnableTwoPhase bool // If true, check local first, then Redis
}
