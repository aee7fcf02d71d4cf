package domain

import (
	"context"
	"time"
)

// Repository defines the interface for data persistence.
// All methods require tenantID for strict multi-tenancy isolation.
type Repository interface {
	// Spend operations
	SaveSpend(ctx context.Context, tenantID string, spend *SpendRecord) error
	GetSpend(ctx context.Context, tenantID string, spendID string) (*SpendRecord, error)
	SumSpendByProduct(ctx context.Context, tenantID string, productID string, since time.Time) (float64, error)

	// Evaluation results
	SaveEvaluation(ctx context.Context, tenantID string, eval *Evaluation) error
	GetEvaluation(ctx context.Context, tenantID string, evalID string) (*Evaluation, error)

	// Promo rule operations
	SavePromoRule(ctx context.Context, tenantID string, promo *PromoRule) error
	GetPromoRule(ctx context.Context, tenantID string, promoID string) (*PromoRule, error)
	ListPromoRules(ctx context.Context, tenantID string) ([]*PromoRule, error)
	DeletePromoRule(ctx context.Context, tenantID string, promoID string) error

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string

	// SQLite specific
	SQLitePath string

	// PostgreSQL specific
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
