// Package repository provides data persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openrewards/cardperk/internal/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveSpend stores a spend record with tenant isolation.
func (r *SQLRepository) SaveSpend(ctx context.Context, tenantID string, spend *domain.SpendRecord) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	answers, _ := json.Marshal(spend.Answers)

	query := `
		INSERT INTO spends (
			id, tenant_id, product_id, amount, mcc,
			answers, timestamp, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		spend.ID, tenantID, spend.ProductID,
		spend.Amount, spend.MCC,
		string(answers), spend.Timestamp, spend.CreatedAt,
	)
	return err
}

// GetSpend retrieves a spend record by ID with tenant isolation.
func (r *SQLRepository) GetSpend(ctx context.Context, tenantID string, spendID string) (*domain.SpendRecord, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, product_id, amount, mcc,
			   answers, timestamp, created_at
		FROM spends
		WHERE tenant_id = ? AND id = ?
	`

	var spend domain.SpendRecord
	var answers string

	err := r.db.QueryRowContext(ctx, r.rebind(query), tenantID, spendID).Scan(
		&spend.ID, &spend.TenantID, &spend.ProductID,
		&spend.Amount, &spend.MCC,
		&answers, &spend.Timestamp, &spend.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if answers != "" {
		json.Unmarshal([]byte(answers), &spend.Answers)
	}

	return &spend, nil
}

// SumSpendByProduct totals spend amounts on a product since a point in time,
// with tenant isolation.
func (r *SQLRepository) SumSpendByProduct(ctx context.Context, tenantID string, productID string, since time.Time) (float64, error) {
	if tenantID == "" {
		return 0, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM spends
		WHERE tenant_id = ?
		  AND product_id = ?
		  AND timestamp >= ?
	`

	var sum float64
	err := r.db.QueryRowContext(ctx, r.rebind(query), tenantID, productID, since).Scan(&sum)
	if err != nil {
		return 0, err
	}

	return sum, nil
}

// SaveEvaluation stores an evaluation result with tenant isolation.
func (r *SQLRepository) SaveEvaluation(ctx context.Context, tenantID string, eval *domain.Evaluation) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	reward, _ := json.Marshal(eval.Reward)
	promos, _ := json.Marshal(eval.Promos)
	metadata, _ := json.Marshal(eval.Metadata)

	query := `
		INSERT INTO evaluations (
			id, tenant_id, spend_id, product_id, card_type, timestamp,
			reward, promos, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		eval.ID, tenantID, eval.SpendID, eval.ProductID, string(eval.CardType), eval.Timestamp,
		string(reward), string(promos), string(metadata),
	)
	return err
}

// GetEvaluation retrieves an evaluation by ID with tenant isolation.
func (r *SQLRepository) GetEvaluation(ctx context.Context, tenantID string, evalID string) (*domain.Evaluation, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, spend_id, product_id, card_type, timestamp,
			   reward, promos, metadata
		FROM evaluations
		WHERE tenant_id = ? AND id = ?
	`

	var eval domain.Evaluation
	var cardType, reward, promos, metadata string

	err := r.db.QueryRowContext(ctx, r.rebind(query), tenantID, evalID).Scan(
		&eval.ID, &eval.TenantID, &eval.SpendID, &eval.ProductID, &cardType, &eval.Timestamp,
		&reward, &promos, &metadata,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	eval.CardType = domain.CardType(cardType)
	json.Unmarshal([]byte(reward), &eval.Reward)
	json.Unmarshal([]byte(promos), &eval.Promos)
	json.Unmarshal([]byte(metadata), &eval.Metadata)

	return &eval, nil
}

// SavePromoRule stores a promo rule with tenant isolation. Upserts on
// (id, tenant_id, version).
func (r *SQLRepository) SavePromoRule(ctx context.Context, tenantID string, promo *domain.PromoRule) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	tiers, _ := json.Marshal(promo.Tiers)

	enabled := 0
	if promo.Enabled {
		enabled = 1
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO promo_rules (
			id, tenant_id, name, description, version, expression, tiers, enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id, tenant_id, version) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			expression = excluded.expression,
			tiers = excluded.tiers,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		promo.ID, tenantID, promo.Name, promo.Description,
		promo.Version, promo.Expression, string(tiers), enabled,
		now, now,
	)
	return err
}

// GetPromoRule retrieves the latest enabled version of a promo rule with
// tenant isolation.
func (r *SQLRepository) GetPromoRule(ctx context.Context, tenantID string, promoID string) (*domain.PromoRule, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, name, description, version, expression, tiers, enabled
		FROM promo_rules
		WHERE tenant_id = ? AND id = ? AND enabled = 1
		ORDER BY version DESC
		LIMIT 1
	`

	var promo domain.PromoRule
	var tiers string
	var enabled int

	err := r.db.QueryRowContext(ctx, r.rebind(query), tenantID, promoID).Scan(
		&promo.ID, &promo.TenantID, &promo.Name, &promo.Description,
		&promo.Version, &promo.Expression, &tiers, &enabled,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	promo.Enabled = enabled == 1
	json.Unmarshal([]byte(tiers), &promo.Tiers)

	return &promo, nil
}

// ListPromoRules retrieves all enabled promo rules for a tenant.
func (r *SQLRepository) ListPromoRules(ctx context.Context, tenantID string) ([]*domain.PromoRule, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, name, description, version, expression, tiers, enabled
		FROM promo_rules
		WHERE tenant_id = ? AND enabled = 1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promos []*domain.PromoRule
	for rows.Next() {
		var promo domain.PromoRule
		var tiers string
		var enabled int

		if err := rows.Scan(
			&promo.ID, &promo.TenantID, &promo.Name, &promo.Description,
			&promo.Version, &promo.Expression, &tiers, &enabled,
		); err != nil {
			return nil, err
		}

		promo.Enabled = enabled == 1
		json.Unmarshal([]byte(tiers), &promo.Tiers)
		promos = append(promos, &promo)
	}

	return promos, rows.Err()
}

// DeletePromoRule soft-deletes a promo rule by setting enabled = 0.
func (r *SQLRepository) DeletePromoRule(ctx context.Context, tenantID string, promoID string) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		UPDATE promo_rules
		SET enabled = 0, updated_at = ?
		WHERE tenant_id = ? AND id = ?
	`

	result, err := r.db.ExecContext(ctx, r.rebind(query), time.Now().UTC(), tenantID, promoID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	// Convert ? to $1, $2, etc.
	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
