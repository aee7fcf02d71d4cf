package repository

// Schema definitions for the cardperk database.
// Compatible with both SQLite and PostgreSQL.

const schemaSpends = `
CREATE TABLE IF NOT EXISTS spends (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    product_id TEXT NOT NULL,
    amount REAL NOT NULL,
    mcc TEXT,
    answers TEXT,
    timestamp TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_spends_tenant ON spends(tenant_id);
CREATE INDEX IF NOT EXISTS idx_spends_product ON spends(tenant_id, product_id);
CREATE INDEX IF NOT EXISTS idx_spends_timestamp ON spends(tenant_id, timestamp);
`

const schemaEvaluations = `
CREATE TABLE IF NOT EXISTS evaluations (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    spend_id TEXT NOT NULL,
    product_id TEXT NOT NULL,
    card_type TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    reward TEXT NOT NULL,
    promos TEXT,
    metadata TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_evaluations_tenant ON evaluations(tenant_id);
CREATE INDEX IF NOT EXISTS idx_evaluations_spend ON evaluations(tenant_id, spend_id);
CREATE INDEX IF NOT EXISTS idx_evaluations_product ON evaluations(tenant_id, product_id);
CREATE INDEX IF NOT EXISTS idx_evaluations_timestamp ON evaluations(tenant_id, timestamp);
`

// schemaPromoRules defines the promo_rules table. Promo rules carry a CEL
// expression plus bonus tiers and are versioned per tenant.
const schemaPromoRules = `
CREATE TABLE IF NOT EXISTS promo_rules (
    id TEXT NOT NULL,
    tenant_id TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    version TEXT NOT NULL,
    expression TEXT NOT NULL,
    tiers TEXT NOT NULL,
    enabled INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (id, tenant_id, version)
);

CREATE INDEX IF NOT EXISTS idx_promo_rules_tenant ON promo_rules(tenant_id);
CREATE INDEX IF NOT EXISTS idx_promo_rules_enabled ON promo_rules(tenant_id, enabled);
CREATE INDEX IF NOT EXISTS idx_promo_rules_name ON promo_rules(tenant_id, name);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaSpends,
		schemaEvaluations,
		schemaPromoRules,
	}
}
