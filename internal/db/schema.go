package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Rows imported from broker exports are never hard-deleted: merging marks the
// sources is_deleted and points merged_to at the replacement trade.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS trades (
	id          BIGSERIAL PRIMARY KEY,
	pair        TEXT NOT NULL,
	side        TEXT NOT NULL,
	lot         DOUBLE PRECISION NOT NULL,
	entry_rate  DOUBLE PRECISION NOT NULL,
	exit_rate   DOUBLE PRECISION NOT NULL,
	entry_time  BIGINT NOT NULL,
	exit_time   BIGINT NOT NULL,
	profit      DOUBLE PRECISION NOT NULL,
	profit_pips BIGINT NOT NULL,
	swap        DOUBLE PRECISION NOT NULL DEFAULT 0,
	memo        TEXT NOT NULL DEFAULT '',
	is_deleted  BOOLEAN NOT NULL DEFAULT false,
	merged_to   BIGINT REFERENCES trades(id),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_trades_entry_time ON trades(entry_time) WHERE NOT is_deleted;

CREATE TABLE IF NOT EXISTS labels (
	id   BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trade_labels (
	trade_id BIGINT NOT NULL REFERENCES trades(id),
	label_id BIGINT NOT NULL REFERENCES labels(id),
	PRIMARY KEY (trade_id, label_id)
);

CREATE INDEX IF NOT EXISTS idx_trade_labels_label ON trade_labels(label_id);
`

// Migrate creates the journal tables when they do not exist yet.
func Migrate(ctx context.Context, p *pgxpool.Pool) error {
	if _, err := p.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("schema migration: %w", err)
	}
	return nil
}
