package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kjannette/fxjournal/internal/models"
	"github.com/pkg/errors"
)

// LabelRepo reads labels and their trades. Label editing happens elsewhere.
type LabelRepo struct {
	pool *pgxpool.Pool
}

func NewLabelRepo(pool *pgxpool.Pool) *LabelRepo {
	return &LabelRepo{pool: pool}
}

func (r *LabelRepo) List(ctx context.Context) ([]models.Label, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM labels ORDER BY id ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "query labels")
	}
	defer rows.Close()

	out := []models.Label{}
	for rows.Next() {
		var l models.Label
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, errors.Wrap(err, "scan label")
		}
		out = append(out, l)
	}
	return out, errors.Wrap(rows.Err(), "iterate labels")
}

// TradesByLabel returns the live trades tagged with labelID, oldest entry first.
func (r *LabelRepo) TradesByLabel(ctx context.Context, labelID int64) ([]models.Trade, error) {
	return queryTrades(ctx, r.pool,
		`SELECT `+tradeColumns+` FROM trades t
		 WHERE NOT t.is_deleted
		   AND t.id IN (SELECT trade_id FROM trade_labels WHERE label_id = $1)
		 ORDER BY t.entry_time ASC, t.id ASC`, labelID)
}
