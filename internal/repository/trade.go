package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kjannette/fxjournal/internal/models"
	"github.com/pkg/errors"
)

const tradeColumns = `t.id, t.pair, t.side, t.lot, t.entry_rate, t.exit_rate,
	t.entry_time, t.exit_time, t.profit, t.profit_pips, t.swap, t.memo, t.merged_to,
	ARRAY(SELECT tl.label_id FROM trade_labels tl WHERE tl.trade_id = t.id ORDER BY tl.label_id)`

type TradeRepo struct {
	pool      *pgxpool.Pool
	dayOffset int
}

// NewTradeRepo returns a repo whose date filters use dayOffset (seconds east
// of UTC) as the trading-day boundary.
func NewTradeRepo(pool *pgxpool.Pool, dayOffset int) *TradeRepo {
	return &TradeRepo{pool: pool, dayOffset: dayOffset}
}

// GetAll returns every live (not merged away) trade, oldest entry first.
func (r *TradeRepo) GetAll(ctx context.Context) ([]models.Trade, error) {
	return queryTrades(ctx, r.pool,
		`SELECT `+tradeColumns+` FROM trades t
		 WHERE NOT t.is_deleted
		 ORDER BY t.entry_time ASC, t.id ASC`)
}

// GetByFilter returns live trades matching the filter, oldest entry first.
func (r *TradeRepo) GetByFilter(ctx context.Context, f models.TradeFilter) ([]models.Trade, error) {
	query, args, err := buildFilteredQuery(
		`SELECT `+tradeColumns+` FROM trades t WHERE NOT t.is_deleted`,
		f, r.dayOffset,
	)
	if err != nil {
		return nil, err
	}
	query += " ORDER BY t.entry_time ASC, t.id ASC"
	return queryTrades(ctx, r.pool, query, args...)
}

// GetByIDs returns the live trades among ids, in id order.
func (r *TradeRepo) GetByIDs(ctx context.Context, ids []int64) ([]models.Trade, error) {
	return queryTrades(ctx, r.pool,
		`SELECT `+tradeColumns+` FROM trades t
		 WHERE NOT t.is_deleted AND t.id = ANY($1)
		 ORDER BY t.id ASC`, ids)
}

// Merge replaces the source trades with merged in one transaction: the merged
// trade is inserted, sources are soft-deleted and pointed at it, and their
// labels move over.
func (r *TradeRepo) Merge(ctx context.Context, sourceIDs []int64, merged models.Trade) (*models.Trade, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "begin merge")
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO trades
		 (pair, side, lot, entry_rate, exit_rate, entry_time, exit_time,
		  profit, profit_pips, swap, memo)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 RETURNING id`,
		merged.Pair, string(merged.Side), merged.Lot, merged.EntryRate, merged.ExitRate,
		merged.EntryTime, merged.ExitTime, merged.Profit, merged.ProfitPips,
		merged.Swap, merged.Memo,
	).Scan(&id)
	if err != nil {
		return nil, errors.Wrap(err, "insert merged trade")
	}

	tag, err := tx.Exec(ctx,
		`UPDATE trades SET is_deleted = true, merged_to = $1
		 WHERE id = ANY($2) AND NOT is_deleted`,
		id, sourceIDs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "retire merged sources")
	}
	if int(tag.RowsAffected()) != len(sourceIDs) {
		return nil, fmt.Errorf("merge sources changed concurrently: retired %d of %d", tag.RowsAffected(), len(sourceIDs))
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO trade_labels (trade_id, label_id)
		 SELECT DISTINCT $1::BIGINT, label_id FROM trade_labels WHERE trade_id = ANY($2)
		 ON CONFLICT DO NOTHING`,
		id, sourceIDs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "move labels")
	}

	stored, err := queryTrades(ctx, tx, `SELECT `+tradeColumns+` FROM trades t WHERE t.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(stored) != 1 {
		return nil, fmt.Errorf("merged trade %d not readable after insert", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit merge")
	}
	return &stored[0], nil
}

// buildFilteredQuery appends the filter's predicates to baseQuery, which must
// already contain a WHERE clause.
func buildFilteredQuery(baseQuery string, f models.TradeFilter, dayOffset int) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString(baseQuery)
	var args []any

	add := func(clause string, v any) {
		args = append(args, v)
		fmt.Fprintf(&sb, clause, len(args))
	}

	if f.StartDate != "" {
		from, _, err := DayBounds(f.StartDate, dayOffset)
		if err != nil {
			return "", nil, err
		}
		add(" AND t.entry_time >= $%d", from)
	}
	if f.EndDate != "" {
		_, to, err := DayBounds(f.EndDate, dayOffset)
		if err != nil {
			return "", nil, err
		}
		add(" AND t.entry_time < $%d", to)
	}
	if f.MinHoldingSeconds != nil {
		add(" AND (t.exit_time - t.entry_time) >= $%d", *f.MinHoldingSeconds)
	}
	if f.MaxHoldingSeconds != nil {
		add(" AND (t.exit_time - t.entry_time) <= $%d", *f.MaxHoldingSeconds)
	}
	if len(f.LabelIDs) > 0 {
		add(" AND EXISTS (SELECT 1 FROM trade_labels fl WHERE fl.trade_id = t.id AND fl.label_id = ANY($%d))", f.LabelIDs)
	}
	return sb.String(), args, nil
}

// --- scan helpers ---

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type rowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func queryTrades(ctx context.Context, q querier, sql string, args ...any) ([]models.Trade, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query trades")
	}
	defer rows.Close()
	return collectTrades(rows)
}

func collectTrades(rows rowsIter) ([]models.Trade, error) {
	out := []models.Trade{}
	for rows.Next() {
		var t models.Trade
		var side string
		if err := rows.Scan(
			&t.ID, &t.Pair, &side, &t.Lot, &t.EntryRate, &t.ExitRate,
			&t.EntryTime, &t.ExitTime, &t.Profit, &t.ProfitPips, &t.Swap,
			&t.Memo, &t.MergedTo, &t.LabelIDs,
		); err != nil {
			return nil, errors.Wrap(err, "scan trade")
		}
		parsed, err := models.ParseSide(side)
		if err != nil {
			return nil, errors.Wrapf(err, "trade %d", t.ID)
		}
		t.Side = parsed
		out = append(out, t)
	}
	return out, errors.Wrap(rows.Err(), "iterate trades")
}
