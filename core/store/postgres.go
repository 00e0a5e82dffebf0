package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type postgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an open sqlx connection as a Store. The schema is
// expected to be in place; see migrations/.
func NewPostgresStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

func (p *postgresStore) GetOrCreateUser(ctx context.Context, sender string) (User, bool, error) {
	res, err := p.db.ExecContext(ctx,
		`INSERT INTO users (sender, stage) VALUES ($1, $2) ON CONFLICT (sender) DO NOTHING`,
		sender, StageNew,
	)
	if err != nil {
		return User{}, false, fmt.Errorf("insert user: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return User{}, false, fmt.Errorf("insert user: %w", err)
	}

	var u User
	if err := p.db.GetContext(ctx, &u,
		`SELECT sender, business_name, stage, created_at FROM users WHERE sender = $1`, sender,
	); err != nil {
		return User{}, false, fmt.Errorf("select user: %w", err)
	}
	return u, inserted > 0, nil
}

func (p *postgresStore) SetStage(ctx context.Context, sender string, st Stage) error {
	if _, err := p.db.ExecContext(ctx,
		`UPDATE users SET stage = $2 WHERE sender = $1`, sender, st,
	); err != nil {
		return fmt.Errorf("update stage: %w", err)
	}
	return nil
}

func (p *postgresStore) SetBusinessName(ctx context.Context, sender, name string) error {
	if _, err := p.db.ExecContext(ctx,
		`UPDATE users SET business_name = $2, stage = $3 WHERE sender = $1`,
		sender, name, StageActive,
	); err != nil {
		return fmt.Errorf("update business name: %w", err)
	}
	return nil
}

func (p *postgresStore) AppendSale(ctx context.Context, sender string, sale SaleRecord) (int, error) {
	if _, err := p.db.ExecContext(ctx,
		`INSERT INTO sales (id, sender, product, amount, quantity, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		sale.ID, sender, sale.Product, sale.Amount, sale.Quantity, sale.RecordedAt,
	); err != nil {
		return 0, fmt.Errorf("insert sale: %w", err)
	}

	var count int
	if err := p.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM sales WHERE sender = $1`, sender,
	); err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return count, nil
}

func (p *postgresStore) SalesSince(ctx context.Context, sender string, since time.Time) ([]SaleRecord, error) {
	var out []SaleRecord
	if err := p.db.SelectContext(ctx, &out,
		`SELECT id, product, amount, quantity, recorded_at
		 FROM sales WHERE sender = $1 AND recorded_at >= $2
		 ORDER BY recorded_at ASC`,
		sender, since,
	); err != nil {
		return nil, fmt.Errorf("select sales: %w", err)
	}
	return out, nil
}

func (p *postgresStore) AddStock(ctx context.Context, sender, product string, qty int) (int, error) {
	var stock int
	err := p.db.GetContext(ctx, &stock,
		`INSERT INTO inventory (sender, product, stock) VALUES ($1, $2, $3)
		 ON CONFLICT (sender, product) DO UPDATE SET stock = inventory.stock + EXCLUDED.stock
		 RETURNING stock`,
		sender, product, qty,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert stock: %w", err)
	}
	return stock, nil
}

func (p *postgresStore) Inventory(ctx context.Context, sender string) (map[string]int, error) {
	rows, err := p.db.QueryxContext(ctx,
		`SELECT product, stock FROM inventory WHERE sender = $1`, sender,
	)
	if err != nil {
		return nil, fmt.Errorf("select inventory: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			product string
			stock   int
		)
		if err := rows.Scan(&product, &stock); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		out[product] = stock
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory: %w", err)
	}
	return out, nil
}

func (p *postgresStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := p.db.GetContext(ctx, &st.Users, `SELECT COUNT(*) FROM users`); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Stats{}, nil
		}
		return Stats{}, fmt.Errorf("count users: %w", err)
	}
	if err := p.db.GetContext(ctx, &st.TotalSales, `SELECT COUNT(*) FROM sales`); err != nil {
		return Stats{}, fmt.Errorf("count sales: %w", err)
	}
	return st, nil
}

func (p *postgresStore) Close() error {
	return p.db.Close()
}
