package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gambitov02/Gambittt/internal/domain"
)

// PostgresLedger implements Ledger on top of a pgx connection pool.
type PostgresLedger struct{ pool *pgxpool.Pool }

// OpenPostgres connects to Postgres, verifies the connection and runs
// embedded migrations. The returned ledger must be closed on shutdown.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresLedger, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if err := RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return &PostgresLedger{pool: pool}, nil
}

// Close releases the underlying pool.
func (l *PostgresLedger) Close() {
	l.pool.Close()
}

func (l *PostgresLedger) UpsertUser(ctx context.Context, userID int64) error {
	now := time.Now().UTC()
	_, err := l.pool.Exec(ctx, `
		INSERT INTO users (user_id, is_subscribed, created_at, updated_at)
		VALUES ($1, FALSE, $2, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET updated_at = EXCLUDED.updated_at`,
		userID, now,
	)
	return err
}

func (l *PostgresLedger) SetSubscribed(ctx context.Context, userID int64, subscribed bool) error {
	now := time.Now().UTC()
	_, err := l.pool.Exec(ctx, `
		INSERT INTO users (user_id, is_subscribed, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET is_subscribed = EXCLUDED.is_subscribed,
		    updated_at    = EXCLUDED.updated_at`,
		userID, subscribed, now,
	)
	return err
}

func (l *PostgresLedger) IsSubscribed(ctx context.Context, userID int64) (bool, error) {
	var subscribed bool
	err := l.pool.QueryRow(ctx,
		`SELECT is_subscribed FROM users WHERE user_id = $1`,
		userID,
	).Scan(&subscribed)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return subscribed, nil
}

// DeleteUser removes the user and its payment reference atomically.
func (l *PostgresLedger) DeleteUser(ctx context.Context, userID int64) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM payments WHERE user_id = $1`, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (l *PostgresLedger) SubscriberIDs(ctx context.Context) ([]int64, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT user_id FROM users WHERE is_subscribed ORDER BY user_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (l *PostgresLedger) CountUsers(ctx context.Context) (total, subscribed int64, err error) {
	err = l.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_subscribed)
		FROM users`,
	).Scan(&total, &subscribed)
	return total, subscribed, err
}

func (l *PostgresLedger) SaveLastPayment(ctx context.Context, userID int64, paymentID string) error {
	now := time.Now().UTC()
	_, err := l.pool.Exec(ctx, `
		INSERT INTO payments (user_id, payment_id, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET payment_id = EXCLUDED.payment_id,
		    updated_at = EXCLUDED.updated_at`,
		userID, paymentID, now,
	)
	return err
}

func (l *PostgresLedger) LastPayment(ctx context.Context, userID int64) (*domain.PaymentReference, error) {
	ref := domain.PaymentReference{UserID: userID}
	err := l.pool.QueryRow(ctx,
		`SELECT payment_id, updated_at FROM payments WHERE user_id = $1`,
		userID,
	).Scan(&ref.PaymentID, &ref.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoPayment
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}
