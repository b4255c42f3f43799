package repo

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-daystatus/internal/status/entity"
	"github.com/ovaphlow/pitchfork/service-daystatus/pkg/database"
)

// StatusRepo provides data access for the status_data table using sqlx.
type StatusRepo struct {
	db *sqlx.DB
}

func NewStatusRepo(db *sqlx.DB) *StatusRepo { return &StatusRepo{db: db} }

// ListAll returns every record of every user in insertion order, so a
// caller folding them into a map ends up with the latest value per key.
// On Postgres the order is that of sequence ids assigned at insert time,
// which can differ from commit order between overlapping transactions.
func (r *StatusRepo) ListAll(ctx context.Context) ([]entity.Record, error) {
	const q = `SELECT id, user_id, data_key, status_value, updated_by FROM status_data ORDER BY id ASC`
	var rows []entity.Record
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("list status records: %w", err)
	}
	return rows, nil
}

// ReplaceForUser deletes every record owned by userID and inserts one
// record per entry of data, all in one transaction. Entries are written in
// sorted key order. Nothing is visible to readers unless every statement
// succeeds.
func (r *StatusRepo) ReplaceForUser(ctx context.Context, userID string, data map[string]string) error {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return database.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM status_data WHERE user_id = ?`), userID); err != nil {
			return fmt.Errorf("delete status records: %w", err)
		}
		if len(keys) == 0 {
			return nil
		}
		stmt, err := tx.PreparexContext(ctx, tx.Rebind(
			`INSERT INTO status_data (user_id, data_key, status_value, updated_by) VALUES (?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("prepare status insert: %w", err)
		}
		defer stmt.Close()
		for _, k := range keys {
			if _, err := stmt.ExecContext(ctx, userID, k, data[k], userID); err != nil {
				return fmt.Errorf("insert status %q: %w", k, err)
			}
		}
		return nil
	})
}
