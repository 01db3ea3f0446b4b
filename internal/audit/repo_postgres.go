package audit

import (
	"context"
	"database/sql"
	"encoding/json"

	"ccc-bridge/pkg/utils"
)

// PostgresRepo persists deliveries in the dispatch_deliveries table.
//
// Schema:
//
//	CREATE TABLE dispatch_deliveries (
//	    id              TEXT PRIMARY KEY,
//	    source          TEXT NOT NULL,
//	    conversation_id TEXT NOT NULL DEFAULT '',
//	    outcomes        JSONB NOT NULL DEFAULT '[]',
//	    received_at     TIMESTAMPTZ NOT NULL
//	);

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, d Delivery) error {
	outcomes, err := json.Marshal(d.Outcomes)
	if err != nil {
		return err
	}
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO dispatch_deliveries (id, source, conversation_id, outcomes, received_at)
			VALUES ($1, $2, $3, $4, $5)`,
			d.ID, d.Source, d.ConversationID, outcomes, d.ReceivedAt,
		)
		return err
	})
}
