package persist

import (
	"context"
	"fmt"
)

// EvictionRecord is one audited eviction. This is an append-only log of
// what the janitor did — nothing is ever read back into world state.
type EvictionRecord struct {
	TemplateID int32
	WeaponName string
	DroppedBy  int32
	Reason     string
	AgeSeconds float64
}

type EvictionLogRepo struct {
	db *DB
}

func NewEvictionLogRepo(db *DB) *EvictionLogRepo {
	return &EvictionLogRepo{db: db}
}

// InsertBatch writes a batch of eviction records in a single transaction.
func (r *EvictionLogRepo) InsertBatch(ctx context.Context, records []EvictionRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("eviction log begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range records {
		if _, err := tx.Exec(ctx,
			`INSERT INTO eviction_log (template_id, weapon_name, dropped_by, reason, age_seconds)
			 VALUES ($1, $2, $3, $4, $5)`,
			rec.TemplateID, rec.WeaponName, rec.DroppedBy, rec.Reason, rec.AgeSeconds,
		); err != nil {
			return fmt.Errorf("eviction log insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}
