// Package postgres is the durable WatermarkStore implementation for
// the Projection Manager (spec.md §4.8: "maintains per-projection
// watermarks in an external durable store").
package postgres

import (
	"context"

	dbconn "github.com/lerianstudio/eventledger/internal/adapters/postgres"
	"github.com/lerianstudio/eventledger/internal/platform/apperr"
	"github.com/lerianstudio/eventledger/internal/projection"
)

// WatermarkStore persists watermarks in a single small table keyed by
// projection name.
type WatermarkStore struct {
	conn *dbconn.Connection
}

var _ projection.WatermarkStore = (*WatermarkStore)(nil)

// New builds a WatermarkStore over conn.
func New(conn *dbconn.Connection) *WatermarkStore {
	return &WatermarkStore{conn: conn}
}

// Get implements projection.WatermarkStore.
func (s *WatermarkStore) Get(ctx context.Context, projectionName string) (int64, error) {
	pool, err := s.conn.Pool(ctx)
	if err != nil {
		return 0, apperr.StorageError(err)
	}

	var sequence int64

	err = pool.QueryRow(ctx, `SELECT sequence FROM projection_watermarks WHERE name = $1`, projectionName).Scan(&sequence)
	if err != nil {
		return 0, nil //nolint:nilerr // no row yet means watermark 0, not an error
	}

	return sequence, nil
}

// Set implements projection.WatermarkStore.
func (s *WatermarkStore) Set(ctx context.Context, projectionName string, sequence int64) error {
	pool, err := s.conn.Pool(ctx)
	if err != nil {
		return apperr.StorageError(err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO projection_watermarks (name, sequence) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET sequence = EXCLUDED.sequence`,
		projectionName, sequence,
	)
	if err != nil {
		return apperr.StorageError(err)
	}

	return nil
}
