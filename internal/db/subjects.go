package db

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/pkg/errors"

	"github.com/dori/homeroom/internal/model"
	"github.com/dori/homeroom/internal/stats"
)

// checkpointKey holds the reset instant as epoch nanoseconds
const checkpointKey = "stats_checkpoint_ns"

// loadSubjects returns all subjects in stored order
func (db *DB) loadSubjects(ctx context.Context) ([]model.Subject, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, color_r, color_g, color_b, color_a
		FROM subjects
		ORDER BY position
	`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query subjects")
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.Color.R, &s.Color.G, &s.Color.B, &s.Color.A); err != nil {
			return nil, errors.WithStack(err)
		}
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return subjects, nil
}

func saveSubjects(ctx context.Context, tx *sql.Tx, subjects []model.Subject) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM subjects`); err != nil {
		return errors.Wrap(err, "failed to clear subjects")
	}
	for pos, s := range subjects {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO subjects (id, name, color_r, color_g, color_b, color_a, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, s.ID, s.Name, s.Color.R, s.Color.G, s.Color.B, s.Color.A, pos)
		if err != nil {
			return errors.Wrapf(err, "failed to insert subject %s", s.Name)
		}
	}
	return nil
}

// loadCheckpoint reads the stats checkpoint from settings; missing means unset
func (db *DB) loadCheckpoint(ctx context.Context) (stats.Checkpoint, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, checkpointKey).Scan(&value)
	if err == sql.ErrNoRows {
		return stats.Checkpoint{}, nil
	}
	if err != nil {
		return stats.Checkpoint{}, errors.WithStack(err)
	}
	ns, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return stats.Checkpoint{}, errors.Wrapf(err, "bad checkpoint %q", value)
	}
	return stats.FromUnixNano(ns), nil
}

func saveCheckpoint(ctx context.Context, tx *sql.Tx, cp stats.Checkpoint) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, checkpointKey, strconv.FormatInt(cp.UnixNano(), 10))
	return errors.Wrap(err, "failed to save checkpoint")
}
