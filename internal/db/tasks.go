package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/dori/homeroom/internal/model"
)

// loadTasks returns every task in stored order with its attachments
func (db *DB) loadTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, title, kind, due_date, created_at, subject_id,
		       is_done, completed_at, is_pinned, recurrence, series_id
		FROM tasks
		ORDER BY position
	`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query tasks")
	}

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, errors.WithStack(err)
	}
	// Close BEFORE the attachment query: with one connection a nested
	// query during iteration deadlocks
	rows.Close()

	attachments, err := db.loadAttachments(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].Attachments = attachments[tasks[i].ID]
		if tasks[i].Attachments == nil {
			tasks[i].Attachments = []model.Attachment{}
		}
	}
	return tasks, nil
}

func (db *DB) loadAttachments(ctx context.Context) (map[string][]model.Attachment, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT task_id, id, original_name, stored_file_name, kind
		FROM task_attachments
		ORDER BY task_id, position
	`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query attachments")
	}
	defer rows.Close()

	out := make(map[string][]model.Attachment)
	for rows.Next() {
		var taskID string
		var a model.Attachment
		if err := rows.Scan(&taskID, &a.ID, &a.OriginalName, &a.StoredFileName, &a.Kind); err != nil {
			return nil, errors.WithStack(err)
		}
		out[taskID] = append(out[taskID], a)
	}
	return out, errors.WithStack(rows.Err())
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTaskRow(s scanner) (*model.Task, error) {
	var t model.Task
	var kind, dueDate, createdAt, recurrence string
	var subjectID, completedAt, seriesID *string
	var isDone, isPinned int

	err := s.Scan(
		&t.ID, &t.Title, &kind, &dueDate, &createdAt, &subjectID,
		&isDone, &completedAt, &isPinned, &recurrence, &seriesID,
	)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	t.Kind = model.Kind(kind)
	if !t.Kind.Valid() {
		t.Kind = model.KindHomework
	}
	t.Recurrence = model.RecurNone
	if r, ok := model.ParseRecurrence(recurrence); ok {
		t.Recurrence = r
	}
	t.IsDone = isDone == 1
	t.IsPinned = isPinned == 1
	t.SubjectID = subjectID
	t.SeriesID = seriesID

	if parsed, err := time.Parse(time.RFC3339Nano, dueDate); err == nil {
		t.DueDate = parsed
	}
	t.CreatedAt = t.DueDate
	if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		t.CreatedAt = parsed
	}
	if completedAt != nil && t.IsDone {
		if parsed, err := time.Parse(time.RFC3339Nano, *completedAt); err == nil {
			t.CompletedAt = &parsed
		}
	}
	t.RepairCompletion()

	return &t, nil
}

// saveTasks replaces the tasks and attachment tables
func saveTasks(ctx context.Context, tx *sql.Tx, tasks []model.Task) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_attachments`); err != nil {
		return errors.Wrap(err, "failed to clear attachments")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return errors.Wrap(err, "failed to clear tasks")
	}

	taskStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (id, title, kind, due_date, created_at, subject_id,
		                   is_done, completed_at, is_pinned, recurrence, series_id, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.WithStack(err)
	}
	defer taskStmt.Close()

	attStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO task_attachments (task_id, position, id, original_name, stored_file_name, kind)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.WithStack(err)
	}
	defer attStmt.Close()

	for pos, t := range tasks {
		var completedAt interface{}
		if t.IsDone && t.CompletedAt != nil {
			completedAt = t.CompletedAt.Format(time.RFC3339Nano)
		}
		_, err := taskStmt.ExecContext(ctx,
			t.ID, t.Title, string(t.Kind),
			t.DueDate.Format(time.RFC3339Nano), t.CreatedAt.Format(time.RFC3339Nano),
			t.SubjectID, boolInt(t.IsDone), completedAt, boolInt(t.IsPinned),
			string(t.Recurrence), t.SeriesID, pos,
		)
		if err != nil {
			return errors.Wrapf(err, "failed to insert task %s", t.ID)
		}

		for i, a := range t.Attachments {
			_, err := attStmt.ExecContext(ctx, t.ID, i, a.ID, a.OriginalName, a.StoredFileName, string(a.Kind))
			if err != nil {
				return errors.Wrapf(err, "failed to insert attachment %s", a.ID)
			}
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
