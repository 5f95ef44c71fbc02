package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	applog "github.com/dori/homeroom/internal/log"
	"github.com/dori/homeroom/internal/model"
	"github.com/dori/homeroom/internal/stats"
	"github.com/dori/homeroom/internal/store"
)

func init() {
	applog.Discard()
}

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleSnapshot() store.Snapshot {
	loc := time.FixedZone("EST", -5*3600)
	due := time.Date(2026, 3, 2, 17, 0, 0, 0, loc)
	done := due.Add(-time.Hour)
	shared := model.Attachment{ID: "a1", OriginalName: "rubric.pdf", StoredFileName: "blob.pdf", Kind: model.AttachmentFile}

	return store.Snapshot{
		Tasks: []model.Task{
			{
				ID: "t1", Title: "Essay", Kind: model.KindHomework,
				DueDate: due, CreatedAt: due.Add(-48 * time.Hour),
				SubjectID: model.StringPtr("eng"), Recurrence: model.RecurWeekly, SeriesID: model.StringPtr("s1"),
				Attachments: []model.Attachment{shared, {ID: "a2", OriginalName: "memo.m4a", StoredFileName: "memo.m4a", Kind: model.AttachmentAudio}},
			},
			{
				ID: "t2", Title: "Essay", Kind: model.KindHomework,
				DueDate: due.AddDate(0, 0, 7), CreatedAt: due.Add(-48 * time.Hour),
				SubjectID: model.StringPtr("eng"), Recurrence: model.RecurWeekly, SeriesID: model.StringPtr("s1"),
				IsDone: true, CompletedAt: &done, IsPinned: true,
				Attachments: []model.Attachment{shared},
			},
			{
				ID: "t3", Title: "Call", Kind: model.KindReminder,
				DueDate: due, CreatedAt: due, Recurrence: model.RecurNone,
				Attachments: []model.Attachment{},
			},
		},
		Subjects:   []model.Subject{{ID: "eng", Name: "English", Color: model.Color{R: 0.5, G: 0.25, B: 1, A: 1}}},
		Checkpoint: stats.FromUnixNano(1_760_000_000_123_456_789),
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	want := sampleSnapshot()

	if err := db.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got := db.Load(ctx)

	if len(got.Tasks) != len(want.Tasks) {
		t.Fatalf("got %d tasks, want %d", len(got.Tasks), len(want.Tasks))
	}
	for i := range want.Tasks {
		w, g := want.Tasks[i], got.Tasks[i]
		if g.ID != w.ID || g.Title != w.Title || g.Kind != w.Kind || g.Recurrence != w.Recurrence {
			t.Errorf("task %d: got %+v, want %+v", i, g, w)
		}
		if !g.DueDate.Equal(w.DueDate) || !g.CreatedAt.Equal(w.CreatedAt) {
			t.Errorf("task %s: times differ: got %v/%v", w.ID, g.DueDate, g.CreatedAt)
		}
		if g.IsDone != w.IsDone || g.IsPinned != w.IsPinned {
			t.Errorf("task %s: flags differ", w.ID)
		}
		if (g.CompletedAt == nil) != (w.CompletedAt == nil) {
			t.Errorf("task %s: completed_at presence differs", w.ID)
		}
		if len(g.Attachments) != len(w.Attachments) {
			t.Fatalf("task %s: got %d attachments, want %d", w.ID, len(g.Attachments), len(w.Attachments))
		}
		for j := range w.Attachments {
			if g.Attachments[j] != w.Attachments[j] {
				t.Errorf("task %s attachment %d: got %+v, want %+v", w.ID, j, g.Attachments[j], w.Attachments[j])
			}
		}
	}
	if got.Tasks[2].SubjectID != nil || got.Tasks[2].SeriesID != nil {
		t.Errorf("nullable columns should load as nil")
	}
	if len(got.Subjects) != 1 || got.Subjects[0] != want.Subjects[0] {
		t.Errorf("subjects: got %+v", got.Subjects)
	}
	if got.Checkpoint.UnixNano() != 1_760_000_000_123_456_789 {
		t.Errorf("checkpoint: got %d", got.Checkpoint.UnixNano())
	}

	// siblings sharing one stored file keep one row each
	var shared int
	if err := db.QueryRow(`SELECT COUNT(*) FROM task_attachments WHERE stored_file_name = ?`, "blob.pdf").Scan(&shared); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if shared != 2 {
		t.Errorf("blob.pdf: got %d rows, want 2", shared)
	}
}

func TestSaveReplacesPreviousState(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	if err := db.Save(ctx, sampleSnapshot()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := db.Save(ctx, store.Snapshot{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got := db.Load(ctx)
	if len(got.Tasks) != 0 || len(got.Subjects) != 0 || got.Checkpoint.IsSet() {
		t.Errorf("expected empty state, got %+v", got)
	}
	if got.Tasks == nil || got.Subjects == nil {
		t.Errorf("empty collections should not be nil")
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM task_attachments`).Scan(&n); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("attachments left behind: %d", n)
	}
}

// TestLoadNoDeadlock is a regression test for nested queries during rows
// iteration: with SetMaxOpenConns(1) a query issued while another result
// set is open waits forever for the only connection.
func TestLoadNoDeadlock(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	if err := db.Save(ctx, sampleSnapshot()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	done := make(chan store.Snapshot, 1)
	go func() {
		done <- db.Load(ctx)
	}()

	select {
	case snap := <-done:
		if len(snap.Tasks) != 3 {
			t.Errorf("got %d tasks, want 3", len(snap.Tasks))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Test timed out - possible deadlock detected")
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.Save(context.Background(), sampleSnapshot()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db.Close()
	if got := db.Load(context.Background()); len(got.Tasks) != 3 {
		t.Errorf("got %d tasks after reopen, want 3", len(got.Tasks))
	}
}

func TestLoadRepairsDoneWithoutCompletedAt(t *testing.T) {
	db := openTemp(t)
	_, err := db.Exec(`
		INSERT INTO tasks (id, title, due_date, created_at, is_done)
		VALUES ('old', 'Essay', '2026-03-02T17:00:00Z', '2026-02-20T08:00:00Z', 1)
	`)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got := db.Load(context.Background())
	if len(got.Tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(got.Tasks))
	}
	task := got.Tasks[0]
	if !task.IsDone || task.CompletedAt == nil {
		t.Fatalf("done task should carry a completion time, got %+v", task)
	}
	if !task.CompletedAt.Equal(task.CreatedAt) {
		t.Errorf("completed_at: got %v, want created_at %v", task.CompletedAt, task.CreatedAt)
	}
}
