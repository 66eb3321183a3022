package db_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"golang.org/x/crypto/bcrypt"

	"github.com/pedrovi35/EduSync-Pro/internal/apperr"
	"github.com/pedrovi35/EduSync-Pro/internal/db"
	"github.com/pedrovi35/EduSync-Pro/internal/models"
)

const testEmail = "ada@example.com"

// openTestDB opens a fresh SQLite database in a temp directory and registers
// t.Cleanup to close it.
func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"), db.Options{HashCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("openTestDB: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// registered opens a database with one account already registered.
func registered(t *testing.T) *db.DB {
	t.Helper()
	d := openTestDB(t)
	if _, err := d.Register(context.Background(), "Ada", testEmail, "s3cret"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return d
}

// richSnapshot returns a snapshot touching every persisted field.
func richSnapshot() *models.Snapshot {
	now := time.Date(2024, 6, 1, 10, 30, 0, 123, time.UTC)
	end := now.Add(time.Hour)
	snap := models.NewSnapshot(now)
	snap.Name = "Ada"
	snap.XP = 260
	snap.Level = 2
	snap.PomodoroSessionsDone = 5
	snap.Notes = "Revisar cálculo — capítulo 3"
	unlocked := now.Add(-time.Minute)
	snap.Achievements["first_task"] = models.AchievementState{Unlocked: true, UnlockedAt: &unlocked}
	snap.Achievements["pomodoro_pro"] = models.AchievementState{Unlocked: true, UnlockedAt: &now}
	snap.TaskLists.Doing = []models.Task{{ID: "doing-1", Content: "Read chapter 4", Status: models.StatusDoing, CreatedAt: now}}
	snap.TaskLists.Done = []models.Task{{ID: "done-1", Content: "Solve set 1", Status: models.StatusDone, CreatedAt: now, CompletedOnce: true}}
	snap.Flashcards = append(snap.Flashcards, models.Flashcard{ID: "card-2", Front: "2+2", Back: "4", CreatedAt: now})
	snap.CalendarEvents = []models.CalendarEvent{
		{ID: "ev-1", Title: "Exam", Start: now, End: &end},
		{ID: "ev-2", Title: "Holiday", Start: now, AllDay: true},
	}
	return snap
}

// ---------------------------------------------------------------------------
// Open
// ---------------------------------------------------------------------------

func TestOpen_HappyPath(t *testing.T) {
	c := qt.New(t)
	d := openTestDB(t)

	v, ok, err := d.GetMeta("schema_version")
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(v, qt.Equals, "2")
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	d, err := db.Open(path, db.Options{HashCost: bcrypt.MinCost})
	c.Assert(err, qt.IsNil)
	_, err = d.Register(ctx, "Ada", testEmail, "pw")
	c.Assert(err, qt.IsNil)
	c.Assert(d.Close(), qt.IsNil)

	d, err = db.Open(path, db.Options{HashCost: bcrypt.MinCost})
	c.Assert(err, qt.IsNil)
	defer d.Close()
	_, err = d.Authenticate(ctx, testEmail, "pw")
	c.Assert(err, qt.IsNil)
}

// ---------------------------------------------------------------------------
// Meta
// ---------------------------------------------------------------------------

func TestGetMeta_SetMeta_HappyPath(t *testing.T) {
	c := qt.New(t)
	d := openTestDB(t)

	_, ok, err := d.GetMeta("missing")
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)

	c.Assert(d.SetMeta("k", "v1"), qt.IsNil)
	c.Assert(d.SetMeta("k", "v2"), qt.IsNil)
	v, ok, err := d.GetMeta("k")
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(v, qt.Equals, "v2")
}

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

func TestRegister_HappyPath(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	d := openTestDB(t)

	acct, err := d.Register(ctx, "  Ada ", "Ada@Example.com", "s3cret")
	c.Assert(err, qt.IsNil)
	c.Assert(acct.Name, qt.Equals, "Ada")
	c.Assert(acct.Email, qt.Equals, testEmail)
	c.Assert(acct.ID, qt.Not(qt.Equals), "")

	got, err := d.Authenticate(ctx, testEmail, "s3cret")
	c.Assert(err, qt.IsNil)
	c.Assert(got.ID, qt.Equals, acct.ID)
}

func TestRegister_FailurePath(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	tests := []struct {
		name, user, email, password string
		check                       func(error) bool
	}{
		{"empty name", "", "a@b.c", "pw", apperr.IsValidation},
		{"empty email", "Ada", "", "pw", apperr.IsValidation},
		{"empty password", "Ada", "a@b.c", "", apperr.IsValidation},
		{"malformed email", "Ada", "not-an-email", "pw", apperr.IsValidation},
		{"duplicate email", "Other", testEmail, "pw", apperr.IsConflict},
		{"duplicate email differing in case", "Other", "ADA@example.com", "pw", apperr.IsConflict},
	}
	for _, tt := range tests {
		c.Run(tt.name, func(c *qt.C) {
			d := registered(t)
			_, err := d.Register(ctx, tt.user, tt.email, tt.password)
			c.Assert(err, qt.IsNotNil)
			c.Assert(tt.check(err), qt.IsTrue, qt.Commentf("err=%v", err))
		})
	}
}

func TestAuthenticate_FailurePath(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	d := registered(t)

	_, err := d.Authenticate(ctx, testEmail, "wrong")
	c.Assert(apperr.IsNotFound(err), qt.IsTrue)

	_, err = d.Authenticate(ctx, "nobody@example.com", "s3cret")
	c.Assert(apperr.IsNotFound(err), qt.IsTrue)
}

// ---------------------------------------------------------------------------
// Snapshot persistence
// ---------------------------------------------------------------------------

func TestLoad_FreshAccountIsEmpty(t *testing.T) {
	c := qt.New(t)
	d := registered(t)

	snap, err := d.Load(context.Background(), testEmail)
	c.Assert(err, qt.IsNil)
	c.Assert(snap, qt.IsNil)
}

func TestLoad_UnknownUserIsNotFound(t *testing.T) {
	c := qt.New(t)
	d := openTestDB(t)

	_, err := d.Load(context.Background(), "ghost@example.com")
	c.Assert(apperr.IsNotFound(err), qt.IsTrue)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	d := registered(t)

	want := richSnapshot()
	c.Assert(d.Save(ctx, testEmail, want), qt.IsNil)

	got, err := d.Load(ctx, testEmail)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, want)

	c.Run("second save fully overwrites", func(c *qt.C) {
		want.TaskLists.Doing = []models.Task{}
		want.Flashcards = want.Flashcards[:1]
		want.CalendarEvents = []models.CalendarEvent{}
		c.Assert(d.Save(ctx, testEmail, want), qt.IsNil)

		got, err := d.Load(ctx, testEmail)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.DeepEquals, want)
	})
}

func TestIdentity_MixedCaseEmail(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	d := openTestDB(t)

	const typed = "  Ada@Example.COM "
	acct, err := d.Register(ctx, "Ada", typed, "s3cret")
	c.Assert(err, qt.IsNil)
	c.Assert(acct.Email, qt.Equals, testEmail)

	snap, err := d.Load(ctx, typed)
	c.Assert(err, qt.IsNil)
	c.Assert(snap, qt.IsNil)

	want := richSnapshot()
	c.Assert(d.Save(ctx, typed, want), qt.IsNil)
	got, err := d.Load(ctx, testEmail)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, want)

	_, err = d.Authenticate(ctx, "ADA@example.com", "s3cret")
	c.Assert(err, qt.IsNil)
	c.Assert(d.Reset(ctx, typed), qt.IsNil)
}

func TestSave_UnknownUserIsNotFound(t *testing.T) {
	c := qt.New(t)
	d := openTestDB(t)

	err := d.Save(context.Background(), "ghost@example.com", richSnapshot())
	c.Assert(apperr.IsNotFound(err), qt.IsTrue)
}

func TestSave_IsAtomic(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	d := registered(t)

	good := richSnapshot()
	c.Assert(d.Save(ctx, testEmail, good), qt.IsNil)

	// Two tasks sharing an id violate the primary key half way through the
	// rewrite; nothing from the failed save may become visible.
	bad := richSnapshot()
	bad.XP = 9999
	bad.TaskLists.Todo = append(bad.TaskLists.Todo, models.Task{ID: "done-1", Content: "dup", CreatedAt: time.Now()})
	c.Assert(d.Save(ctx, testEmail, bad), qt.IsNotNil)

	got, err := d.Load(ctx, testEmail)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, good)
}

func TestReset_HappyPath(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	d := registered(t)

	c.Assert(d.Save(ctx, testEmail, richSnapshot()), qt.IsNil)
	c.Assert(d.Reset(ctx, testEmail), qt.IsNil)

	snap, err := d.Load(ctx, testEmail)
	c.Assert(err, qt.IsNil)
	c.Assert(snap, qt.IsNil)

	// The account survives a progress reset.
	_, err = d.Authenticate(ctx, testEmail, "s3cret")
	c.Assert(err, qt.IsNil)
}

func TestReset_FailurePath(t *testing.T) {
	c := qt.New(t)
	d := openTestDB(t)

	err := d.Reset(context.Background(), "ghost@example.com")
	c.Assert(apperr.IsNotFound(err), qt.IsTrue)
}
