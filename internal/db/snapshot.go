package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pedrovi35/EduSync-Pro/internal/apperr"
	"github.com/pedrovi35/EduSync-Pro/internal/models"
)

// queryer is satisfied by both *sql.Conn and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// userID resolves an email to its user id, failing with NotFound.
func userID(ctx context.Context, q queryer, email string) (id string, saved bool, err error) {
	var savedAt sql.NullString
	err = q.QueryRowContext(ctx,
		`SELECT id, progress_saved_at FROM users WHERE email = ?`, normalizeEmail(email),
	).Scan(&id, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, apperr.NewNotFoundError(fmt.Sprintf("user %q", email))
	}
	if err != nil {
		return "", false, err
	}
	return id, savedAt.Valid, nil
}

// Load reads the snapshot of the user with the given email.
// It returns (nil, nil) when the account exists but has no saved progress
// yet, and a NotFound error when there is no such account.
func (d *DB) Load(ctx context.Context, email string) (*models.Snapshot, error) {
	conn, err := d.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	uid, saved, err := userID(ctx, conn, email)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	if !saved {
		return nil, nil
	}

	snap := &models.Snapshot{}
	err = conn.QueryRowContext(ctx,
		`SELECT name, xp, level, pomodoro_sessions_done, notes FROM users WHERE id = ?`, uid,
	).Scan(&snap.Name, &snap.XP, &snap.Level, &snap.PomodoroSessionsDone, &snap.Notes)
	if err != nil {
		return nil, fmt.Errorf("Load user: %w", err)
	}

	if err := loadAchievements(ctx, conn, uid, snap); err != nil {
		return nil, fmt.Errorf("Load achievements: %w", err)
	}
	if err := loadTasks(ctx, conn, uid, snap); err != nil {
		return nil, fmt.Errorf("Load tasks: %w", err)
	}
	if err := loadFlashcards(ctx, conn, uid, snap); err != nil {
		return nil, fmt.Errorf("Load flashcards: %w", err)
	}
	if err := loadEvents(ctx, conn, uid, snap); err != nil {
		return nil, fmt.Errorf("Load calendar: %w", err)
	}
	snap.Normalize()
	return snap, nil
}

func loadAchievements(ctx context.Context, q queryer, uid string, snap *models.Snapshot) error {
	rows, err := q.QueryContext(ctx,
		`SELECT achievement_id, unlocked_at FROM achievements WHERE user_id = ?`, uid)
	if err != nil {
		return err
	}
	defer rows.Close()

	snap.Achievements = map[string]models.AchievementState{}
	for rows.Next() {
		var id, at string
		if err := rows.Scan(&id, &at); err != nil {
			return err
		}
		ts, err := parseTime(at)
		if err != nil {
			return apperr.NewCorruptError("achievement timestamp", err)
		}
		snap.Achievements[id] = models.AchievementState{Unlocked: true, UnlockedAt: &ts}
	}
	return rows.Err()
}

func loadTasks(ctx context.Context, q queryer, uid string, snap *models.Snapshot) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, content, status, completed_once, created_at FROM tasks
		 WHERE user_id = ? ORDER BY position, created_at`, uid)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t models.Task
		var status, created string
		var once int
		if err := rows.Scan(&t.ID, &t.Content, &status, &once, &created); err != nil {
			return err
		}
		st, ok := models.ParseStatus(status)
		if !ok {
			return apperr.NewCorruptError(fmt.Sprintf("task %s status %q", t.ID, status), nil)
		}
		if t.CreatedAt, err = parseTime(created); err != nil {
			return apperr.NewCorruptError("task timestamp", err)
		}
		t.Status = st
		t.CompletedOnce = once != 0
		col := snap.TaskLists.Column(st)
		*col = append(*col, t)
	}
	return rows.Err()
}

func loadFlashcards(ctx context.Context, q queryer, uid string, snap *models.Snapshot) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, front, back, created_at FROM flashcards
		 WHERE user_id = ? ORDER BY position, created_at`, uid)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var f models.Flashcard
		var created string
		if err := rows.Scan(&f.ID, &f.Front, &f.Back, &created); err != nil {
			return err
		}
		if f.CreatedAt, err = parseTime(created); err != nil {
			return apperr.NewCorruptError("flashcard timestamp", err)
		}
		snap.Flashcards = append(snap.Flashcards, f)
	}
	return rows.Err()
}

func loadEvents(ctx context.Context, q queryer, uid string, snap *models.Snapshot) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, title, start_at, end_at, all_day FROM calendar_events
		 WHERE user_id = ? ORDER BY position`, uid)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ev models.CalendarEvent
		var start string
		var end sql.NullString
		var allDay int
		if err := rows.Scan(&ev.ID, &ev.Title, &start, &end, &allDay); err != nil {
			return err
		}
		if ev.Start, err = parseTime(start); err != nil {
			return apperr.NewCorruptError("event start", err)
		}
		if end.Valid {
			t, err := parseTime(end.String)
			if err != nil {
				return apperr.NewCorruptError("event end", err)
			}
			ev.End = &t
		}
		ev.AllDay = allDay != 0
		snap.CalendarEvents = append(snap.CalendarEvents, ev)
	}
	return rows.Err()
}

// Save overwrites the stored snapshot of the user with the given email.
// The user row update and every child row rewrite share one transaction.
func (d *DB) Save(ctx context.Context, email string, snap *models.Snapshot) error {
	conn, err := d.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	err = withTx(ctx, conn, func(tx *sql.Tx) error {
		uid, _, err := userID(ctx, tx, email)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE users SET name = ?, xp = ?, level = ?, pomodoro_sessions_done = ?,
			       notes = ?, progress_saved_at = ?
			WHERE id = ?`,
			snap.Name, snap.XP, snap.Level, snap.PomodoroSessionsDone,
			snap.Notes, formatTime(time.Now()), uid,
		); err != nil {
			return fmt.Errorf("update user: %w", err)
		}

		if err := clearChildren(ctx, tx, uid); err != nil {
			return err
		}

		for id, st := range snap.Achievements {
			if !st.Unlocked {
				continue
			}
			at := time.Now()
			if st.UnlockedAt != nil {
				at = *st.UnlockedAt
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO achievements (user_id, achievement_id, unlocked_at) VALUES (?, ?, ?)`,
				uid, id, formatTime(at),
			); err != nil {
				return fmt.Errorf("insert achievement: %w", err)
			}
		}

		pos := 0
		for _, st := range models.Statuses {
			for _, t := range *snap.TaskLists.Column(st) {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO tasks (id, user_id, content, status, completed_once, position, created_at)
					VALUES (?, ?, ?, ?, ?, ?, ?)`,
					t.ID, uid, t.Content, string(st), boolToInt(t.CompletedOnce), pos, formatTime(t.CreatedAt),
				); err != nil {
					return fmt.Errorf("insert task: %w", err)
				}
				pos++
			}
		}

		for i, f := range snap.Flashcards {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO flashcards (id, user_id, front, back, position, created_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				f.ID, uid, f.Front, f.Back, i, formatTime(f.CreatedAt),
			); err != nil {
				return fmt.Errorf("insert flashcard: %w", err)
			}
		}

		for i, ev := range snap.CalendarEvents {
			var end sql.NullString
			if ev.End != nil {
				end = sql.NullString{String: formatTime(*ev.End), Valid: true}
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO calendar_events (id, user_id, title, start_at, end_at, all_day, position)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				ev.ID, uid, ev.Title, formatTime(ev.Start), end, boolToInt(ev.AllDay), i,
			); err != nil {
				return fmt.Errorf("insert calendar event: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}

// Reset removes every progress row of the user and clears the progress
// columns, leaving the account itself in place. A subsequent Load returns
// (nil, nil) so the caller falls back to first-run defaults.
func (d *DB) Reset(ctx context.Context, email string) error {
	conn, err := d.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	err = withTx(ctx, conn, func(tx *sql.Tx) error {
		uid, _, err := userID(ctx, tx, email)
		if err != nil {
			return err
		}
		if err := clearChildren(ctx, tx, uid); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE users SET xp = 0, level = 0, pomodoro_sessions_done = 0,
			       notes = '', progress_saved_at = NULL
			WHERE id = ?`, uid)
		return err
	})
	if err != nil {
		return fmt.Errorf("Reset: %w", err)
	}
	return nil
}

func clearChildren(ctx context.Context, tx *sql.Tx, uid string) error {
	for _, table := range []string{"achievements", "tasks", "flashcards", "calendar_events"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE user_id = ?", uid); err != nil { // #nosec G202 -- table names are hardcoded
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
