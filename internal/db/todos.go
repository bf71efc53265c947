package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dori/tempo/internal/model"
)

const todoColumns = `id, title, description, status, remind_in, created_at,
	       updated_at, in_progress, started_at, ended_at`

// Add inserts a new todo and returns the assigned id. Any id on t is ignored.
func (s *Store) Add(ctx context.Context, t model.Todo) (int64, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO todos (title, description, status, remind_in, created_at,
		                   updated_at, in_progress, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.Title, t.Description, boolToInt(t.Status), nullableTime(t.RemindIn),
		model.FormatTimestamp(t.CreatedAt), model.FormatTimestamp(t.UpdatedAt),
		boolToInt(t.InProgress), nullableTime(t.StartedAt), nullableTime(t.EndedAt))
	if err != nil {
		return 0, fmt.Errorf("insert todo: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert todo: %w", err)
	}
	return id, nil
}

// GetByID returns a single todo by id
func (s *Store) GetByID(ctx context.Context, id int64) (model.Todo, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return model.Todo{}, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = ?`, id)
	t, err := scanTodoRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Todo{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("get todo %d: %w", id, err)
	}
	return t, nil
}

// GetAll returns every todo in ascending id order. Callers sort for display.
func (s *Store) GetAll(ctx context.Context) ([]model.Todo, error) {
	return s.query(ctx, `SELECT `+todoColumns+` FROM todos ORDER BY id`)
}

// Update fully replaces the stored record with t
func (s *Store) Update(ctx context.Context, t model.Todo) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE todos SET
			title = ?, description = ?, status = ?, remind_in = ?, created_at = ?,
			updated_at = ?, in_progress = ?, started_at = ?, ended_at = ?
		WHERE id = ?
	`, t.Title, t.Description, boolToInt(t.Status), nullableTime(t.RemindIn),
		model.FormatTimestamp(t.CreatedAt), model.FormatTimestamp(t.UpdatedAt),
		boolToInt(t.InProgress), nullableTime(t.StartedAt), nullableTime(t.EndedAt), t.ID)
	if err != nil {
		return fmt.Errorf("update todo %d: %w", t.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update todo %d: %w", t.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, t.ID)
	}
	return nil
}

// DeleteByID deletes a todo. Deleting a missing id is not an error.
func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	return nil
}

// FindByStatus returns completed or uncompleted todos
func (s *Store) FindByStatus(ctx context.Context, done bool) ([]model.Todo, error) {
	return s.query(ctx, `SELECT `+todoColumns+` FROM todos WHERE status = ? ORDER BY id`, boolToInt(done))
}

// FindInProgress returns todos with a running session
func (s *Store) FindInProgress(ctx context.Context) ([]model.Todo, error) {
	return s.query(ctx, `SELECT `+todoColumns+` FROM todos WHERE in_progress = 1 ORDER BY id`)
}

// FindUpdatedOn returns todos whose updatedAt falls on the given date
// (YYYY-MM-DD, UTC)
func (s *Store) FindUpdatedOn(ctx context.Context, dateKey string) ([]model.Todo, error) {
	day, err := time.Parse(model.DateLayout, dateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", dateKey, err)
	}
	from := model.FormatTimestamp(day)
	to := model.FormatTimestamp(day.AddDate(0, 0, 1))

	// Fixed-width timestamps compare correctly as strings
	return s.query(ctx, `
		SELECT `+todoColumns+` FROM todos
		WHERE updated_at >= ? AND updated_at < ?
		ORDER BY id
	`, from, to)
}

func (s *Store) query(ctx context.Context, q string, args ...interface{}) ([]model.Todo, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		t, err := scanTodoRow(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// Helper functions

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTodoRow(s scanner) (model.Todo, error) {
	var t model.Todo
	var status, inProgress int
	var createdAt, updatedAt string
	var remindIn, startedAt, endedAt *string

	err := s.Scan(
		&t.ID, &t.Title, &t.Description, &status, &remindIn,
		&createdAt, &updatedAt, &inProgress, &startedAt, &endedAt,
	)
	if err != nil {
		return model.Todo{}, err
	}

	t.Status = status == 1
	t.InProgress = inProgress == 1

	if t.CreatedAt, err = model.ParseTimestamp(createdAt); err != nil {
		return model.Todo{}, err
	}
	if t.UpdatedAt, err = model.ParseTimestamp(updatedAt); err != nil {
		return model.Todo{}, err
	}
	if t.RemindIn, err = parseNullable(remindIn); err != nil {
		return model.Todo{}, err
	}
	if t.StartedAt, err = parseNullable(startedAt); err != nil {
		return model.Todo{}, err
	}
	if t.EndedAt, err = parseNullable(endedAt); err != nil {
		return model.Todo{}, err
	}

	return t, nil
}

func parseNullable(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := model.ParseTimestamp(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return model.FormatTimestamp(*t)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
