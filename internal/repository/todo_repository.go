package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/maheshrc27/todo-api/internal/models"
)

type TodoRepository interface {
	ListByUserID(ctx context.Context, userID, pattern string, limit, offset int) ([]*models.Todo, error)
	CountByUserID(ctx context.Context, userID, pattern string) (int, error)
	CreateWithinQuota(ctx context.Context, todo *models.Todo, limit int, now time.Time) (*models.Todo, error)
	Update(ctx context.Context, todo *models.Todo) (*models.Todo, bool, error)
	Remove(ctx context.Context, id int64, userID string) (bool, error)
	Count(ctx context.Context) (int, error)
}

type todoRepository struct {
	db *sql.DB
}

func NewTodoRepository(db *sql.DB) TodoRepository {
	return &todoRepository{db: db}
}

const todoColumns = "id, user_id, title, completed, created_at, updated_at"

func scanTodo(row rowScanner) (*models.Todo, error) {
	var todo models.Todo
	err := row.Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Completed, &todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// ListByUserID returns one page of the user's todos, most recently updated
// first. An empty pattern disables the title filter; otherwise pattern is a
// LIKE pattern using backslash as the escape character.
func (r *todoRepository) ListByUserID(ctx context.Context, userID, pattern string, limit, offset int) ([]*models.Todo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos
		WHERE user_id = $1 AND ($2 = '' OR title LIKE $2 ESCAPE '\')
		ORDER BY updated_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, query, userID, pattern, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list todos for %s: %w", userID, err)
	}
	defer rows.Close()

	todos := make([]*models.Todo, 0, limit)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list todos for %s: %w", userID, err)
	}
	return todos, nil
}

func (r *todoRepository) CountByUserID(ctx context.Context, userID, pattern string) (int, error) {
	query := `SELECT COUNT(*) FROM todos WHERE user_id = $1 AND ($2 = '' OR title LIKE $2 ESCAPE '\')`
	var n int
	if err := r.db.QueryRowContext(ctx, query, userID, pattern).Scan(&n); err != nil {
		return 0, fmt.Errorf("count todos for %s: %w", userID, err)
	}
	return n, nil
}

// CreateWithinQuota inserts todo unless its owner is over the free-tier limit.
// The owner row stays locked for the whole check-and-insert, so concurrent
// creates for one user are serialized.
func (r *todoRepository) CreateWithinQuota(ctx context.Context, todo *models.Todo, limit int, now time.Time) (created *models.Todo, err error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil && !errors.Is(err, ErrQuotaExceeded) {
			tx.Rollback()
		}
	}()

	owner, err := scanUser(tx.QueryRowContext(ctx,
		"SELECT id, username, is_subscribed, subscription_ends FROM users WHERE id = $1 FOR UPDATE", todo.UserID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lock user %s: %w", todo.UserID, err)
	}

	if owner.IsSubscribed && owner.SubscriptionLapsed(now) {
		if _, err = tx.ExecContext(ctx, "UPDATE users SET is_subscribed = FALSE WHERE id = $1", owner.ID); err != nil {
			return nil, fmt.Errorf("deactivate lapsed subscription for %s: %w", owner.ID, err)
		}
		owner.IsSubscribed = false
	}

	var count int
	if err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM todos WHERE user_id = $1", owner.ID).Scan(&count); err != nil {
		return nil, fmt.Errorf("count todos for %s: %w", owner.ID, err)
	}

	if !owner.CanAddTodo(count, limit, now) {
		// keep the lapsed-flag write even though nothing is inserted
		if err = tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		return nil, ErrQuotaExceeded
	}

	created, err = scanTodo(tx.QueryRowContext(ctx,
		"INSERT INTO todos (user_id, title, completed) VALUES ($1, $2, FALSE) RETURNING "+todoColumns,
		owner.ID, todo.Title))
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

// Update overwrites title and completed on a todo owned by todo.UserID.
// It reports false when no such todo exists for that owner.
func (r *todoRepository) Update(ctx context.Context, todo *models.Todo) (*models.Todo, bool, error) {
	query := `
		UPDATE todos
		SET title = $1,
			completed = $2,
			updated_at = NOW()
		WHERE id = $3 AND user_id = $4
		RETURNING ` + todoColumns
	updated, err := scanTodo(r.db.QueryRowContext(ctx, query, todo.Title, todo.Completed, todo.ID, todo.UserID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("update todo %d: %w", todo.ID, err)
	}
	return updated, true, nil
}

func (r *todoRepository) Remove(ctx context.Context, id int64, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM todos WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return false, fmt.Errorf("delete todo %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete todo %d: %w", id, err)
	}
	return n > 0, nil
}

func (r *todoRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM todos").Scan(&n); err != nil {
		return 0, fmt.Errorf("count todos: %w", err)
	}
	return n, nil
}
