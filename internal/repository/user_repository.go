package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/maheshrc27/todo-api/internal/models"
)

const dateLayout = "2006-01-02"

// windowEnd is subscription_ends as an instant: midnight UTC of that date,
// the same value the driver scans into models.User. Comparing it with a
// timestamptz keeps the session time zone out of the cutoff.
const windowEnd = "(subscription_ends::timestamp AT TIME ZONE 'UTC')"

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, bool, error)
	Create(ctx context.Context, user *models.User) (bool, error)
	ClearLapsedSubscription(ctx context.Context, id string, now time.Time) (bool, error)
	UpdateSubscriptionWindow(ctx context.Context, id string, previous *time.Time, ends time.Time) (*models.User, error)
	DeactivateLapsed(ctx context.Context, id string, now time.Time) (bool, error)
	DeactivateAllLapsed(ctx context.Context, now time.Time) (int64, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
	CountSubscribed(ctx context.Context, now time.Time) (int, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var ends sql.NullTime
	if err := row.Scan(&user.ID, &user.Username, &user.IsSubscribed, &ends); err != nil {
		return nil, err
	}
	if ends.Valid {
		user.SubscriptionEnds = &ends.Time
	}
	return &user, nil
}

func dateParam(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, bool, error) {
	query := "SELECT id, username, is_subscribed, subscription_ends FROM users WHERE id = $1"
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get user %s: %w", id, err)
	}
	return user, true, nil
}

// Create inserts a user row. It reports false when a row with the same id
// already exists, which happens when the provider redelivers an event.
func (r *userRepository) Create(ctx context.Context, user *models.User) (bool, error) {
	query := `
		INSERT INTO users (id, username, is_subscribed, subscription_ends)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, user.ID, user.Username, user.IsSubscribed, dateParam(user.SubscriptionEnds))
	if err != nil {
		return false, fmt.Errorf("insert user %s: %w", user.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert user %s: %w", user.ID, err)
	}
	return n == 1, nil
}

func (r *userRepository) ClearLapsedSubscription(ctx context.Context, id string, now time.Time) (bool, error) {
	query := `
		UPDATE users
		SET is_subscribed = FALSE,
			subscription_ends = NULL
		WHERE id = $1 AND ` + windowEnd + ` < $2
	`
	res, err := r.db.ExecContext(ctx, query, id, now)
	if err != nil {
		return false, fmt.Errorf("clear lapsed subscription for %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("clear lapsed subscription for %s: %w", id, err)
	}
	return n > 0, nil
}

// UpdateSubscriptionWindow sets a new window end only if subscription_ends
// still equals previous, so two concurrent renewals cannot both apply.
func (r *userRepository) UpdateSubscriptionWindow(ctx context.Context, id string, previous *time.Time, ends time.Time) (*models.User, error) {
	query := `
		UPDATE users
		SET is_subscribed = TRUE,
			subscription_ends = $2
		WHERE id = $1 AND subscription_ends IS NOT DISTINCT FROM $3
		RETURNING id, username, is_subscribed, subscription_ends
	`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id, ends.Format(dateLayout), dateParam(previous)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWindowConflict
		}
		return nil, fmt.Errorf("update subscription window for %s: %w", id, err)
	}
	return user, nil
}

// DeactivateLapsed clears only the flag; the end date is kept so the next
// renewal can extend from it.
func (r *userRepository) DeactivateLapsed(ctx context.Context, id string, now time.Time) (bool, error) {
	query := `
		UPDATE users
		SET is_subscribed = FALSE
		WHERE id = $1 AND is_subscribed AND ` + windowEnd + ` < $2
	`
	res, err := r.db.ExecContext(ctx, query, id, now)
	if err != nil {
		return false, fmt.Errorf("deactivate lapsed subscription for %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deactivate lapsed subscription for %s: %w", id, err)
	}
	return n > 0, nil
}

func (r *userRepository) DeactivateAllLapsed(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE users
		SET is_subscribed = FALSE
		WHERE is_subscribed AND ` + windowEnd + ` < $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate lapsed subscriptions: %w", err)
	}
	return res.RowsAffected()
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := `
		SELECT id, username, is_subscribed, subscription_ends
		FROM users
		ORDER BY username
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *userRepository) CountSubscribed(ctx context.Context, now time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM users
		WHERE is_subscribed AND (subscription_ends IS NULL OR ` + windowEnd + ` > $1)
	`
	var n int
	if err := r.db.QueryRowContext(ctx, query, now).Scan(&n); err != nil {
		return 0, fmt.Errorf("count subscribed users: %w", err)
	}
	return n, nil
}
