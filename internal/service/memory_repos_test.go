package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/maheshrc27/todo-api/internal/models"
	"github.com/maheshrc27/todo-api/internal/repository"
)

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemoryUserRepo(users ...*models.User) *memoryUserRepo {
	r := &memoryUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memoryUserRepo) get(id string) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

func copyUser(u *models.User) *models.User {
	c := *u
	if u.SubscriptionEnds != nil {
		ends := *u.SubscriptionEnds
		c.SubscriptionEnds = &ends
	}
	return &c
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id string) (*models.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, false, nil
	}
	return copyUser(u), true, nil
}

func (r *memoryUserRepo) Create(ctx context.Context, user *models.User) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok {
		return false, nil
	}
	r.users[user.ID] = copyUser(user)
	return true, nil
}

func (r *memoryUserRepo) ClearLapsedSubscription(ctx context.Context, id string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.SubscriptionEnds == nil || !u.SubscriptionEnds.Before(now) {
		return false, nil
	}
	u.IsSubscribed = false
	u.SubscriptionEnds = nil
	return true, nil
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func (r *memoryUserRepo) UpdateSubscriptionWindow(ctx context.Context, id string, previous *time.Time, ends time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || !sameDate(u.SubscriptionEnds, previous) {
		return nil, repository.ErrWindowConflict
	}
	u.IsSubscribed = true
	u.SubscriptionEnds = &ends
	return copyUser(u), nil
}

func (r *memoryUserRepo) DeactivateLapsed(ctx context.Context, id string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || !u.IsSubscribed || !u.SubscriptionLapsed(now) {
		return false, nil
	}
	u.IsSubscribed = false
	return true, nil
}

func (r *memoryUserRepo) DeactivateAllLapsed(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.IsSubscribed && u.SubscriptionLapsed(now) {
			u.IsSubscribed = false
			n++
		}
	}
	return n, nil
}

func (r *memoryUserRepo) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, copyUser(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })
	if offset >= len(all) {
		return []*models.User{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memoryUserRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

func (r *memoryUserRepo) CountSubscribed(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.users {
		if u.HasActiveSubscription(now) {
			n++
		}
	}
	return n, nil
}

type memoryTodoRepo struct {
	mu     sync.Mutex
	users  *memoryUserRepo
	todos  []*models.Todo
	nextID int64
	clock  time.Time
}

func newMemoryTodoRepo(users *memoryUserRepo) *memoryTodoRepo {
	return &memoryTodoRepo{users: users, clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (r *memoryTodoRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

// matches understands the "%literal%" patterns produced by utils.ContainsPattern.
func matches(pattern, title string) bool {
	if pattern == "" {
		return true
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(pattern, "%"), "%")
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
		}
		b.WriteByte(inner[i])
	}
	return strings.Contains(title, b.String())
}

func (r *memoryTodoRepo) filtered(userID, pattern string) []*models.Todo {
	var out []*models.Todo
	for _, t := range r.todos {
		if t.UserID == userID && matches(pattern, t.Title) {
			c := *t
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

func (r *memoryTodoRepo) ListByUserID(ctx context.Context, userID, pattern string, limit, offset int) ([]*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.filtered(userID, pattern)
	if offset >= len(all) {
		return []*models.Todo{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memoryTodoRepo) CountByUserID(ctx context.Context, userID, pattern string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.filtered(userID, pattern)), nil
}

func (r *memoryTodoRepo) CreateWithinQuota(ctx context.Context, todo *models.Todo, limit int, now time.Time) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner := r.users.get(todo.UserID)
	if owner == nil {
		return nil, repository.ErrUserNotFound
	}
	if owner.IsSubscribed && owner.SubscriptionLapsed(now) {
		owner.IsSubscribed = false
	}
	if !owner.CanAddTodo(len(r.filtered(todo.UserID, "")), limit, now) {
		return nil, repository.ErrQuotaExceeded
	}
	r.nextID++
	at := r.tick()
	created := &models.Todo{ID: r.nextID, UserID: todo.UserID, Title: todo.Title, CreatedAt: at, UpdatedAt: at}
	r.todos = append(r.todos, created)
	c := *created
	return &c, nil
}

func (r *memoryTodoRepo) Update(ctx context.Context, todo *models.Todo) (*models.Todo, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.todos {
		if t.ID == todo.ID && t.UserID == todo.UserID {
			t.Title = todo.Title
			t.Completed = todo.Completed
			t.UpdatedAt = r.tick()
			c := *t
			return &c, true, nil
		}
	}
	return nil, false, nil
}

func (r *memoryTodoRepo) Remove(ctx context.Context, id int64, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.todos {
		if t.ID == id && t.UserID == userID {
			r.todos = append(r.todos[:i], r.todos[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryTodoRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.todos), nil
}
