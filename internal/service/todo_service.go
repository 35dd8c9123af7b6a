package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/maheshrc27/todo-api/internal/models"
	"github.com/maheshrc27/todo-api/internal/repository"
	"github.com/maheshrc27/todo-api/internal/transfer"
	"github.com/maheshrc27/todo-api/pkg/utils"
	"go.uber.org/zap"
)

const (
	DefaultTodoQuota    = 3
	DefaultTodosPerPage = 10
)

type TodoService interface {
	List(ctx context.Context, userID string, q transfer.TodoListQuery) (*models.TodoPage, error)
	Create(ctx context.Context, userID, title string) (*models.Todo, error)
	Update(ctx context.Context, userID string, id int64, title string, completed bool) (*models.Todo, error)
	Remove(ctx context.Context, userID string, id int64) error
	QuotaMessage() string
}

type todoService struct {
	t        repository.TodoRepository
	log      *zap.Logger
	quota    int
	pageSize int
	now      func() time.Time
}

// NewTodoService falls back to the default quota and page size when either is not positive.
func NewTodoService(t repository.TodoRepository, log *zap.Logger, quota, pageSize int) TodoService {
	if quota <= 0 {
		quota = DefaultTodoQuota
	}
	if pageSize <= 0 {
		pageSize = DefaultTodosPerPage
	}
	return &todoService{
		t:        t,
		log:      log,
		quota:    quota,
		pageSize: pageSize,
		now:      time.Now,
	}
}

func (s *todoService) List(ctx context.Context, userID string, q transfer.TodoListQuery) (*models.TodoPage, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}

	pattern := ""
	if q.SearchTerm != "" {
		pattern = utils.ContainsPattern(q.SearchTerm)
	}

	total, err := s.t.CountByUserID(ctx, userID, pattern)
	if err != nil {
		s.log.Error("count todos", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := &models.TodoPage{
		Todos:      []*models.Todo{},
		TotalTodos: total,
		TotalPages: models.TotalPages(total, s.pageSize),
	}
	// Pages past the end are empty; checking first keeps the offset from overflowing.
	if page > result.TotalPages {
		return result, nil
	}

	result.Todos, err = s.t.ListByUserID(ctx, userID, pattern, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		s.log.Error("list todos", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return result, nil
}

func validTitle(title string) bool {
	return strings.TrimSpace(title) != "" && utf8.RuneCountInString(title) <= models.MaxTodoTitleLength
}

func (s *todoService) Create(ctx context.Context, userID, title string) (*models.Todo, error) {
	if !validTitle(title) {
		return nil, fmt.Errorf("%w: title must be 1-%d characters", ErrInvalidInput, models.MaxTodoTitleLength)
	}

	todo, err := s.t.CreateWithinQuota(ctx, &models.Todo{UserID: userID, Title: title}, s.quota, s.now())
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) || errors.Is(err, ErrUserNotFound) {
			s.log.Info("todo rejected", zap.String("user_id", userID), zap.Error(err))
			return nil, err
		}
		s.log.Error("create todo", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return todo, nil
}

func (s *todoService) Update(ctx context.Context, userID string, id int64, title string, completed bool) (*models.Todo, error) {
	if id <= 0 || !validTitle(title) {
		return nil, ErrInvalidInput
	}

	todo, ok, err := s.t.Update(ctx, &models.Todo{ID: id, UserID: userID, Title: title, Completed: completed})
	if err != nil {
		s.log.Error("update todo", zap.Int64("todo_id", id), zap.Error(err))
		return nil, err
	}
	if !ok {
		return nil, ErrTodoNotFound
	}
	return todo, nil
}

func (s *todoService) Remove(ctx context.Context, userID string, id int64) error {
	if id <= 0 {
		return ErrInvalidInput
	}

	ok, err := s.t.Remove(ctx, id, userID)
	if err != nil {
		s.log.Error("delete todo", zap.Int64("todo_id", id), zap.Error(err))
		return err
	}
	if !ok {
		return ErrTodoNotFound
	}
	return nil
}

func (s *todoService) QuotaMessage() string {
	return fmt.Sprintf("You have exceeded the limit of %d todos. Please subscribe to add more todos.", s.quota)
}
