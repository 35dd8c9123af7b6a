package service

import (
	"context"
	"time"

	"github.com/maheshrc27/todo-api/internal/models"
	"github.com/maheshrc27/todo-api/internal/repository"
	"github.com/maheshrc27/todo-api/internal/transfer"
)

const adminUsersPerPage = 20

type AdminService interface {
	Stats(ctx context.Context) (*transfer.AdminStats, error)
	ListUsers(ctx context.Context, page int) (*transfer.UserPage, error)
}

type adminService struct {
	u   repository.UserRepository
	t   repository.TodoRepository
	now func() time.Time
}

func NewAdminService(u repository.UserRepository, t repository.TodoRepository) AdminService {
	return &adminService{u: u, t: t, now: time.Now}
}

func (s *adminService) Stats(ctx context.Context) (*transfer.AdminStats, error) {
	users, err := s.u.Count(ctx)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.u.CountSubscribed(ctx, s.now())
	if err != nil {
		return nil, err
	}
	todos, err := s.t.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &transfer.AdminStats{
		TotalUsers:      users,
		SubscribedUsers: subscribed,
		TotalTodos:      todos,
	}, nil
}

func (s *adminService) ListUsers(ctx context.Context, page int) (*transfer.UserPage, error) {
	if page < 1 {
		page = 1
	}

	total, err := s.u.Count(ctx)
	if err != nil {
		return nil, err
	}
	result := &transfer.UserPage{
		Users:      []*models.User{},
		TotalUsers: total,
		TotalPages: models.TotalPages(total, adminUsersPerPage),
	}
	if page > result.TotalPages {
		return result, nil
	}

	result.Users, err = s.u.List(ctx, adminUsersPerPage, (page-1)*adminUsersPerPage)
	if err != nil {
		return nil, err
	}
	return result, nil
}
