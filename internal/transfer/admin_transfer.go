package transfer

import "github.com/maheshrc27/todo-api/internal/models"

type AdminStats struct {
	TotalUsers      int `json:"totalUsers"`
	SubscribedUsers int `json:"subscribedUsers"`
	TotalTodos      int `json:"totalTodos"`
}

type UserPage struct {
	Users      []*models.User `json:"users"`
	TotalUsers int            `json:"totalUsers"`
	TotalPages int            `json:"totalPages"`
}
