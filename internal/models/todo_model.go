package models

import "time"

const MaxTodoTitleLength = 255

type Todo struct {
	ID        int64     `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Title     string    `db:"title" json:"title"`
	Completed bool      `db:"completed" json:"completed"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// TodoPage is one page of a user's todos plus the totals for the whole filter.
type TodoPage struct {
	Todos      []*Todo `json:"todos"`
	TotalTodos int     `json:"totalTodos"`
	TotalPages int     `json:"totalPages"`
}

// TotalPages returns ceil(total/pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
