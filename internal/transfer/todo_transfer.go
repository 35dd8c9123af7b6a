package transfer

type TodoCreation struct {
	Title string `json:"title" validate:"required,max=255"`
}

type TodoUpdate struct {
	Title     string `json:"title" validate:"required,max=255"`
	Completed *bool  `json:"completed" validate:"required"`
}

type TodoListQuery struct {
	Page       int
	SearchTerm string
}
