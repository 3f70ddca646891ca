package models

// TaskStatus is the closed set of task lifecycle states.
type TaskStatus string

const (
	StatusNew        TaskStatus = "New"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name" validate:"required,min=1,max=50"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username" validate:"required,min=1,max=50"`
	Password  string `json:"-"`
}

type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title" validate:"required,min=1,max=50"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	UserID      int64      `json:"user_id"`
}

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,min=1,max=50"`
	LastName  string `json:"last_name" validate:"omitempty"`
	Username  string `json:"username" validate:"required,min=1,max=50"`
	Password  string `json:"password" validate:"required,min=6,max=100"`
}

type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type UpdateUserRequest struct {
	FirstName string `json:"first_name" validate:"omitempty,min=1,max=50"`
	LastName  string `json:"last_name" validate:"omitempty"`
	Username  string `json:"username" validate:"omitempty,min=1,max=50"`
	Password  string `json:"password" validate:"omitempty,min=6,max=100"`
}

type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=50"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Status      string `json:"status" validate:"omitempty"`
}

type UpdateTaskRequest struct {
	Title       string `json:"title" validate:"omitempty,min=1,max=50"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Status      string `json:"status" validate:"omitempty"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
