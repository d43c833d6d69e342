package models

import "time"

type List struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	UserID    string    `json:"_userId"`
	CreatedAt time.Time `json:"-"`
}

type Task struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	ListID    string    `json:"_listId"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"-"`
}

// TaskPatch holds the optional fields of a task update.
type TaskPatch struct {
	Title     *string
	Completed *bool
}
