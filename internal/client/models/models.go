// Package models holds the client-side views of server resources.
package models

type User struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

type List struct {
	ID     string `json:"_id"`
	Title  string `json:"title"`
	UserID string `json:"_userId"`
}

type Task struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	ListID    string `json:"_listId"`
	Completed bool   `json:"completed"`
}
