package server

import (
	"bytes"
	"encoding/json"
)

// optional records whether a JSON field was present, so that an explicit null
// can be told apart from an omitted field.
type optional[T any] struct {
	Set   bool
	Value *T
}

func (o *optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// cleared reports an explicit null.
func (o optional[T]) cleared() bool {
	return o.Set && o.Value == nil
}

type boardRequest struct {
	Title   string  `json:"title" binding:"required"`
	Members []int64 `json:"members"`
}

type boardUpdateRequest struct {
	Title   *string `json:"title"`
	Members []int64 `json:"members"`
}

type taskRequest struct {
	Board       int64   `json:"board" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	AssigneeID  *int64  `json:"assignee_id"`
	ReviewerID  *int64  `json:"reviewer_id"`
	DueDate     *string `json:"due_date"`
}

type taskPatchRequest struct {
	Title       *string          `json:"title"`
	Description optional[string] `json:"description"`
	Status      *string          `json:"status"`
	Priority    *string          `json:"priority"`
	AssigneeID  optional[int64]  `json:"assignee_id"`
	ReviewerID  optional[int64]  `json:"reviewer_id"`
	DueDate     optional[string] `json:"due_date"`
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

type registrationRequest struct {
	Fullname         string `json:"fullname" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required"`
	RepeatedPassword string `json:"repeated_password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
