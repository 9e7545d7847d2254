package model

import "github.com/google/uuid"

// Record is one student entry: who they are and what they have to do.
type Record struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	ToDo  string `json:"toDo"`
}

// NewRecord builds a record with a fresh stable id.
func NewRecord(name, email, toDo string) Record {
	return Record{ID: NewID(), Name: name, Email: email, ToDo: toDo}
}

// NewID returns a random identifier for a record.
func NewID() string { return uuid.NewString() }
