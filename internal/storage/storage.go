// Package storage defines the persistence contracts for projects and their
// chat conversations. The core treats this as a simple document store;
// concurrent updates to the same project resolve last-write-wins.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/codevault-app/codevault/internal/artifact"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Project is one stored website project and its generated files.
type Project struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Files       []artifact.File `json:"files"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ChatMessage is one persisted conversation turn for a project. Assistant
// turns keep the raw completion text so the chat history doubles as the
// audit trail.
type ChatMessage struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Provider  string    `json:"provider,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProjectStore is the project CRUD contract.
type ProjectStore interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	UpdateProject(ctx context.Context, p *Project) error
	DeleteProject(ctx context.Context, id string) error
}

// ConversationStore is the chat history contract.
type ConversationStore interface {
	AppendMessage(ctx context.Context, msg *ChatMessage) error
	ListMessages(ctx context.Context, projectID string) ([]*ChatMessage, error)
}

// Store combines both contracts.
type Store interface {
	ProjectStore
	ConversationStore
	Close() error
}
