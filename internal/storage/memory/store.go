// Package memory is an in-memory implementation of storage.Store, used in
// tests and for running without persistence.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codevault-app/codevault/internal/storage"
)

// Store keeps projects and messages in maps guarded by one mutex.
type Store struct {
	mu       sync.RWMutex
	projects map[string]*storage.Project
	messages map[string][]*storage.ChatMessage
}

var _ storage.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		projects: make(map[string]*storage.Project),
		messages: make(map[string][]*storage.ChatMessage),
	}
}

func (s *Store) CreateProject(ctx context.Context, p *storage.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	clone := *p
	s.projects[p.ID] = &clone
	return nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*storage.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	clone := *p
	return &clone, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]*storage.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := make([]*storage.Project, 0, len(s.projects))
	for _, p := range s.projects {
		clone := *p
		projects = append(projects, &clone)
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].UpdatedAt.After(projects[j].UpdatedAt)
	})

	return projects, nil
}

func (s *Store) UpdateProject(ctx context.Context, p *storage.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.projects[p.ID]
	if !ok {
		return storage.ErrNotFound
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()

	clone := *p
	s.projects[p.ID] = &clone
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return storage.ErrNotFound
	}

	delete(s.projects, id)
	delete(s.messages, id)
	return nil
}

func (s *Store) AppendMessage(ctx context.Context, msg *storage.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	msg.CreatedAt = time.Now()

	clone := *msg
	s.messages[msg.ProjectID] = append(s.messages[msg.ProjectID], &clone)
	return nil
}

func (s *Store) ListMessages(ctx context.Context, projectID string) ([]*storage.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[projectID]
	out := make([]*storage.ChatMessage, len(msgs))
	for i, m := range msgs {
		clone := *m
		out[i] = &clone
	}

	return out, nil
}

func (s *Store) Close() error {
	return nil
}
