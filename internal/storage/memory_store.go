package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-application-tracker/internal/models"
)

// MemoryStore is a RecordStore kept in process memory. It enforces the status
// enum the same way the Postgres CHECK constraint does.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[string]models.Application
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]models.Application)}
}

func (s *MemoryStore) Insert(ctx context.Context, app models.Application) (*models.Application, error) {
	if _, ok := models.ParseStatus(string(app.Status)); !ok {
		return nil, newError(KindConstraint, "insert", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	app.ID = uuid.NewString()
	s.rows[app.ID] = app
	return &app, nil
}

func (s *MemoryStore) Select(ctx context.Context) ([]models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	apps := make([]models.Application, 0, len(s.rows))
	for _, app := range s.rows {
		apps = append(apps, app)
	}
	sort.SliceStable(apps, func(i, j int) bool {
		if apps[i].AppliedDate.Equal(apps[j].AppliedDate) {
			return apps[i].ID < apps[j].ID
		}
		return apps[i].AppliedDate.After(apps[j].AppliedDate)
	})
	return apps, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.rows[id]
	if !ok {
		return nil, newError(KindNotFound, "get", nil)
	}
	return &app, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, patch Patch) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.rows[id]
	if !ok {
		return nil, newError(KindNotFound, "update", nil)
	}
	if patch.Status != nil {
		if _, ok := models.ParseStatus(string(*patch.Status)); !ok {
			return nil, newError(KindConstraint, "update", nil)
		}
		app.Status = *patch.Status
	}
	s.rows[id] = app
	return &app, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return newError(KindNotFound, "delete", nil)
	}
	delete(s.rows, id)
	return nil
}

func (s *MemoryStore) AllowedStatuses(ctx context.Context) ([]string, bool, error) {
	return models.StatusNames(), true, nil
}
