package testutil

import (
	"context"
	"sync"
	"time"

	userstore "github.com/dalemusser/bubblemap/internal/app/store/users"
	"github.com/dalemusser/bubblemap/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryUsers is an in-memory stand-in for the Mongo user store with the
// same error contract. Set Err to make every call fail.
type MemoryUsers struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.User
	Err  error
}

// NewMemoryUsers returns an empty MemoryUsers.
func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{byID: make(map[primitive.ObjectID]*models.User)}
}

func (m *MemoryUsers) findByName(name string) *models.User {
	ci := text.Fold(name)
	for _, u := range m.byID {
		if u.NameCI == ci {
			return u
		}
	}
	return nil
}

// GetOrCreate mirrors userstore.Store.GetOrCreate.
func (m *MemoryUsers) GetOrCreate(_ context.Context, name string) (models.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.User{}, false, m.Err
	}
	if u := m.findByName(name); u != nil {
		return *u, false, nil
	}
	now := time.Now().UTC()
	u := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.byID[u.ID] = u
	return *u, true, nil
}

// GetByID mirrors userstore.Store.GetByID.
func (m *MemoryUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, userstore.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// SetName mirrors userstore.Store.SetName.
func (m *MemoryUsers) SetName(_ context.Context, id primitive.ObjectID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	u, ok := m.byID[id]
	if !ok {
		return userstore.ErrNotFound
	}
	if other := m.findByName(name); other != nil && other.ID != id {
		return userstore.ErrDuplicateName
	}
	u.Name = name
	u.NameCI = text.Fold(name)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// Len returns the number of stored users.
func (m *MemoryUsers) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}
