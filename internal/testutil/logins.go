package testutil

import (
	"context"
	"net/http"
	"sync"

	"github.com/dalemusser/bubblemap/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryLogins records sign-ins in memory. Set Err to make every call fail.
type MemoryLogins struct {
	mu      sync.Mutex
	records []models.LoginRecord
	Err     error
}

// CreateFrom mirrors loginstore.Store.CreateFrom, minus the client IP.
func (m *MemoryLogins) CreateFrom(_ context.Context, _ *http.Request, userID primitive.ObjectID, provider string, created bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.records = append(m.records, models.LoginRecord{
		UserID:   userID.Hex(),
		Provider: provider,
		Created:  created,
	})
	return nil
}

// Recent mirrors loginstore.Store.Recent: newest first, at most limit.
func (m *MemoryLogins) Recent(_ context.Context, userID primitive.ObjectID, limit int64) ([]models.LoginRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.LoginRecord
	for i := len(m.records) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if m.records[i].UserID == userID.Hex() {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

// Records returns a copy of what was recorded.
func (m *MemoryLogins) Records() []models.LoginRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.LoginRecord(nil), m.records...)
}
