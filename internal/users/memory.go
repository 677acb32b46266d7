package users

import (
	"context"
	"sync"
	"time"

	"github.com/versegallery/versegallery/internal/models"
)

// MemoryRepository is the demo's mock datastore: a map guarded by a RWMutex.
// Records are cloned on the way in and out, so a handshake completing while a
// profile page renders observes whole records only.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*models.User)}
}

func (m *MemoryRepository) Create(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[u.Username]; ok {
		return ErrUsernameTaken
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	m.store[u.Username] = u.Clone()
	return nil
}

func (m *MemoryRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[username]
	if !ok {
		return nil, ErrNotFound
	}
	return u.Clone(), nil
}

func (m *MemoryRepository) MergeMetadata(ctx context.Context, username string, partial models.Metadata) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[username]
	if !ok {
		return nil, ErrNotFound
	}
	if u.Metadata == nil {
		u.Metadata = &models.Metadata{}
	}
	u.Metadata.Merge(partial)
	u.UpdatedAt = time.Now().UTC()
	return u.Clone(), nil
}

// Seed inserts a pre-provisioned user, ignoring duplicates. Used to load the
// demo's fixture accounts at startup.
func (m *MemoryRepository) Seed(users ...*models.User) {
	for _, u := range users {
		_ = m.Create(context.Background(), u)
	}
}
