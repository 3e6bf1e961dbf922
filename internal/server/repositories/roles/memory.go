package roles

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/hradmin/internal/common"
)

// MemoryRepository is a thread-safe in-memory Repository.
type MemoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	byName   map[string]int64
	bindings map[int64]int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byName:   make(map[string]int64),
		bindings: make(map[int64]int64),
	}
}

func (r *MemoryRepository) EnsureRole(_ context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byName[name]; ok {
		return id, nil
	}
	r.nextID++
	r.byName[name] = r.nextID
	return r.nextID, nil
}

func (r *MemoryRepository) BindEmployee(_ context.Context, employeeID, roleID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bindings[employeeID] = roleID
	return nil
}

func (r *MemoryRepository) GetRoleIDForEmployee(_ context.Context, employeeID int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bindings[employeeID]
	if !ok {
		return 0, common.ErrorNotFound
	}
	return id, nil
}
