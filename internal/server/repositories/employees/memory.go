package employees

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/hradmin/internal/common"
	"github.com/dmitrijs2005/hradmin/internal/server/auth"
	"github.com/dmitrijs2005/hradmin/internal/server/models"
)

// MemoryRepository is a thread-safe in-memory Repository for tests and local
// runs. Returned employees are copies.
type MemoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*models.Employee
	byLogin map[string]int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[int64]*models.Employee),
		byLogin: make(map[string]int64),
	}
}

func (r *MemoryRepository) Create(_ context.Context, e *models.Employee) (*models.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byLogin[e.LoginName]; ok {
		return nil, common.ErrorAlreadyExists
	}

	r.nextID++
	now := time.Now()
	e.ID = r.nextID
	e.CreateTime = now
	e.UpdateTime = now

	stored := *e
	r.byID[e.ID] = &stored
	r.byLogin[e.LoginName] = e.ID
	return e, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (*models.Employee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *MemoryRepository) GetByLoginName(ctx context.Context, loginName string) (*models.Employee, error) {
	r.mu.RLock()
	id, ok := r.byLogin[loginName]
	r.mu.RUnlock()

	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *MemoryRepository) SetSession(_ context.Context, id int64, secret auth.SessionSecret, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	e.SessionSecret = secret
	e.LoginAt = &at
	e.UpdateTime = at
	return nil
}

func (r *MemoryRepository) ClearSession(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	e.SessionSecret = ""
	e.UpdateTime = at
	return nil
}
