package memory

import (
	"context"
	"sync"

	"festquiz/internal/domain"
)

// FacitArchive is an in-memory implementation of app.FacitArchive.
type FacitArchive struct {
	mu     sync.RWMutex
	facits map[string]domain.Facit
	order  []string
}

func NewFacitArchive() *FacitArchive {
	return &FacitArchive{
		facits: make(map[string]domain.Facit),
	}
}

func (a *FacitArchive) Save(_ context.Context, facit domain.Facit) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.facits[facit.ID]; !ok {
		a.order = append(a.order, facit.ID)
	}
	a.facits[facit.ID] = facit
	return nil
}

func (a *FacitArchive) Get(_ context.Context, id string) (domain.Facit, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	facit, ok := a.facits[id]
	if !ok {
		return domain.Facit{}, domain.ErrFacitNotFound
	}
	return facit, nil
}

// Recent returns up to limit facits, newest first.
func (a *FacitArchive) Recent(_ context.Context, limit int) ([]domain.Facit, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]domain.Facit, 0, min(max(limit, 0), len(a.order)))
	for i := len(a.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, a.facits[a.order[i]])
	}
	return out, nil
}
