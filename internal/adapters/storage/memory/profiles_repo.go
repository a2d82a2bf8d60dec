package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"vaccine-planner/internal/domain/profiles"
)

var (
	ErrNotFound = errors.New("not found")
)

type profileRepo struct {
	mu   sync.RWMutex
	byID map[string]profiles.Profile
}

func NewProfileRepo() profiles.Repository {
	return &profileRepo{
		byID: make(map[string]profiles.Profile),
	}
}

func (r *profileRepo) Create(ctx context.Context, p profiles.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("profile id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("profile already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *profileRepo) Update(ctx context.Context, p profiles.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("profile id required")
	}
	if _, exists := r.byID[p.ID]; !exists {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (profiles.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return profiles.Profile{}, ErrNotFound
	}
	return p, nil
}

func (r *profileRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]profiles.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]profiles.Profile, 0)
	for _, p := range r.byID {
		if p.OwnerUserID == ownerUserID {
			out = append(out, p)
		}
	}

	// Orden estable por created_at asc (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *profileRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
