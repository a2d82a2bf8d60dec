package memory

import (
	"context"
	"errors"
	"sync"

	"vaccine-planner/internal/domain/sharing"
)

type grantRepo struct {
	mu   sync.RWMutex
	byID map[string]sharing.Grant
}

func NewSharingRepo() sharing.Repository {
	return &grantRepo{
		byID: make(map[string]sharing.Grant),
	}
}

func (r *grantRepo) Create(ctx context.Context, g sharing.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g.ID == "" {
		return errors.New("grant id required")
	}
	if _, exists := r.byID[g.ID]; exists {
		return errors.New("grant already exists")
	}
	r.byID[g.ID] = g
	return nil
}

func (r *grantRepo) Update(ctx context.Context, g sharing.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g.ID == "" {
		return errors.New("grant id required")
	}
	if _, exists := r.byID[g.ID]; !exists {
		return ErrNotFound
	}
	r.byID[g.ID] = g
	return nil
}

func (r *grantRepo) GetByID(ctx context.Context, id string) (sharing.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byID[id]
	if !ok {
		return sharing.Grant{}, ErrNotFound
	}
	return g, nil
}

func (r *grantRepo) ListByProfile(ctx context.Context, profileID string) ([]sharing.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]sharing.Grant, 0)
	for _, g := range r.byID {
		if g.ProfileID == profileID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *grantRepo) ListByGrantee(ctx context.Context, granteeUserID string) ([]sharing.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]sharing.Grant, 0)
	for _, g := range r.byID {
		if g.GranteeUserID == granteeUserID {
			out = append(out, g)
		}
	}
	return out, nil
}

// Defensivo: si por data sucia existieran múltiples grants activos,
// devolvemos el más reciente por UpdatedAt (y en empate, por CreatedAt).
func (r *grantRepo) GetActiveGrant(ctx context.Context, profileID, granteeUserID string) (sharing.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var winner sharing.Grant
	has := false

	for _, g := range r.byID {
		if g.ProfileID != profileID {
			continue
		}
		if g.GranteeUserID != granteeUserID {
			continue
		}
		if g.Status != sharing.StatusActive {
			continue
		}

		if !has {
			winner = g
			has = true
			continue
		}

		if g.UpdatedAt.After(winner.UpdatedAt) {
			winner = g
			continue
		}
		if g.UpdatedAt.Equal(winner.UpdatedAt) && g.CreatedAt.After(winner.CreatedAt) {
			winner = g
		}
	}

	if !has {
		return sharing.Grant{}, ErrNotFound
	}
	return winner, nil
}
