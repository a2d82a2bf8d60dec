package sharing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadState     = errors.New("invalid state")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type InviteInput struct {
	ProfileID     string
	OwnerUserID   string
	GranteeUserID string
	Scopes        []Scope
}

// Invite crea (o actualiza) la delegación del perfil hacia un usuario.
// Para el mismo (perfil, dueño, delegado) hay a lo sumo un grant
// vigente: re-invitar actualiza los scopes del existente en vez de
// acumular grants. Un grant revocado no revive; se crea uno nuevo.
func (s *Service) Invite(ctx context.Context, in InviteInput) (Grant, error) {
	profileID := strings.TrimSpace(in.ProfileID)
	ownerID := strings.TrimSpace(in.OwnerUserID)
	granteeID := strings.TrimSpace(in.GranteeUserID)

	if profileID == "" || ownerID == "" || granteeID == "" {
		return Grant{}, ErrInvalidInput
	}
	if ownerID == granteeID {
		return Grant{}, ErrInvalidInput
	}

	// Scopes: vacío aplica un default de solo lectura (perfil + plan).
	// Con valores, se validan estrictamente.
	var scopes []Scope
	var err error
	if len(in.Scopes) == 0 {
		scopes = []Scope{ScopeProfileRead, ScopeScheduleRead}
	} else {
		scopes, err = normalizeScopesStrict(in.Scopes)
		if err != nil {
			return Grant{}, err
		}
		if len(scopes) == 0 {
			return Grant{}, ErrInvalidInput
		}
	}

	now := s.now()

	existing, allMatches, err := s.findLatestMatch(ctx, profileID, ownerID, granteeID)
	if err == nil && existing.ID != "" && existing.Status != StatusRevoked {
		// Deduplicar: cualquier otro matching grant no-revocado se revoca.
		s.revokeOtherMatches(ctx, existing.ID, allMatches, now)

		existing.Scopes = scopes
		existing.UpdatedAt = now

		if err := s.repo.Update(ctx, existing); err != nil {
			return Grant{}, err
		}
		return existing, nil
	}

	g := Grant{
		ID:            uuid.NewString(),
		ProfileID:     profileID,
		OwnerUserID:   ownerID,
		GranteeUserID: granteeID,
		Scopes:        scopes,
		Status:        StatusInvited,
		CreatedAt:     now,
		UpdatedAt:     now,
		RevokedAt:     nil,
	}

	if err := s.repo.Create(ctx, g); err != nil {
		return Grant{}, err
	}
	return g, nil
}

// Accept pasa un invite a activo. Solo el delegado puede aceptar, y
// aceptar un grant ya activo es idempotente.
func (s *Service) Accept(ctx context.Context, grantID, granteeUserID string) (Grant, error) {
	grantID = strings.TrimSpace(grantID)
	granteeUserID = strings.TrimSpace(granteeUserID)

	if grantID == "" || granteeUserID == "" {
		return Grant{}, ErrInvalidInput
	}

	g, err := s.repo.GetByID(ctx, grantID)
	if err != nil {
		return Grant{}, ErrNotFound
	}

	if g.GranteeUserID != granteeUserID {
		return Grant{}, ErrForbidden
	}
	if g.Status == StatusRevoked {
		return Grant{}, ErrBadState
	}
	if g.Status == StatusActive {
		return g, nil
	}
	if g.Status != StatusInvited {
		return Grant{}, ErrBadState
	}

	now := s.now()
	g.Status = StatusActive
	g.UpdatedAt = now

	if err := s.repo.Update(ctx, g); err != nil {
		return Grant{}, err
	}

	// Si quedó data sucia (varios grants para el mismo par), aceptar
	// uno deja exactamente uno vigente.
	if items, err := s.repo.ListByProfile(ctx, g.ProfileID); err == nil {
		matches := make([]Grant, 0, len(items))
		for _, m := range items {
			if m.OwnerUserID == g.OwnerUserID && m.GranteeUserID == g.GranteeUserID {
				matches = append(matches, m)
			}
		}
		s.revokeOtherMatches(ctx, g.ID, matches, now)
	}

	return g, nil
}

// Revoke corta el acceso. Solo el dueño; revocar dos veces es idempotente.
func (s *Service) Revoke(ctx context.Context, grantID, ownerUserID string) (Grant, error) {
	grantID = strings.TrimSpace(grantID)
	ownerUserID = strings.TrimSpace(ownerUserID)

	if grantID == "" || ownerUserID == "" {
		return Grant{}, ErrInvalidInput
	}

	g, err := s.repo.GetByID(ctx, grantID)
	if err != nil {
		return Grant{}, ErrNotFound
	}

	if g.OwnerUserID != ownerUserID {
		return Grant{}, ErrForbidden
	}
	if g.Status == StatusRevoked {
		return g, nil
	}

	now := s.now()
	g.Status = StatusRevoked
	g.UpdatedAt = now
	g.RevokedAt = &now

	if err := s.repo.Update(ctx, g); err != nil {
		return Grant{}, err
	}
	return g, nil
}

func (s *Service) ListByProfile(ctx context.Context, profileID string) ([]Grant, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByProfile(ctx, profileID)
}

func (s *Service) ListByGrantee(ctx context.Context, granteeUserID string) ([]Grant, error) {
	granteeUserID = strings.TrimSpace(granteeUserID)
	if granteeUserID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByGrantee(ctx, granteeUserID)
}

func (s *Service) GetActiveGrant(ctx context.Context, profileID, granteeUserID string) (Grant, error) {
	profileID = strings.TrimSpace(profileID)
	granteeUserID = strings.TrimSpace(granteeUserID)

	if profileID == "" || granteeUserID == "" {
		return Grant{}, ErrInvalidInput
	}
	g, err := s.repo.GetActiveGrant(ctx, profileID, granteeUserID)
	if err != nil {
		return Grant{}, ErrNotFound
	}
	return g, nil
}

// HasScope valida si el grant incluye un scope.
func HasScope(g Grant, scope Scope) bool {
	for _, s := range g.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

func (s *Service) findLatestMatch(ctx context.Context, profileID, ownerID, granteeID string) (Grant, []Grant, error) {
	items, err := s.repo.ListByProfile(ctx, profileID)
	if err != nil {
		return Grant{}, nil, err
	}

	matches := make([]Grant, 0)
	var winner Grant
	hasWinner := false

	for _, g := range items {
		if g.OwnerUserID != ownerID || g.GranteeUserID != granteeID {
			continue
		}
		matches = append(matches, g)

		if !hasWinner || g.UpdatedAt.After(winner.UpdatedAt) {
			winner = g
			hasWinner = true
		}
	}

	if !hasWinner {
		return Grant{}, matches, ErrNotFound
	}
	return winner, matches, nil
}

func (s *Service) revokeOtherMatches(ctx context.Context, winnerID string, matches []Grant, now time.Time) {
	for _, g := range matches {
		if g.ID == "" || g.ID == winnerID {
			continue
		}
		if g.Status == StatusRevoked {
			continue
		}
		g.Status = StatusRevoked
		g.UpdatedAt = now
		g.RevokedAt = &now
		_ = s.repo.Update(ctx, g) // best-effort
	}
}

func normalizeScopesStrict(in []Scope) ([]Scope, error) {
	allowed := map[Scope]struct{}{
		ScopeProfileRead:   {},
		ScopeProfileEdit:   {},
		ScopeRecordsCreate: {},
		ScopeRecordsDelete: {},
		ScopeScheduleRead:  {},
	}

	seen := map[Scope]struct{}{}
	out := make([]Scope, 0, len(in))

	for _, raw := range in {
		s := Scope(strings.TrimSpace(string(raw)))
		if s == "" {
			continue
		}
		if _, ok := allowed[s]; !ok {
			return nil, ErrInvalidInput
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out, nil
}
