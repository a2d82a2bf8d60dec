package profiles

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"vaccine-planner/internal/domain/vaccines"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("profile not found")
)

const (
	// Horizonte por defecto de un perfil nuevo.
	defaultPlanYears = 55
	// Rango permitido para end_plan_year, contado desde el año actual.
	maxPlanRangeYears = 100
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

func (s *Service) Create(ctx context.Context, ownerUserID, name string) (Profile, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	name = strings.TrimSpace(name)
	if ownerUserID == "" || name == "" {
		return Profile{}, ErrInvalidInput
	}

	now := s.now()
	p := Profile{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        name,
		Vaccines:    defaultConfigs(),
		EndPlanYear: now.Year() + defaultPlanYears,
		Records:     nil,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// defaultConfigs lista el catálogo completo, refuerzos más frecuentes
// primero, habilitando solo las recomendadas.
func defaultConfigs() []VaccineConfig {
	all := vaccines.All()
	out := make([]VaccineConfig, 0, len(all))
	for _, v := range all {
		out = append(out, VaccineConfig{Name: v.Name, Enabled: v.Recommended})
	}
	return out
}

func (s *Service) GetByID(ctx context.Context, id string) (Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Profile{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Profile, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// OwnerOf expone el dueño de un perfil sin exportar el repo.
// Evita ciclos de imports con el módulo de sharing.
func (s *Service) OwnerOf(ctx context.Context, profileID string) (string, error) {
	p, err := s.GetByID(ctx, profileID)
	if err != nil {
		return "", err
	}
	return p.OwnerUserID, nil
}

func (s *Service) Rename(ctx context.Context, id, name string) (Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Profile{}, ErrInvalidInput
	}

	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Profile{}, err
	}

	p.Name = name
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

type PlanInput struct {
	Vaccines    []VaccineConfig
	EndPlanYear int
}

// UpdatePlan reemplaza la selección/prioridad de vacunas y el año final
// de planificación. Todos los nombres deben existir en el catálogo y no
// puede haber repetidos.
func (s *Service) UpdatePlan(ctx context.Context, id string, in PlanInput) (Profile, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Profile{}, err
	}

	configs, err := validateConfigs(in.Vaccines)
	if err != nil {
		return Profile{}, err
	}

	year := s.now().Year()
	if in.EndPlanYear < year || in.EndPlanYear > year+maxPlanRangeYears {
		return Profile{}, fmt.Errorf("%w: end_plan_year must be within %d..%d",
			ErrInvalidInput, year, year+maxPlanRangeYears)
	}

	p.Vaccines = configs
	p.EndPlanYear = in.EndPlanYear
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func validateConfigs(in []VaccineConfig) ([]VaccineConfig, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: empty vaccine list", ErrInvalidInput)
	}

	seen := make(map[string]bool, len(in))
	out := make([]VaccineConfig, 0, len(in))
	for _, cfg := range in {
		name := strings.TrimSpace(cfg.Name)
		if _, err := vaccines.Lookup(name); err != nil {
			return nil, err
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicated vaccine %q", ErrInvalidInput, name)
		}
		seen[name] = true
		out = append(out, VaccineConfig{Name: name, Enabled: cfg.Enabled})
	}
	return out, nil
}

type RecordInput struct {
	Vaccine string
	Date    time.Time
	Kind    vaccines.DoseKind
	Notes   string
}

// AddRecord registra una aplicación ya recibida. La fecha no puede ser
// futura y el índice de dosis tiene que existir en la serie de la
// vacuna. La inserción conserva el orden por fecha de aplicación.
func (s *Service) AddRecord(ctx context.Context, profileID string, in RecordInput) (Profile, error) {
	p, err := s.GetByID(ctx, profileID)
	if err != nil {
		return Profile{}, err
	}

	v, err := vaccines.Lookup(strings.TrimSpace(in.Vaccine))
	if err != nil {
		return Profile{}, err
	}

	now := s.now()
	if in.Date.IsZero() {
		return Profile{}, fmt.Errorf("%w: record date required", ErrInvalidInput)
	}
	if in.Date.After(now) {
		return Profile{}, fmt.Errorf("%w: record date is in the future", ErrInvalidInput)
	}
	if !in.Kind.IsBooster() && (in.Kind.Index < 0 || in.Kind.Index >= v.Doses.Number) {
		return Profile{}, fmt.Errorf("%w: dose index %d outside series of %d",
			ErrInvalidInput, in.Kind.Index, v.Doses.Number)
	}

	rec := vaccines.Record{
		ID:      uuid.NewString(),
		Vaccine: v.Name,
		Date:    in.Date,
		Kind:    in.Kind,
		Notes:   strings.TrimSpace(in.Notes),
	}

	p.Records = insertByDate(p.Records, rec)
	p.UpdatedAt = now

	if err := s.repo.Update(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) DeleteRecord(ctx context.Context, profileID, recordID string) (Profile, error) {
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return Profile{}, ErrInvalidInput
	}

	p, err := s.GetByID(ctx, profileID)
	if err != nil {
		return Profile{}, err
	}

	kept := make([]vaccines.Record, 0, len(p.Records))
	found := false
	for _, r := range p.Records {
		if r.ID == recordID {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return Profile{}, ErrNotFound
	}

	p.Records = kept
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// insertByDate devuelve un slice nuevo con rec en su posición por fecha
// de aplicación.
func insertByDate(records []vaccines.Record, rec vaccines.Record) []vaccines.Record {
	out := make([]vaccines.Record, 0, len(records)+1)
	out = append(out, records...)
	out = append(out, rec)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Schedule computa el plan de citas del perfil con el motor. No se
// cachea nada: con los mismos datos el resultado es el mismo.
func (s *Service) Schedule(ctx context.Context, profileID string) ([]vaccines.Appointment, error) {
	p, err := s.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	enabled := make([]string, 0, len(p.Vaccines))
	for _, cfg := range p.Vaccines {
		if cfg.Enabled {
			enabled = append(enabled, cfg.Name)
		}
	}

	return vaccines.Schedule(s.now(), enabled, p.EndPlanYear, p.Records)
}

// Export es la versión portable de un perfil: lo que el usuario se
// lleva de una instancia a otra. No incluye IDs internos ni dueño.
type Export struct {
	Name        string
	Vaccines    []VaccineConfig
	EndPlanYear int
	Records     []vaccines.Record
}

func (s *Service) Export(ctx context.Context, profileID string) (Export, error) {
	p, err := s.GetByID(ctx, profileID)
	if err != nil {
		return Export{}, err
	}

	records := make([]vaccines.Record, len(p.Records))
	copy(records, p.Records)
	for i := range records {
		records[i].ID = ""
	}

	return Export{
		Name:        p.Name,
		Vaccines:    p.Vaccines,
		EndPlanYear: p.EndPlanYear,
		Records:     records,
	}, nil
}

// Import crea un perfil nuevo a partir de un export, validando todo
// como si se hubiera cargado a mano. Los registros reciben IDs nuevos.
func (s *Service) Import(ctx context.Context, ownerUserID string, in Export) (Profile, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	name := strings.TrimSpace(in.Name)
	if ownerUserID == "" || name == "" {
		return Profile{}, ErrInvalidInput
	}

	configs, err := validateConfigs(in.Vaccines)
	if err != nil {
		return Profile{}, err
	}

	now := s.now()
	year := now.Year()
	if in.EndPlanYear < year || in.EndPlanYear > year+maxPlanRangeYears {
		return Profile{}, fmt.Errorf("%w: end_plan_year must be within %d..%d",
			ErrInvalidInput, year, year+maxPlanRangeYears)
	}

	records := make([]vaccines.Record, 0, len(in.Records))
	for _, r := range in.Records {
		v, err := vaccines.Lookup(strings.TrimSpace(r.Vaccine))
		if err != nil {
			return Profile{}, err
		}
		if r.Date.IsZero() || r.Date.After(now) {
			return Profile{}, fmt.Errorf("%w: record for %s has invalid date", ErrInvalidInput, v.Name)
		}
		if !r.Kind.IsBooster() && (r.Kind.Index < 0 || r.Kind.Index >= v.Doses.Number) {
			return Profile{}, fmt.Errorf("%w: dose index %d outside series of %d",
				ErrInvalidInput, r.Kind.Index, v.Doses.Number)
		}
		records = append(records, vaccines.Record{
			ID:      uuid.NewString(),
			Vaccine: v.Name,
			Date:    r.Date,
			Kind:    r.Kind,
			Notes:   strings.TrimSpace(r.Notes),
		})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})

	p := Profile{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        name,
		Vaccines:    configs,
		EndPlanYear: in.EndPlanYear,
		Records:     records,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}
