package profiles

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"vaccine-planner/internal/domain/sharing"
	"vaccine-planner/internal/domain/vaccines"
	"vaccine-planner/internal/middleware"
	"vaccine-planner/internal/ports/capabilities"

	"github.com/go-chi/chi/v5"
)

// CapabilityMultiProfile habilita tener más de un perfil (plan pago).
const CapabilityMultiProfile = "profiles:multi"

func RegisterRoutes(r chi.Router, svc *Service, grantsSvc *sharing.Service, caps capabilities.Resolver) {
	r.Route("/profiles", func(pr chi.Router) {
		pr.Post("/", createProfileHandler(svc, caps))
		pr.Get("/", listProfilesHandler(svc))
		pr.Post("/import", importProfileHandler(svc, caps))

		pr.Route("/{profileID}", func(ir chi.Router) {
			ir.Get("/", getProfileHandler(svc, grantsSvc))
			ir.Patch("/", renameProfileHandler(svc, grantsSvc))
			ir.Delete("/", deleteProfileHandler(svc))

			ir.Put("/plan", updatePlanHandler(svc, grantsSvc))
			ir.Get("/schedule", scheduleHandler(svc, grantsSvc))
			ir.Get("/export", exportProfileHandler(svc))

			ir.Post("/records", addRecordHandler(svc, grantsSvc))
			ir.Delete("/records/{recordID}", deleteRecordHandler(svc, grantsSvc))
		})
	})
}

type vaccineConfigPayload struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

type recordPayload struct {
	ID        string `json:"id,omitempty"`
	Vaccine   string `json:"vaccine"`
	Date      string `json:"date"` // RFC3339
	Kind      string `json:"kind" enums:"dose,booster"`
	DoseIndex int    `json:"dose_index,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// profileResponse representa un perfil devuelto por la API.
type profileResponse struct {
	ID          string                 `json:"id"`
	OwnerUserID string                 `json:"owner_user_id"`
	Name        string                 `json:"name"`
	Vaccines    []vaccineConfigPayload `json:"vaccines"`
	EndPlanYear int                    `json:"end_plan_year"`
	Records     []recordPayload        `json:"records"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// appointmentResponse es una cita del plan calculado.
type appointmentResponse struct {
	Vaccine   string `json:"vaccine"`
	Kind      string `json:"kind" enums:"dose,booster"`
	DoseIndex int    `json:"dose_index,omitempty"`
	Label     string `json:"label"`
	Year      int    `json:"year"`
	Month     int    `json:"month"` // 1..=12
}

// createProfileHandler godoc
// @Summary Crear un perfil
// @Description Crea un perfil de vacunación para el usuario autenticado, con el catálogo completo precargado (recomendadas habilitadas) y horizonte por defecto. Crear más de un perfil requiere la capability `profiles:multi`. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags profiles
// @Accept json
// @Produce json
// @Param payload body object{name=string} true "Nombre del perfil"
// @Success 201 {object} profileResponse
// @Failure 400 {string} string "invalid json / nombre vacío"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "multi-profile not available on current plan"
// @Router /profiles [post]
func createProfileHandler(svc *Service, caps capabilities.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if !allowAnotherProfile(r, svc, caps, claims.UserID) {
			http.Error(w, "multi-profile not available on current plan", http.StatusForbidden)
			return
		}

		p, err := svc.Create(r.Context(), claims.UserID, req.Name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, toProfileResponse(p))
	}
}

// allowAnotherProfile decide si el usuario puede crear un perfil más.
// El primero es siempre gratis; los siguientes dependen del plan. Sin
// resolver configurado no se gatea (modo dev).
func allowAnotherProfile(r *http.Request, svc *Service, caps capabilities.Resolver, userID string) bool {
	if caps == nil {
		return true
	}
	existing, err := svc.ListByOwner(r.Context(), userID)
	if err != nil || len(existing) == 0 {
		return true
	}
	ok, err := caps.Has(r.Context(), userID, CapabilityMultiProfile)
	return err == nil && ok
}

// listProfilesHandler godoc
// @Summary Listar mis perfiles
// @Description Lista los perfiles del usuario autenticado.
// @Tags profiles
// @Produce json
// @Success 200 {array} profileResponse
// @Failure 401 {string} string "unauthorized"
// @Router /profiles [get]
func listProfilesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]profileResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toProfileResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getProfileHandler godoc
// @Summary Consultar un perfil
// @Description Devuelve el perfil. El dueño siempre puede; un delegado necesita un grant activo con scope `profile:read`.
// @Tags profiles
// @Produce json
// @Param profileID path string true "ID del perfil"
// @Success 200 {object} profileResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "profile not found"
// @Router /profiles/{profileID} [get]
func getProfileHandler(svc *Service, grantsSvc *sharing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizeProfile(w, r, svc, grantsSvc, sharing.ScopeProfileRead)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toProfileResponse(p))
	}
}

// renameProfileHandler godoc
// @Summary Renombrar un perfil
// @Description Cambia el nombre del perfil. Dueño, o delegado con scope `profile:edit`.
// @Tags profiles
// @Accept json
// @Produce json
// @Param profileID path string true "ID del perfil"
// @Param payload body object{name=string} true "Nombre nuevo"
// @Success 200 {object} profileResponse
// @Failure 400 {string} string "invalid json / nombre vacío"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "profile not found"
// @Router /profiles/{profileID} [patch]
func renameProfileHandler(svc *Service, grantsSvc *sharing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizeProfile(w, r, svc, grantsSvc, sharing.ScopeProfileEdit)
		if !ok {
			return
		}

		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.Rename(r.Context(), p.ID, req.Name)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toProfileResponse(updated))
	}
}

// deleteProfileHandler godoc
// @Summary Borrar un perfil
// @Description Borra el perfil y todo su historial. Solo el dueño. La operación es inmediata e irreversible.
// @Tags profiles
// @Param profileID path string true "ID del perfil"
// @Success 204 {string} string "sin contenido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "profile not found"
// @Router /profiles/{profileID} [delete]
func deleteProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requireOwner(w, r, svc)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), p.ID); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type updatePlanRequest struct {
	Vaccines    []vaccineConfigPayload `json:"vaccines"`
	EndPlanYear int                    `json:"end_plan_year"`
}

// updatePlanHandler godoc
// @Summary Actualizar el plan de vacunación
// @Description Reemplaza la selección y prioridad de vacunas (el orden del array es el orden de prioridad) y el año final de planificación. Dueño, o delegado con scope `profile:edit`.
// @Tags profiles
// @Accept json
// @Produce json
// @Param profileID path string true "ID del perfil"
// @Param payload body updatePlanRequest true "Plan nuevo"
// @Success 200 {object} profileResponse
// @Failure 400 {string} string "invalid json / vacuna desconocida / año fuera de rango"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "profile not found"
// @Router /profiles/{profileID}/plan [put]
func updatePlanHandler(svc *Service, grantsSvc *sharing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizeProfile(w, r, svc, grantsSvc, sharing.ScopeProfileEdit)
		if !ok {
			return
		}

		var req updatePlanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		configs := make([]VaccineConfig, 0, len(req.Vaccines))
		for _, c := range req.Vaccines {
			configs = append(configs, VaccineConfig{Name: c.Name, Enabled: c.Enabled})
		}

		updated, err := svc.UpdatePlan(r.Context(), p.ID, PlanInput{
			Vaccines:    configs,
			EndPlanYear: req.EndPlanYear,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toProfileResponse(updated))
	}
}

// scheduleHandler godoc
// @Summary Calcular el plan de citas
// @Description Computa todas las citas futuras (dosis pendientes y refuerzos) para las vacunas habilitadas del perfil, hasta el año final configurado. El resultado viene ordenado por (año, mes) y se recalcula en cada consulta. Dueño, o delegado con scope `schedule:read`.
// @Tags profiles
// @Produce json
// @Param profileID path string true "ID del perfil"
// @Success 200 {array} appointmentResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "profile not found"
// @Failure 422 {string} string "historial inválido (fecha futura, refuerzo sin ancla)"
// @Router /profiles/{profileID}/schedule [get]
func scheduleHandler(svc *Service, grantsSvc *sharing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizeProfile(w, r, svc, grantsSvc, sharing.ScopeScheduleRead)
		if !ok {
			return
		}

		appts, err := svc.Schedule(r.Context(), p.ID)
		if err != nil {
			// Errores del motor son problemas de datos del perfil, no
			// del servidor.
			if errors.Is(err, vaccines.ErrInvalidRecord) ||
				errors.Is(err, vaccines.ErrUnanchoredBooster) ||
				errors.Is(err, vaccines.ErrDateOverflow) {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]appointmentResponse, 0, len(appts))
		for _, a := range appts {
			out = append(out, appointmentResponse{
				Vaccine:   a.Vaccine,
				Kind:      string(a.Kind.Type),
				DoseIndex: a.Kind.Index,
				Label:     a.Kind.Label(),
				Year:      a.Year,
				Month:     int(a.Month),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// addRecordHandler godoc
// @Summary Registrar una aplicación recibida
// @Description Agrega una dosis o refuerzo ya recibido al historial del perfil; el plan de citas lo descuenta a partir de ahí. Dueño, o delegado con scope `records:create`.
// @Tags records
// @Accept json
// @Produce json
// @Param profileID path string true "ID del perfil"
// @Param payload body recordPayload true "Registro; date en RFC3339, kind dose|booster"
// @Success 201 {object} profileResponse
// @Failure 400 {string} string "invalid json / fecha futura / vacuna desconocida"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "profile not found"
// @Router /profiles/{profileID}/records [post]
func addRecordHandler(svc *Service, grantsSvc *sharing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizeProfile(w, r, svc, grantsSvc, sharing.ScopeRecordsCreate)
		if !ok {
			return
		}

		var req recordPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		date, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			http.Error(w, "date must be RFC3339", http.StatusBadRequest)
			return
		}
		kind, err := vaccines.KindFrom(req.Kind, req.DoseIndex)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		updated, err := svc.AddRecord(r.Context(), p.ID, RecordInput{
			Vaccine: req.Vaccine,
			Date:    date,
			Kind:    kind,
			Notes:   req.Notes,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toProfileResponse(updated))
	}
}

// deleteRecordHandler godoc
// @Summary Borrar un registro del historial
// @Description Quita un registro del historial del perfil. Dueño, o delegado con scope `records:delete`.
// @Tags records
// @Produce json
// @Param profileID path string true "ID del perfil"
// @Param recordID path string true "ID del registro"
// @Success 200 {object} profileResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "profile or record not found"
// @Router /profiles/{profileID}/records/{recordID} [delete]
func deleteRecordHandler(svc *Service, grantsSvc *sharing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizeProfile(w, r, svc, grantsSvc, sharing.ScopeRecordsDelete)
		if !ok {
			return
		}

		updated, err := svc.DeleteRecord(r.Context(), p.ID, chi.URLParam(r, "recordID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toProfileResponse(updated))
	}
}

// exportProfileHandler godoc
// @Summary Exportar un perfil
// @Description Devuelve el perfil en formato portable (sin IDs internos), apto para re-importar en otra instancia. Solo el dueño.
// @Tags profiles
// @Produce json
// @Param profileID path string true "ID del perfil"
// @Success 200 {object} object
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "profile not found"
// @Router /profiles/{profileID}/export [get]
func exportProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requireOwner(w, r, svc)
		if !ok {
			return
		}

		out, err := svc.Export(r.Context(), p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toExportPayload(out))
	}
}

type exportPayload struct {
	Name        string                 `json:"name"`
	Vaccines    []vaccineConfigPayload `json:"vaccines"`
	EndPlanYear int                    `json:"end_plan_year"`
	Records     []recordPayload        `json:"records"`
}

// importProfileHandler godoc
// @Summary Importar un perfil
// @Description Crea un perfil nuevo del usuario autenticado a partir de un export previo. Se valida todo como si se hubiera cargado a mano y los registros reciben IDs nuevos. Importar como perfil adicional requiere `profiles:multi`.
// @Tags profiles
// @Accept json
// @Produce json
// @Param payload body exportPayload true "Perfil exportado"
// @Success 201 {object} profileResponse
// @Failure 400 {string} string "invalid json / datos inválidos"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "multi-profile not available on current plan"
// @Router /profiles/import [post]
func importProfileHandler(svc *Service, caps capabilities.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req exportPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if !allowAnotherProfile(r, svc, caps, claims.UserID) {
			http.Error(w, "multi-profile not available on current plan", http.StatusForbidden)
			return
		}

		in := Export{
			Name:        req.Name,
			EndPlanYear: req.EndPlanYear,
		}
		for _, c := range req.Vaccines {
			in.Vaccines = append(in.Vaccines, VaccineConfig{Name: c.Name, Enabled: c.Enabled})
		}
		for _, rec := range req.Records {
			date, err := time.Parse(time.RFC3339, rec.Date)
			if err != nil {
				http.Error(w, "record date must be RFC3339", http.StatusBadRequest)
				return
			}
			kind, err := vaccines.KindFrom(rec.Kind, rec.DoseIndex)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			in.Records = append(in.Records, vaccines.Record{
				Vaccine: rec.Vaccine,
				Date:    date,
				Kind:    kind,
				Notes:   rec.Notes,
			})
		}

		p, err := svc.Import(r.Context(), claims.UserID, in)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toProfileResponse(p))
	}
}

// requireOwner resuelve el perfil y exige que el usuario autenticado
// sea el dueño. Escribe la respuesta de error si corresponde.
func requireOwner(w http.ResponseWriter, r *http.Request, svc *Service) (Profile, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return Profile{}, false
	}

	p, err := svc.GetByID(r.Context(), chi.URLParam(r, "profileID"))
	if err != nil {
		http.Error(w, "profile not found", http.StatusNotFound)
		return Profile{}, false
	}
	if p.OwnerUserID != claims.UserID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return Profile{}, false
	}
	return p, true
}

// authorizeProfile resuelve el perfil y chequea permisos:
//   - el dueño siempre puede
//   - un delegado necesita un grant activo que incluya el scope pedido
func authorizeProfile(w http.ResponseWriter, r *http.Request, svc *Service, grantsSvc *sharing.Service, scope sharing.Scope) (Profile, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return Profile{}, false
	}

	p, err := svc.GetByID(r.Context(), chi.URLParam(r, "profileID"))
	if err != nil {
		http.Error(w, "profile not found", http.StatusNotFound)
		return Profile{}, false
	}

	if p.OwnerUserID != claims.UserID {
		g, err := grantsSvc.GetActiveGrant(r.Context(), p.ID, claims.UserID)
		if err != nil || !sharing.HasScope(g, scope) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return Profile{}, false
		}
	}
	return p, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, vaccines.ErrUnknownVaccine):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toProfileResponse(p Profile) profileResponse {
	configs := make([]vaccineConfigPayload, 0, len(p.Vaccines))
	for _, c := range p.Vaccines {
		configs = append(configs, vaccineConfigPayload{Name: c.Name, Enabled: c.Enabled})
	}
	return profileResponse{
		ID:          p.ID,
		OwnerUserID: p.OwnerUserID,
		Name:        p.Name,
		Vaccines:    configs,
		EndPlanYear: p.EndPlanYear,
		Records:     toRecordPayloads(p.Records),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toRecordPayloads(records []vaccines.Record) []recordPayload {
	out := make([]recordPayload, 0, len(records))
	for _, rec := range records {
		out = append(out, recordPayload{
			ID:        rec.ID,
			Vaccine:   rec.Vaccine,
			Date:      rec.Date.Format(time.RFC3339),
			Kind:      string(rec.Kind.Type),
			DoseIndex: rec.Kind.Index,
			Notes:     rec.Notes,
		})
	}
	return out
}

func toExportPayload(e Export) exportPayload {
	configs := make([]vaccineConfigPayload, 0, len(e.Vaccines))
	for _, c := range e.Vaccines {
		configs = append(configs, vaccineConfigPayload{Name: c.Name, Enabled: c.Enabled})
	}
	return exportPayload{
		Name:        e.Name,
		Vaccines:    configs,
		EndPlanYear: e.EndPlanYear,
		Records:     toRecordPayloads(e.Records),
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo;
// cuando se repita en más lugares recién va a valer la pena extraerlo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
