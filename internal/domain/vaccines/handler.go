package vaccines

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router) {
	r.Route("/vaccines", func(vr chi.Router) {
		vr.Get("/", listVaccinesHandler())
		vr.Get("/{name}", getVaccineHandler())
	})
}

// vaccineResponse representa una entrada del catálogo devuelta por la API.
type vaccineResponse struct {
	Name        string   `json:"name"`
	Treats      []string `json:"treats"`
	Doses       string   `json:"doses"`
	Boosters    string   `json:"boosters"`
	Notes       string   `json:"notes"`
	Recommended bool     `json:"recommended"`
}

// listVaccinesHandler godoc
// @Summary Listar el catálogo de vacunas
// @Description Devuelve el catálogo completo de esquemas conocidos, ordenado por frecuencia de refuerzo (más frecuente primero). El catálogo está compilado en el binario: no se modifica por API.
// @Tags vaccines
// @Produce json
// @Success 200 {array} vaccineResponse
// @Router /vaccines [get]
func listVaccinesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		all := All()
		out := make([]vaccineResponse, 0, len(all))
		for _, v := range all {
			out = append(out, toVaccineResponse(v))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getVaccineHandler godoc
// @Summary Consultar una vacuna del catálogo
// @Description Devuelve una entrada del catálogo por nombre. Nombres con espacios o caracteres especiales van URL-escapados (p.ej. `Hepatitis%20A%26B`).
// @Tags vaccines
// @Produce json
// @Param name path string true "Nombre de la vacuna"
// @Success 200 {object} vaccineResponse
// @Failure 404 {string} string "vaccine not found"
// @Router /vaccines/{name} [get]
func getVaccineHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := url.PathUnescape(chi.URLParam(r, "name"))
		if err != nil {
			http.Error(w, "invalid vaccine name", http.StatusBadRequest)
			return
		}

		v, err := Lookup(name)
		if err != nil {
			http.Error(w, "vaccine not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toVaccineResponse(v))
	}
}

func toVaccineResponse(v Vaccine) vaccineResponse {
	return vaccineResponse{
		Name:        v.Name,
		Treats:      v.Treats,
		Doses:       v.Doses.String(),
		Boosters:    v.Boosters.String(),
		Notes:       v.Notes,
		Recommended: v.Recommended,
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo;
// cuando se repita en más lugares recién va a valer la pena extraerlo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
