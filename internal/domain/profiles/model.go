package profiles

import (
	"time"

	"vaccine-planner/internal/domain/vaccines"
)

// VaccineConfig es una fila del plan: la vacuna y si está habilitada.
// El orden del slice es el orden de prioridad del usuario; el motor lo
// usa para desempatar citas dentro de un mismo mes.
type VaccineConfig struct {
	Name    string
	Enabled bool
}

// Profile agrupa todo lo necesario para planificar a una persona: qué
// vacunas quiere y en qué orden, hasta qué año planificar, y su
// historial de aplicaciones. Los registros se mantienen siempre
// ordenados por fecha de aplicación ascendente, no por fecha de carga.
//
// El plan calculado no se persiste: es dato derivado y se recalcula en
// cada consulta.
type Profile struct {
	ID          string
	OwnerUserID string

	Name string

	Vaccines    []VaccineConfig
	EndPlanYear int

	Records []vaccines.Record

	CreatedAt time.Time
	UpdatedAt time.Time
}
