package vaccines

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DoseKindType distingue una dosis de la serie inicial de un refuerzo.
type DoseKindType string

const (
	DoseKindDose    DoseKindType = "dose"
	DoseKindBooster DoseKindType = "booster"
)

// DoseKind identifica qué aplicación representa un registro o una cita:
// una dosis de la serie inicial (índice 0-based) o un refuerzo.
type DoseKind struct {
	Type  DoseKindType
	Index int // solo significativo para DoseKindDose
}

func Dose(index int) DoseKind {
	return DoseKind{Type: DoseKindDose, Index: index}
}

func Booster() DoseKind {
	return DoseKind{Type: DoseKindBooster}
}

func (k DoseKind) IsBooster() bool {
	return k.Type == DoseKindBooster
}

// Compare define el orden total: las dosis ordenan por índice y toda
// dosis va antes que cualquier refuerzo. Dos refuerzos son iguales.
func (k DoseKind) Compare(other DoseKind) int {
	switch {
	case !k.IsBooster() && !other.IsBooster():
		return k.Index - other.Index
	case !k.IsBooster():
		return -1
	case !other.IsBooster():
		return 1
	default:
		return 0
	}
}

// Label es el texto que ve el usuario. El índice interno es 0-based
// pero se muestra 1-based ("Dose#1").
func (k DoseKind) Label() string {
	if k.IsBooster() {
		return "Booster"
	}
	return fmt.Sprintf("Dose#%d", k.Index+1)
}

// KindFrom arma un DoseKind desde los campos que viajan por la API.
func KindFrom(kind string, index int) (DoseKind, error) {
	switch DoseKindType(strings.ToLower(strings.TrimSpace(kind))) {
	case DoseKindDose:
		if index < 0 {
			return DoseKind{}, errors.New("dose index must be >= 0")
		}
		return Dose(index), nil
	case DoseKindBooster:
		return Booster(), nil
	default:
		return DoseKind{}, fmt.Errorf("unknown dose kind %q", kind)
	}
}

// Record es un hecho histórico: una aplicación ya recibida. El motor
// solo lo lee; la edición vive en el perfil del caller.
type Record struct {
	ID      string
	Vaccine string
	Date    time.Time
	Kind    DoseKind
	Notes   string
}

// PlannedDose es una aplicación pendiente, expresada como offset de
// meses enteros relativo al instante de referencia del cálculo.
type PlannedDose struct {
	Kind        DoseKind
	MonthOffset int
}

// Appointment es una cita calculada. Es dato derivado: se recalcula
// completo en cada invocación y no guarda referencia a los registros
// que la justifican.
type Appointment struct {
	Vaccine string
	Kind    DoseKind
	Year    int
	Month   time.Month // siempre en 1..=12
}

// Compare ordena por (año, mes). Los empates dentro de un mes los
// resuelve el sort estable del motor: queda el orden de producción.
func (a Appointment) Compare(other Appointment) int {
	if a.Year != other.Year {
		return a.Year - other.Year
	}
	return int(a.Month) - int(other.Month)
}
