package vaccines

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	// ErrUnknownVaccine: un nombre habilitado no existe en el catálogo.
	ErrUnknownVaccine = errors.New("unknown vaccine")
	// ErrInvalidRecord: un registro con fecha futura respecto de now.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrUnanchoredBooster: refuerzos sin historial ni dosis planificada.
	ErrUnanchoredBooster = errors.New("booster has nothing to anchor to")
	// ErrDateOverflow: horizonte de planificación fuera de rango.
	ErrDateOverflow = errors.New("date arithmetic overflow")
)

// Más allá de esto el plan no significa nada y los offsets en meses
// dejan de ser razonables.
const maxPlanYears = 500

const (
	minYear = 1
	maxYear = 9999
)

// Schedule computa el plan de citas completo: para cada vacuna
// habilitada (en el orden de prioridad del caller) concatena las dosis
// pendientes de la serie inicial y los refuerzos futuros, convierte
// cada offset a (año, mes) y devuelve la lista ordenada.
//
// Es una función pura de sus cuatro entradas: con entradas idénticas el
// resultado es idéntico. Nada se cachea ni se reintenta; un error acá
// es un problema de datos, no transitorio.
func Schedule(now time.Time, enabled []string, endPlanYear int, records []Record) ([]Appointment, error) {
	if endPlanYear-now.Year() > maxPlanYears {
		return nil, fmt.Errorf("%w: end plan year %d", ErrDateOverflow, endPlanYear)
	}

	// El límite es excluyente y aplica a todo lo planificado, serie
	// inicial incluida. Un horizonte en el pasado equivale a límite
	// cero: no se agenda nada.
	limitMo := (endPlanYear - now.Year()) * 12
	if limitMo < 0 {
		limitMo = 0
	}

	appointments := make([]Appointment, 0)
	for _, name := range enabled {
		vaccine, err := Lookup(name)
		if err != nil {
			return nil, err
		}

		var vaccineRecords []Record
		for _, r := range records {
			if r.Vaccine != name {
				continue
			}
			if r.Date.After(now) {
				return nil, fmt.Errorf("%w: %s record dated %s is in the future",
					ErrInvalidRecord, r.Vaccine, r.Date.Format("2006-01-02"))
			}
			vaccineRecords = append(vaccineRecords, r)
		}

		doses, err := vaccine.AllDoses(now, vaccineRecords, limitMo)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		for _, d := range doses {
			if d.MonthOffset >= limitMo {
				continue
			}
			year, month := monthOffsetToYearMonth(now, d.MonthOffset)
			appointments = append(appointments, Appointment{
				Vaccine: vaccine.Name,
				Kind:    d.Kind,
				Year:    year,
				Month:   month,
			})
		}
	}

	// Orden global por (año, mes). El sort estable conserva el orden de
	// producción en los empates: prioridad de vacuna dentro del mes.
	sort.SliceStable(appointments, func(i, j int) bool {
		return appointments[i].Compare(appointments[j]) < 0
	})
	return appointments, nil
}

// monthOffsetToYearMonth convierte un offset de meses relativo a now en
// un (año, mes) absoluto. El mes queda siempre en 1..=12 y el año
// absorbe el resto, saturando en los extremos en vez de desbordar. El
// motor no usa offsets negativos, pero la conversión los resuelve igual
// (división con piso).
func monthOffsetToYearMonth(now time.Time, monthOffset int) (int, time.Month) {
	month0 := int(now.Month()) - 1 + monthOffset
	yearOffset := month0 / 12
	rem := month0 % 12
	if rem < 0 {
		rem += 12
		yearOffset--
	}

	year := now.Year() + yearOffset
	if year > maxYear {
		year = maxYear
	}
	if year < minYear {
		year = minYear
	}
	return year, time.Month(rem + 1)
}

// wholeMonthsSince cuenta los meses completos transcurridos entre date
// y now. Una fecha futura es un error de datos del caller: se reporta,
// no se asume.
func wholeMonthsSince(date, now time.Time) (int, error) {
	if date.After(now) {
		return 0, ErrInvalidRecord
	}
	months := (now.Year()-date.Year())*12 + int(now.Month()) - int(date.Month())
	if now.Day() < date.Day() {
		months--
	}
	return months, nil
}

// latestRecord asume len(records) > 0. Los registros pueden venir en
// cualquier orden; manda la fecha de aplicación más reciente.
func latestRecord(records []Record) Record {
	last := records[0]
	for _, r := range records[1:] {
		if r.Date.After(last.Date) {
			last = r
		}
	}
	return last
}
