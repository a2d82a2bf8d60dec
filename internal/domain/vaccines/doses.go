package vaccines

import (
	"fmt"
	"time"
)

type DoseScheduleKind string

const (
	DoseScheduleSingle        DoseScheduleKind = "single"
	DoseScheduleRepeated      DoseScheduleKind = "repeated"
	DoseScheduleRepeatedRange DoseScheduleKind = "repeated_range"
)

// DoseSchedule describe la serie inicial de una vacuna: cuántas dosis y
// con qué separación en meses. Para repeated_range el mínimo es el que
// manda al agendar; el máximo es solo informativo.
type DoseSchedule struct {
	Kind           DoseScheduleKind
	Number         int
	IntervalMonths int // repeated
	MinimumMonths  int // repeated_range
	MaximumMonths  int // repeated_range, solo display
}

func SingleDose() DoseSchedule {
	return DoseSchedule{Kind: DoseScheduleSingle, Number: 1}
}

func RepeatedDoses(number, intervalMonths int) DoseSchedule {
	return DoseSchedule{Kind: DoseScheduleRepeated, Number: number, IntervalMonths: intervalMonths}
}

func RepeatedRangeDoses(number, minimumMonths, maximumMonths int) DoseSchedule {
	return DoseSchedule{
		Kind:          DoseScheduleRepeatedRange,
		Number:        number,
		MinimumMonths: minimumMonths,
		MaximumMonths: maximumMonths,
	}
}

// MinimumInterval es la separación mínima entre dosis consecutivas.
func (d DoseSchedule) MinimumInterval() int {
	switch d.Kind {
	case DoseScheduleRepeated:
		return d.IntervalMonths
	case DoseScheduleRepeatedRange:
		return d.MinimumMonths
	default:
		return 0
	}
}

// BaselineOffsets devuelve la serie completa sin considerar historial:
// (Dose(i), i*intervalo) para i en 0..Number. No depende de la fecha.
func (d DoseSchedule) BaselineOffsets() []PlannedDose {
	interval := d.MinimumInterval()
	out := make([]PlannedDose, 0, d.Number)
	for i := 0; i < d.Number; i++ {
		out = append(out, PlannedDose{Kind: Dose(i), MonthOffset: i * interval})
	}
	return out
}

// RemainingOffsets recalcula qué dosis faltan dado el historial de
// dosis de esta vacuna:
//   - sin registros: la serie base completa
//   - las dosis ya recibidas se quitan de la base; si no queda nada, la
//     serie está completa
//   - la primera dosis pendiente se ancla en "ya" si desde la última
//     aplicación pasó el intervalo mínimo, o en lo que falte para
//     cumplirlo; el resto se corre en bloque conservando separaciones
//
// Todos los offsets resultantes son >= 0.
func (d DoseSchedule) RemainingOffsets(now time.Time, doseRecords []Record) ([]PlannedDose, error) {
	baseline := d.BaselineOffsets()
	if len(doseRecords) == 0 {
		return baseline, nil
	}

	taken := make(map[DoseKind]bool, len(doseRecords))
	for _, r := range doseRecords {
		taken[r.Kind] = true
	}

	remaining := make([]PlannedDose, 0, len(baseline))
	for _, p := range baseline {
		if !taken[p.Kind] {
			remaining = append(remaining, p)
		}
	}
	if len(remaining) == 0 {
		return nil, nil
	}

	last := latestRecord(doseRecords)
	elapsed, err := wholeMonthsSince(last.Date, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %s record dated %s is in the future",
			ErrInvalidRecord, last.Vaccine, last.Date.Format("2006-01-02"))
	}

	// Ancla de la próxima dosis: o ya toca, o lo que falte del intervalo.
	minInterval := d.MinimumInterval()
	anchor := 0
	if elapsed < minInterval {
		anchor = minInterval - elapsed
	}

	shift := anchor - remaining[0].MonthOffset
	for i := range remaining {
		remaining[i].MonthOffset += shift
	}
	return remaining, nil
}

func (d DoseSchedule) String() string {
	switch d.Kind {
	case DoseScheduleRepeated:
		return fmt.Sprintf("%dx every %dmo", d.Number, d.IntervalMonths)
	case DoseScheduleRepeatedRange:
		return fmt.Sprintf("%dx every %d-%dmo", d.Number, d.MinimumMonths, d.MaximumMonths)
	default:
		return "1x"
	}
}
