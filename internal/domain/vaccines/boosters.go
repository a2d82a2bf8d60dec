package vaccines

import (
	"fmt"
	"time"
)

type BoosterScheduleKind string

const (
	BoosterSeasonal BoosterScheduleKind = "seasonal"
	BoosterYears    BoosterScheduleKind = "years"
	BoosterLifetime BoosterScheduleKind = "lifetime"
)

// "De por vida" en la práctica: 25 años entre refuerzos.
const lifetimeMonths = 300

// BoosterSchedule describe la cadencia de refuerzos de una vacuna.
// seasonal es anual pero acotado a una ventana de meses del calendario
// (p.ej. Sep-Oct, cuando salen las variantes nuevas); years repite cada
// n años; lifetime casi nunca.
type BoosterSchedule struct {
	Kind  BoosterScheduleKind
	Years int // solo para BoosterYears

	// Ventana estacional, solo para BoosterSeasonal.
	WindowStart time.Month
	WindowEnd   time.Month
}

func SeasonalBooster(windowStart, windowEnd time.Month) BoosterSchedule {
	return BoosterSchedule{Kind: BoosterSeasonal, WindowStart: windowStart, WindowEnd: windowEnd}
}

func EveryYears(n int) BoosterSchedule {
	return BoosterSchedule{Kind: BoosterYears, Years: n}
}

func LifetimeBooster() BoosterSchedule {
	return BoosterSchedule{Kind: BoosterLifetime}
}

// DurationMonths es la separación entre refuerzos. También define el
// orden total entre cadencias: la más corta primero.
func (b BoosterSchedule) DurationMonths() int {
	switch b.Kind {
	case BoosterSeasonal:
		return 12
	case BoosterYears:
		return 12 * b.Years
	default:
		return lifetimeMonths
	}
}

func (b BoosterSchedule) Compare(other BoosterSchedule) int {
	return b.DurationMonths() - other.DurationMonths()
}

// FutureOffsets genera un refuerzo por cada múltiplo de la duración a
// partir del ancla, hasta limitMo (excluyente). El ancla es:
//   - la última dosis planificada de la serie inicial más la duración,
//     si la serie todavía tiene dosis pendientes, o
//   - el registro más reciente (dosis o refuerzo): si ya pasó más
//     tiempo que la duración toca ya (ancla 0), si no, lo que falte.
//
// Sin registros y sin dosis planificada no hay a qué anclar: eso es una
// violación de invariante del caller y se reporta como error.
func (b BoosterSchedule) FutureOffsets(now time.Time, limitMo int, plannedLastDose *int, records []Record) ([]PlannedDose, error) {
	dur := b.DurationMonths()

	var anchor int
	switch {
	case plannedLastDose != nil:
		anchor = *plannedLastDose + dur
	case len(records) > 0:
		last := latestRecord(records)
		elapsed, err := wholeMonthsSince(last.Date, now)
		if err != nil {
			return nil, fmt.Errorf("%w: %s record dated %s is in the future",
				ErrInvalidRecord, last.Vaccine, last.Date.Format("2006-01-02"))
		}
		if elapsed < dur {
			anchor = dur - elapsed
		}
	default:
		return nil, ErrUnanchoredBooster
	}

	if b.Kind == BoosterSeasonal {
		anchor = b.alignToWindow(now, anchor)
	}

	var out []PlannedDose
	for off := anchor; off < limitMo; off += dur {
		out = append(out, PlannedDose{Kind: Booster(), MonthOffset: off})
	}
	return out, nil
}

// alignToWindow corrige el ancla para que caiga dentro de la ventana
// estacional: si el mes implícito queda antes de la ventana, empuja al
// inicio de la ventana del mismo año; si queda después, al inicio de la
// ventana del año siguiente. Como la cadencia estacional es de 12
// meses, alcanza con alinear el ancla.
func (b BoosterSchedule) alignToWindow(now time.Time, anchor int) int {
	_, month := monthOffsetToYearMonth(now, anchor)
	switch {
	case month < b.WindowStart:
		return anchor + int(b.WindowStart-month)
	case month > b.WindowEnd:
		return anchor + 12 - int(month) + int(b.WindowStart)
	default:
		return anchor
	}
}

func (b BoosterSchedule) String() string {
	switch b.Kind {
	case BoosterSeasonal:
		return fmt.Sprintf("every year (%s-%s)",
			b.WindowStart.String()[:3], b.WindowEnd.String()[:3])
	case BoosterYears:
		return fmt.Sprintf("every %d years", b.Years)
	default:
		return "every 25-30 years or when exposed"
	}
}
