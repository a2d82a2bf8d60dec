package vaccines

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Vaccine es una entrada del catálogo: nombre (clave única), qué trata,
// serie inicial, cadencia de refuerzos, notas y si viene habilitada por
// defecto en un perfil nuevo.
type Vaccine struct {
	Name        string
	Treats      []string
	Doses       DoseSchedule
	Boosters    BoosterSchedule
	Notes       string
	Recommended bool
}

// Compare ordena por cadencia de refuerzo (la más corta primero) y
// desempata por nombre para que el orden sea estable.
func (v Vaccine) Compare(other Vaccine) int {
	if c := v.Boosters.Compare(other.Boosters); c != 0 {
		return c
	}
	return strings.Compare(v.Name, other.Name)
}

func (v Vaccine) TreatsLabel() string {
	return strings.Join(v.Treats, ", ")
}

// AllDoses devuelve todo lo pendiente para esta vacuna: las dosis que
// faltan de la serie inicial más los refuerzos futuros hasta limitMo.
// records debe contener solo registros de esta vacuna; puede mezclar
// dosis y refuerzos.
func (v Vaccine) AllDoses(now time.Time, records []Record, limitMo int) ([]PlannedDose, error) {
	var doseRecords []Record
	for _, r := range records {
		if !r.Kind.IsBooster() {
			doseRecords = append(doseRecords, r)
		}
	}

	remaining, err := v.Doses.RemainingOffsets(now, doseRecords)
	if err != nil {
		return nil, err
	}

	// Los refuerzos se anclan en la última dosis planificada; si la
	// serie ya está completa, en el registro más reciente.
	var plannedLast *int
	if len(remaining) > 0 {
		off := remaining[len(remaining)-1].MonthOffset
		plannedLast = &off
	}

	boosters, err := v.Boosters.FutureOffsets(now, limitMo, plannedLast, records)
	if err != nil {
		return nil, err
	}
	return append(remaining, boosters...), nil
}

// El catálogo es una tabla fija: se construye una sola vez en el primer
// acceso y no se muta nunca más, así que leerlo concurrentemente es
// seguro.
var (
	catalogOnce   sync.Once
	catalogByName map[string]Vaccine
)

func catalog() map[string]Vaccine {
	catalogOnce.Do(func() {
		entries := []Vaccine{
			{
				Name:        "COVID-19",
				Treats:      []string{"COVID-19"},
				Doses:       RepeatedRangeDoses(2, 1, 2),
				Boosters:    SeasonalBooster(time.September, time.October),
				Notes:       "Get a booster in Sept/Oct to catch any new variants.",
				Recommended: true,
			},
			{
				Name:        "Flu",
				Treats:      []string{"Flu"},
				Doses:       SingleDose(),
				Boosters:    SeasonalBooster(time.September, time.October),
				Notes:       "Get a booster in Sept/Oct to catch any new variants. Get a second dose in the middle of the season if you have no prior exposure.",
				Recommended: true,
			},
			{
				Name:        "Tdap",
				Treats:      []string{"Tuberculosis", "Tetanus", "Diphtheria", "Pertussis"},
				Doses:       RepeatedDoses(3, 6),
				Boosters:    EveryYears(10),
				Notes:       "Tuberculosis is humanity's greatest adversary; please do your part by getting vaccinated and staying up to date with boosters!",
				Recommended: true,
			},
			{
				Name:        "Mpox",
				Treats:      []string{"Monkeypox", "Smallpox"},
				Doses:       RepeatedRangeDoses(2, 1, 6),
				Boosters:    EveryYears(5),
				Notes:       "The 'M' is for both \"Monkey\" and Small",
				Recommended: true,
			},
			{
				Name:        "Meningitis",
				Treats:      []string{"Meningitis"},
				Doses:       RepeatedDoses(2, 6),
				Boosters:    EveryYears(5),
				Notes:       "Only recommended for adults that are exposed regularly, but low risk to get it so why not?",
				Recommended: true,
			},
			{
				Name:        "MMR",
				Treats:      []string{"Measles", "Mumps", "Rubella"},
				Doses:       RepeatedDoses(2, 5*12),
				Boosters:    EveryYears(5),
				Notes:       "Recommended for children and immuno-compromised, but again low risk so why not? Note: measles and rubella are lifetime immunity, but mumps requires a 5 year booster.",
				Recommended: true,
			},
			{
				Name:        "Shinglex",
				Treats:      []string{"Shingles"},
				Doses:       RepeatedRangeDoses(2, 2, 6),
				Boosters:    EveryYears(7),
				Notes:       "Recommended for children and immuno-compromised, but again low risk so why not?",
				Recommended: true,
			},
			{
				Name:        "PCV20",
				Treats:      []string{"Pneumonia"},
				Doses:       RepeatedDoses(2, 6),
				Boosters:    LifetimeBooster(),
				Notes:       "Recommended for at risk and 50+, but no risk to get it sooner, so why not?",
				Recommended: true,
			},
			{
				Name:        "Gardacil-9",
				Treats:      []string{"Human Papillomavirus (HPV)"},
				Doses:       RepeatedDoses(3, 6),
				Boosters:    LifetimeBooster(),
				Notes:       "HPV causes cancer in men and women both. Don't ignore it just because you haven't been specifically advertised to.",
				Recommended: true,
			},
			{
				Name:        "Hepatitis B",
				Treats:      []string{"Hepatitis B"},
				Doses:       SingleDose(),
				Boosters:    LifetimeBooster(),
				Notes:       "Greater than 30 years proven durability. Definitely worth it.",
				Recommended: true,
			},
			{
				Name:        "Hepatitis A",
				Treats:      []string{"Hepatitis A"},
				Doses:       RepeatedDoses(2, 6),
				Boosters:    LifetimeBooster(),
				Notes:       "Greater than 25 years proven durability. Definitely worth it.",
				Recommended: true,
			},
			{
				Name:        "Hepatitis A&B",
				Treats:      []string{"Hepatitis A", "Hepatitis B"},
				Doses:       RepeatedDoses(3, 6),
				Boosters:    LifetimeBooster(),
				Notes:       "Not recommended for adults despite hepA/hepB being individually recommended.",
				Recommended: false,
			},
			{
				Name:        "IPV",
				Treats:      []string{"Polio"},
				Doses:       RepeatedDoses(4, 4),
				Boosters:    LifetimeBooster(),
				Notes:       "No recommendation for adults, but get a booster if you're at risk or risk averse.",
				Recommended: true,
			},
			{
				Name:        "Chickenpox",
				Treats:      []string{"Chickenpox"},
				Doses:       RepeatedRangeDoses(2, 1, 6),
				Boosters:    LifetimeBooster(),
				Notes:       "Recommended if at risk or haven't had chickenpox yet, but low risk so why not?",
				Recommended: true,
			},
		}

		catalogByName = make(map[string]Vaccine, len(entries))
		for _, v := range entries {
			catalogByName[v.Name] = v
		}
	})
	return catalogByName
}

// Lookup devuelve la vacuna del catálogo o ErrUnknownVaccine.
func Lookup(name string) (Vaccine, error) {
	v, ok := catalog()[name]
	if !ok {
		return Vaccine{}, fmt.Errorf("%w: %q", ErrUnknownVaccine, name)
	}
	return v, nil
}

// All devuelve el catálogo completo, refuerzos más frecuentes primero.
func All() []Vaccine {
	m := catalog()
	out := make([]Vaccine, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Compare(out[j]) < 0
	})
	return out
}
