package vaccines

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

// Instante de referencia compartido por los tests: 1 de junio de 2025.
func testTime() time.Time {
	return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
}

func TestMonthOffsetToYearMonth(t *testing.T) {
	cases := []struct {
		offset    int
		wantYear  int
		wantMonth time.Month
	}{
		{0, 2025, time.June},
		{1, 2025, time.July},
		{2, 2025, time.August},
		{3, 2025, time.September},
		{4, 2025, time.October},
		{5, 2025, time.November},
		{6, 2025, time.December},
		{7, 2026, time.January}, // cruce de año
		{12, 2026, time.June},
		{31, 2028, time.January},
		{-6, 2024, time.December}, // el motor no los usa, pero no deben romper
		{-17, 2024, time.January},
	}

	for _, c := range cases {
		year, month := monthOffsetToYearMonth(testTime(), c.offset)
		if year != c.wantYear || month != c.wantMonth {
			t.Fatalf("offset %d: expected (%d, %s), got (%d, %s)",
				c.offset, c.wantYear, c.wantMonth, year, month)
		}
	}
}

func TestMonthOffsetToYearMonth_AlwaysValidMonth(t *testing.T) {
	for offset := -500; offset <= 500; offset++ {
		_, month := monthOffsetToYearMonth(testTime(), offset)
		if month < time.January || month > time.December {
			t.Fatalf("offset %d produced month %d outside 1..=12", offset, month)
		}
	}
}

func TestMonthOffsetToYearMonth_SaturatesYear(t *testing.T) {
	year, month := monthOffsetToYearMonth(testTime(), 12*20000)
	if year != maxYear {
		t.Fatalf("expected saturated year %d, got %d", maxYear, year)
	}
	if month < time.January || month > time.December {
		t.Fatalf("saturated conversion produced month %d outside 1..=12", month)
	}

	year, _ = monthOffsetToYearMonth(testTime(), -12*20000)
	if year != minYear {
		t.Fatalf("expected saturated year %d, got %d", minYear, year)
	}
}

func TestWholeMonthsSince(t *testing.T) {
	now := testTime()

	cases := []struct {
		date time.Time
		want int
	}{
		{now, 0},
		{now.AddDate(0, -7, 0), 7},
		{now.AddDate(0, -5, 0), 5},
		{time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), 4}, // mes incompleto no cuenta
		{time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), 12},
	}
	for _, c := range cases {
		got, err := wholeMonthsSince(c.date, now)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", c.date.Format("2006-01-02"), err)
		}
		if got != c.want {
			t.Fatalf("%s: expected %d months, got %d", c.date.Format("2006-01-02"), c.want, got)
		}
	}

	if _, err := wholeMonthsSince(now.AddDate(0, 1, 0), now); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord for future date, got %v", err)
	}
}

func TestSchedule_SortedAndDeterministic(t *testing.T) {
	enabled := []string{"Flu", "Tdap", "COVID-19"}

	first, err := Schedule(testTime(), enabled, 2040, nil)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	second, err := Schedule(testTime(), enabled, 2040, nil)
	if err != nil {
		t.Fatalf("schedule (second run): %v", err)
	}

	if len(first) == 0 {
		t.Fatal("expected appointments, got none")
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].Compare(first[i]) > 0 {
			t.Fatalf("appointments out of order at %d: %+v before %+v", i, first[i-1], first[i])
		}
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical inputs produced different schedules")
	}
}

func TestSchedule_PriorityBreaksTiesWithinMonth(t *testing.T) {
	// Flu y COVID-19 terminan con refuerzos estacionales en el mismo
	// Sep; el orden de habilitación decide quién aparece primero.
	appts, err := Schedule(testTime(), []string{"Flu", "COVID-19"}, 2028, nil)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	var inSameMonth []string
	for _, a := range appts {
		if a.Year == 2026 && a.Month == time.September {
			inSameMonth = append(inSameMonth, a.Vaccine)
		}
	}
	want := []string{"Flu", "COVID-19"}
	if !reflect.DeepEqual(inSameMonth, want) {
		t.Fatalf("expected tie order %v, got %v", want, inSameMonth)
	}
}

func TestSchedule_UnknownVaccine(t *testing.T) {
	_, err := Schedule(testTime(), []string{"Flu", "Smallpox 1796"}, 2030, nil)
	if !errors.Is(err, ErrUnknownVaccine) {
		t.Fatalf("expected ErrUnknownVaccine, got %v", err)
	}
}

func TestSchedule_FutureRecordRejected(t *testing.T) {
	records := []Record{{
		Vaccine: "Flu",
		Date:    testTime().AddDate(0, 2, 0),
		Kind:    Dose(0),
	}}
	_, err := Schedule(testTime(), []string{"Flu"}, 2030, records)
	if !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestSchedule_PastHorizonIsEmpty(t *testing.T) {
	appts, err := Schedule(testTime(), []string{"Tdap"}, 2020, nil)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(appts) != 0 {
		t.Fatalf("expected empty schedule for past horizon, got %d appointments", len(appts))
	}
}

func TestSchedule_HorizonTrimsInitialSeries(t *testing.T) {
	// MMR: segunda dosis a los 60 meses, fuera de un horizonte de dos
	// años. El límite recorta también la serie inicial, no solo los
	// refuerzos.
	appts, err := Schedule(testTime(), []string{"MMR"}, 2027, nil)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(appts) != 1 {
		t.Fatalf("expected only the first dose within the horizon, got %d appointments", len(appts))
	}
	if appts[0].Kind != Dose(0) || appts[0].Year != 2025 || appts[0].Month != time.June {
		t.Fatalf("expected Dose#1 at 2025-06, got %+v", appts[0])
	}
}

func TestSchedule_AbsurdHorizonRejected(t *testing.T) {
	_, err := Schedule(testTime(), []string{"Tdap"}, 999999, nil)
	if !errors.Is(err, ErrDateOverflow) {
		t.Fatalf("expected ErrDateOverflow, got %v", err)
	}
}

func TestSchedule_CompleteSeriesYieldsOnlyBoosters(t *testing.T) {
	// Serie Tdap completa; la última dosis hace 12 meses. Solo deben
	// quedar refuerzos, anclados en ese último registro.
	records := []Record{
		{Vaccine: "Tdap", Date: testTime().AddDate(0, -24, 0), Kind: Dose(0)},
		{Vaccine: "Tdap", Date: testTime().AddDate(0, -18, 0), Kind: Dose(1)},
		{Vaccine: "Tdap", Date: testTime().AddDate(0, -12, 0), Kind: Dose(2)},
	}

	appts, err := Schedule(testTime(), []string{"Tdap"}, 2045, records)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(appts) == 0 {
		t.Fatal("expected booster appointments, got none")
	}
	for _, a := range appts {
		if !a.Kind.IsBooster() {
			t.Fatalf("expected only boosters, got %+v", a)
		}
	}

	// 120 meses de cadencia menos los 12 transcurridos: junio de 2034.
	if appts[0].Year != 2034 || appts[0].Month != time.June {
		t.Fatalf("expected first booster at 2034-06, got %d-%02d", appts[0].Year, appts[0].Month)
	}
}

func TestSchedule_TimePassingPullsScheduleForward(t *testing.T) {
	// El mismo perfil consultado un año más tarde no debe "perder" el
	// refuerzo: se recalcula contra el nuevo now.
	records := []Record{{Vaccine: "Hepatitis B", Date: testTime().AddDate(0, -3, 0), Kind: Dose(0)}}

	early, err := Schedule(testTime(), []string{"Hepatitis B"}, 2060, records)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	late, err := Schedule(testTime().AddDate(1, 0, 0), []string{"Hepatitis B"}, 2060, records)
	if err != nil {
		t.Fatalf("schedule one year later: %v", err)
	}

	if len(early) == 0 || len(late) == 0 {
		t.Fatalf("expected boosters in both runs, got %d and %d", len(early), len(late))
	}
	if early[0].Year != late[0].Year {
		t.Fatalf("booster year drifted with now: %d vs %d", early[0].Year, late[0].Year)
	}
}

func TestDoseKindOrdering(t *testing.T) {
	if Dose(0).Compare(Dose(1)) >= 0 {
		t.Fatal("Dose(0) must sort before Dose(1)")
	}
	if Dose(3).Compare(Booster()) >= 0 {
		t.Fatal("any dose must sort before a booster")
	}
	if Booster().Compare(Dose(0)) <= 0 {
		t.Fatal("booster must sort after doses")
	}
	if Booster().Compare(Booster()) != 0 {
		t.Fatal("two boosters must compare equal")
	}
}
