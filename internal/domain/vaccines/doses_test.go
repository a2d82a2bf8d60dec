package vaccines

import (
	"errors"
	"reflect"
	"testing"
)

func TestBaselineOffsets(t *testing.T) {
	cases := []struct {
		name     string
		schedule DoseSchedule
		want     []PlannedDose
	}{
		{
			name:     "single",
			schedule: SingleDose(),
			want:     []PlannedDose{{Dose(0), 0}},
		},
		{
			name:     "repeated 3x6mo",
			schedule: RepeatedDoses(3, 6),
			want:     []PlannedDose{{Dose(0), 0}, {Dose(1), 6}, {Dose(2), 12}},
		},
		{
			// El mínimo manda; el máximo es solo display.
			name:     "range 2x1-6mo",
			schedule: RepeatedRangeDoses(2, 1, 6),
			want:     []PlannedDose{{Dose(0), 0}, {Dose(1), 1}},
		},
	}

	for _, c := range cases {
		got := c.schedule.BaselineOffsets()
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, got)
		}
	}
}

func TestRemainingOffsets_NoRecords(t *testing.T) {
	got, err := RepeatedDoses(3, 6).RemainingOffsets(testTime(), nil)
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	want := []PlannedDose{{Dose(0), 0}, {Dose(1), 6}, {Dose(2), 12}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected baseline %v, got %v", want, got)
	}
}

func TestRemainingOffsets_LastDoseOldEnough(t *testing.T) {
	// Última dosis hace 7 meses con intervalo mínimo de 6: la próxima
	// toca ya, y la siguiente conserva la separación de 6.
	records := []Record{{
		Vaccine: "Tdap",
		Date:    testTime().AddDate(0, -7, 0),
		Kind:    Dose(0),
	}}

	got, err := RepeatedDoses(3, 6).RemainingOffsets(testTime(), records)
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	want := []PlannedDose{{Dose(1), 0}, {Dose(2), 6}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRemainingOffsets_LastDoseTooRecent(t *testing.T) {
	// Hace 5 meses: falta 1 mes para cumplir el mínimo de 6, y todo el
	// bloque se corre en consecuencia.
	records := []Record{{
		Vaccine: "Tdap",
		Date:    testTime().AddDate(0, -5, 0),
		Kind:    Dose(0),
	}}

	got, err := RepeatedDoses(3, 6).RemainingOffsets(testTime(), records)
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	want := []PlannedDose{{Dose(1), 1}, {Dose(2), 7}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRemainingOffsets_SeriesComplete(t *testing.T) {
	records := []Record{
		{Vaccine: "Meningitis", Date: testTime().AddDate(0, -10, 0), Kind: Dose(0)},
		{Vaccine: "Meningitis", Date: testTime().AddDate(0, -4, 0), Kind: Dose(1)},
	}

	got, err := RepeatedDoses(2, 6).RemainingOffsets(testTime(), records)
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no remaining doses, got %v", got)
	}
}

func TestRemainingOffsets_SkippedMiddleDose(t *testing.T) {
	// Se registraron la primera y la tercera dosis; falta la segunda.
	// La más reciente fue hace 2 meses, así que la pendiente espera los
	// 4 que faltan del intervalo mínimo.
	records := []Record{
		{Vaccine: "Gardacil-9", Date: testTime().AddDate(0, -9, 0), Kind: Dose(0)},
		{Vaccine: "Gardacil-9", Date: testTime().AddDate(0, -2, 0), Kind: Dose(2)},
	}

	got, err := RepeatedDoses(3, 6).RemainingOffsets(testTime(), records)
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	want := []PlannedDose{{Dose(1), 4}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRemainingOffsets_FutureRecord(t *testing.T) {
	records := []Record{{
		Vaccine: "Tdap",
		Date:    testTime().AddDate(0, 3, 0),
		Kind:    Dose(0),
	}}

	if _, err := RepeatedDoses(3, 6).RemainingOffsets(testTime(), records); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestDoseScheduleLabels(t *testing.T) {
	cases := []struct {
		schedule DoseSchedule
		want     string
	}{
		{SingleDose(), "1x"},
		{RepeatedDoses(3, 6), "3x every 6mo"},
		{RepeatedRangeDoses(2, 1, 6), "2x every 1-6mo"},
	}
	for _, c := range cases {
		if got := c.schedule.String(); got != c.want {
			t.Fatalf("expected %q, got %q", c.want, got)
		}
	}
}
