package schedule

import (
	"testing"
	"time"

	"github.com/mklatt/careport/internal/model"
)

func TestExpandDaily(t *testing.T) {
	med := model.Medication{
		ID: 1, Name: "Aspirin", ScheduleRule: "FREQ=DAILY;BYHOUR=8;BYMINUTE=0;BYSECOND=0", Active: true,
		CreatedAt: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	}

	start := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 7, 23, 59, 59, 0, time.UTC)

	doses, err := Expand(med, start, end)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(doses) != 3 {
		t.Fatalf("got %d doses, want 3", len(doses))
	}
	for i, d := range doses {
		if d.Time.Hour() != 8 {
			t.Errorf("dose %d at hour %d, want 8", i, d.Time.Hour())
		}
		if d.Medication.ID != 1 {
			t.Errorf("dose %d medication id = %d, want 1", i, d.Medication.ID)
		}
	}
	if doses[0].Time.Day() != 5 || doses[2].Time.Day() != 7 {
		t.Errorf("dose days = %d..%d, want 5..7", doses[0].Time.Day(), doses[2].Time.Day())
	}
}

func TestExpandTwiceDaily(t *testing.T) {
	med := model.Medication{
		ID: 1, Name: "Metformin", ScheduleRule: "FREQ=DAILY;BYHOUR=8,20;BYMINUTE=0;BYSECOND=0", Active: true,
		CreatedAt: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	}

	start := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 5, 23, 59, 59, 0, time.UTC)

	doses, err := Expand(med, start, end)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(doses) != 2 {
		t.Fatalf("got %d doses, want 2", len(doses))
	}
	if doses[0].Time.Hour() != 8 || doses[1].Time.Hour() != 20 {
		t.Errorf("dose hours = %d, %d, want 8, 20", doses[0].Time.Hour(), doses[1].Time.Hour())
	}
}

func TestExpandInactiveOrUnscheduled(t *testing.T) {
	start := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	inactive := model.Medication{ScheduleRule: "FREQ=DAILY", Active: false, CreatedAt: start}
	if doses, err := Expand(inactive, start, end); err != nil || len(doses) != 0 {
		t.Errorf("inactive medication expanded to %d doses (err %v), want 0", len(doses), err)
	}

	asNeeded := model.Medication{Active: true, CreatedAt: start}
	if doses, err := Expand(asNeeded, start, end); err != nil || len(doses) != 0 {
		t.Errorf("unscheduled medication expanded to %d doses (err %v), want 0", len(doses), err)
	}
}

func TestExpandInvalidRule(t *testing.T) {
	med := model.Medication{ScheduleRule: "FREQ=SOMETIMES", Active: true, CreatedAt: time.Now()}
	if _, err := Expand(med, time.Now(), time.Now().AddDate(0, 0, 1)); err == nil {
		t.Error("expected error for invalid rule")
	}
}

func TestExpandAllSkipsInvalid(t *testing.T) {
	anchor := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	meds := []model.Medication{
		{ID: 1, ScheduleRule: "FREQ=SOMETIMES", Active: true, CreatedAt: anchor},
		{ID: 2, ScheduleRule: "FREQ=DAILY;BYHOUR=9;BYMINUTE=0;BYSECOND=0", Active: true, CreatedAt: anchor},
	}

	start := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	doses := ExpandAll(meds, start, start.Add(24*time.Hour))
	if len(doses) != 1 {
		t.Fatalf("got %d doses, want 1", len(doses))
	}
	if doses[0].Medication.ID != 2 {
		t.Errorf("dose medication id = %d, want 2", doses[0].Medication.ID)
	}
}
