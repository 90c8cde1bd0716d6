package schedule

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/mklatt/careport/internal/model"
)

// Safety cap so a malformed rule cannot expand without bound.
const maxDosesPerExpansion = 1000

// Dose is one expected administration of a medication.
type Dose struct {
	Medication model.Medication
	Time       time.Time
}

// Parse validates an RRULE string ("FREQ=DAILY;BYHOUR=8,20").
func Parse(rule string) (*rrule.RRule, error) {
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, fmt.Errorf("parse schedule rule: %w", err)
	}
	return r, nil
}

// Expand generates the dose times for one medication within [rangeStart,
// rangeEnd]. The medication's creation time anchors the rule. Inactive
// medications and medications without a rule expand to nothing.
func Expand(med model.Medication, rangeStart, rangeEnd time.Time) ([]Dose, error) {
	if !med.Active || med.ScheduleRule == "" {
		return nil, nil
	}

	r, err := Parse(med.ScheduleRule)
	if err != nil {
		return nil, err
	}
	r.DTStart(med.CreatedAt)

	times := r.Between(rangeStart, rangeEnd, true)
	if len(times) > maxDosesPerExpansion {
		times = times[:maxDosesPerExpansion]
	}

	doses := make([]Dose, 0, len(times))
	for _, t := range times {
		doses = append(doses, Dose{Medication: med, Time: t})
	}
	return doses, nil
}

// ExpandAll merges the dose times of several medications, in medication-list
// order. Medications with invalid rules are skipped rather than failing the
// whole expansion.
func ExpandAll(meds []model.Medication, rangeStart, rangeEnd time.Time) []Dose {
	var all []Dose
	for _, med := range meds {
		doses, err := Expand(med, rangeStart, rangeEnd)
		if err != nil {
			continue
		}
		all = append(all, doses...)
	}
	return all
}
