package model

import (
	"strings"
	"time"
)

// ScheduleEntry is one intake time of a medication and the weekdays it
// applies to. Days are lowercase English weekday names.
type ScheduleEntry struct {
	Time string   `json:"time"`
	Days []string `json:"days"`
}

// Medication is read-mostly reference data for an elderly dependent.
type Medication struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Dosage       string          `json:"dosage"`
	Frequency    string          `json:"frequency"`
	Schedule     []ScheduleEntry `json:"schedule"`
	Instructions string          `json:"instructions,omitempty"`
	StartDate    string          `json:"startDate"`
	ElderlyID    string          `json:"elderlyId"`
}

// TakesOn returns the intake times scheduled for the given weekday.
func (m Medication) TakesOn(day time.Weekday) []string {
	name := strings.ToLower(day.String())

	var times []string
	for _, entry := range m.Schedule {
		for _, d := range entry.Days {
			if strings.ToLower(d) == name {
				times = append(times, entry.Time)
				break
			}
		}
	}
	return times
}

// MedicationUpdate holds optional fields for a partial medication update.
type MedicationUpdate struct {
	Name         *string          `json:"name,omitempty"`
	Dosage       *string          `json:"dosage,omitempty"`
	Frequency    *string          `json:"frequency,omitempty"`
	Schedule     *[]ScheduleEntry `json:"schedule,omitempty"`
	Instructions *string          `json:"instructions,omitempty"`
	StartDate    *string          `json:"startDate,omitempty"`
}

// Apply merges the non-nil fields of u into m.
func (u MedicationUpdate) Apply(m Medication) Medication {
	if u.Name != nil {
		m.Name = *u.Name
	}
	if u.Dosage != nil {
		m.Dosage = *u.Dosage
	}
	if u.Frequency != nil {
		m.Frequency = *u.Frequency
	}
	if u.Schedule != nil {
		m.Schedule = append([]ScheduleEntry(nil), (*u.Schedule)...)
	}
	if u.Instructions != nil {
		m.Instructions = *u.Instructions
	}
	if u.StartDate != nil {
		m.StartDate = *u.StartDate
	}
	return m
}
