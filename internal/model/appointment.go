package model

// Appointment is a scheduled visit for an elderly dependent.
type Appointment struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Location   string `json:"location,omitempty"`
	Notes      string `json:"notes,omitempty"`
	DoctorName string `json:"doctorName,omitempty"`
	ElderlyID  string `json:"elderlyId"`
}

// AppointmentUpdate holds optional fields for a partial appointment update.
type AppointmentUpdate struct {
	Title      *string `json:"title,omitempty"`
	Date       *string `json:"date,omitempty"`
	Time       *string `json:"time,omitempty"`
	Location   *string `json:"location,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	DoctorName *string `json:"doctorName,omitempty"`
}

// Apply merges the non-nil fields of u into a.
func (u AppointmentUpdate) Apply(a Appointment) Appointment {
	if u.Title != nil {
		a.Title = *u.Title
	}
	if u.Date != nil {
		a.Date = *u.Date
	}
	if u.Time != nil {
		a.Time = *u.Time
	}
	if u.Location != nil {
		a.Location = *u.Location
	}
	if u.Notes != nil {
		a.Notes = *u.Notes
	}
	if u.DoctorName != nil {
		a.DoctorName = *u.DoctorName
	}
	return a
}
