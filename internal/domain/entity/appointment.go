package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusApproved  AppointmentStatus = "APPROVED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
)

// BlockingStatuses are the statuses that take a slot out of availability.
// A pending request blocks too so a second patient is never offered a slot
// that is waiting on the doctor's decision.
var BlockingStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusApproved,
}

// ParseAppointmentStatus returns the status named by s
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch status := AppointmentStatus(s); status {
	case AppointmentStatusPending, AppointmentStatusApproved, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return status, true
	}
	return "", false
}

// IsTerminal reports whether no transition may leave the status
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled
}

// Appointment is a patient's request for a doctor's time slot on a date.
// At most one appointment per (doctor, date, time slot) may be APPROVED;
// the partial unique index backs the approval guard.
type Appointment struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID  uuid.UUID         `gorm:"type:uuid;not null;index:idx_appointments_doctor_date;uniqueIndex:idx_appointments_approved_slot,where:status = 'APPROVED'" json:"doctor_id"`
	Date      string            `gorm:"type:varchar(10);not null;index:idx_appointments_doctor_date;uniqueIndex:idx_appointments_approved_slot,where:status = 'APPROVED'" json:"date"`
	TimeSlot  string            `gorm:"type:varchar(8);not null;uniqueIndex:idx_appointments_approved_slot,where:status = 'APPROVED'" json:"time_slot"`
	Status    AppointmentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CreatedAt time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient *User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  *User `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// IsApproved checks if appointment holds the slot exclusively
func (a *Appointment) IsApproved() bool {
	return a.Status == AppointmentStatusApproved
}

// IsParticipant reports whether userID is the booking patient or the assigned doctor
func (a *Appointment) IsParticipant(userID uuid.UUID) bool {
	return a.PatientID == userID || a.DoctorID == userID
}
