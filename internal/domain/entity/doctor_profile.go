package entity

import "github.com/google/uuid"

// WorkingHours is a doctor's daily start/end bound in HH:MM (24h)
type WorkingHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DefaultWorkingHours is used for doctors without a profile
var DefaultWorkingHours = WorkingHours{Start: "09:00", End: "17:00"}

// DoctorProfile represents doctor-specific profile data
type DoctorProfile struct {
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Specialization string    `gorm:"type:varchar(100);index" json:"specialization,omitempty"`
	WorkStart      string    `gorm:"type:varchar(5);not null;default:'09:00'" json:"work_start"`
	WorkEnd        string    `gorm:"type:varchar(5);not null;default:'17:00'" json:"work_end"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}

func (p *DoctorProfile) WorkingHours() WorkingHours {
	return WorkingHours{Start: p.WorkStart, End: p.WorkEnd}
}
