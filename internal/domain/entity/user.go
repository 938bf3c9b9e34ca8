package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the role a user acts under
type Role string

const (
	RoleDoctor  Role = "DOCTOR"
	RolePatient Role = "PATIENT"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleDoctor || r == RolePatient
}

// User represents the centralized identity table.
// It is owned by user management; the scheduling core only reads it.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Role      Role      `gorm:"type:varchar(20);not null;index" json:"role"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	FullName  string    `gorm:"type:varchar(255);not null" json:"full_name"`
	IsActive  bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	DoctorProfile *DoctorProfile `gorm:"foreignKey:UserID" json:"doctor_profile,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsDoctor checks if the user can receive appointments
func (u *User) IsDoctor() bool {
	return u.Role == RoleDoctor
}

// WorkingHours returns the doctor's working hours, falling back to the
// default day when no profile has been set up
func (u *User) WorkingHours() WorkingHours {
	if u.DoctorProfile == nil {
		return DefaultWorkingHours
	}
	return u.DoctorProfile.WorkingHours()
}

// Actor is the already-authenticated caller of a scheduling operation
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) IsDoctor() bool {
	return a.Role == RoleDoctor
}

func (a Actor) IsPatient() bool {
	return a.Role == RolePatient
}
