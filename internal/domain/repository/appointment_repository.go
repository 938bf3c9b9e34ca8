package repository

import (
	"appointment-scheduler/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.Appointment, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error)
	FindBookedSlots(db *gorm.DB, doctorID uuid.UUID, date string, statuses []entity.AppointmentStatus) ([]string, error)
	ExistsApproved(db *gorm.DB, doctorID uuid.UUID, date, timeSlot string, excludeID uuid.UUID) (bool, error)
	ExistsActiveForPatient(db *gorm.DB, patientID, doctorID uuid.UUID, date, timeSlot string) (bool, error)
	UpdateStatus(db *gorm.DB, id uuid.UUID, from, to entity.AppointmentStatus) (int64, error)
}
