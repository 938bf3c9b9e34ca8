// Package testutil provides an in-memory SQLite database and user fixtures for tests
package testutil

import (
	"io"
	"testing"

	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a fresh in-memory database with the full schema.
// It holds a single connection, so transactions run one at a time.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

// NewLogger returns a logger that discards output
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// CreateDoctor inserts an active doctor; hours may be nil for a doctor without a profile
func CreateDoctor(t *testing.T, db *gorm.DB, name string, hours *entity.WorkingHours) *entity.User {
	t.Helper()

	doctor := &entity.User{
		Role:     entity.RoleDoctor,
		Email:    name + "@clinic.test",
		Password: "hashed",
		FullName: name,
		IsActive: true,
	}
	require.NoError(t, db.Create(doctor).Error)

	if hours != nil {
		profile := &entity.DoctorProfile{
			UserID:    doctor.ID,
			WorkStart: hours.Start,
			WorkEnd:   hours.End,
		}
		require.NoError(t, db.Create(profile).Error)
		doctor.DoctorProfile = profile
	}
	return doctor
}

// CreatePatient inserts an active patient
func CreatePatient(t *testing.T, db *gorm.DB, name string) *entity.User {
	t.Helper()

	patient := &entity.User{
		Role:     entity.RolePatient,
		Email:    name + "@mail.test",
		Password: "hashed",
		FullName: name,
		IsActive: true,
	}
	require.NoError(t, db.Create(patient).Error)
	return patient
}

// Actor returns the scheduling actor for a user
func Actor(user *entity.User) entity.Actor {
	return entity.Actor{ID: user.ID, Role: user.Role}
}
