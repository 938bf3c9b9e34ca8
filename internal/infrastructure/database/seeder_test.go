package database_test

import (
	"testing"

	"appointment-scheduler/config"
	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/internal/infrastructure/database"
	"appointment-scheduler/internal/repository"
	"appointment-scheduler/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeeder_Seed(t *testing.T) {
	db := testutil.NewDB(t)
	seeder := database.NewSeeder(db, testutil.NewLogger(), repository.NewUserRepository(), repository.NewDoctorProfileRepository())

	created, err := seeder.Seed()
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	var doctors []entity.User
	require.NoError(t, db.Preload("DoctorProfile").Where("role = ?", entity.RoleDoctor).Find(&doctors).Error)
	require.Len(t, doctors, 3)
	for _, d := range doctors {
		require.NotNil(t, d.DoctorProfile, d.Email)
		assert.NotEmpty(t, d.DoctorProfile.Specialization)
		assert.Equal(t, entity.DefaultWorkingHours.Start, d.DoctorProfile.WorkStart)
		assert.Equal(t, entity.DefaultWorkingHours.End, d.DoctorProfile.WorkEnd)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(d.Password), []byte(database.SeedPassword)))
	}

	t.Run("second run creates nothing", func(t *testing.T) {
		created, err := seeder.Seed()
		require.NoError(t, err)
		assert.Equal(t, 0, created)

		var count int64
		require.NoError(t, db.Model(&entity.User{}).Count(&count).Error)
		assert.Equal(t, int64(3), count)
	})
}

func TestMigrateDownThenUp_SQLite(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := config.DBConfig{Driver: config.DriverSQLite, Path: ":memory:"}

	require.NoError(t, database.MigrateDown(db, cfg))
	assert.False(t, db.Migrator().HasTable(&entity.Appointment{}))
	assert.False(t, db.Migrator().HasTable(&entity.User{}))

	require.NoError(t, database.MigrateUp(db, cfg))
	for _, model := range database.Models() {
		assert.True(t, db.Migrator().HasTable(model))
	}
}

func TestPostgresURL(t *testing.T) {
	url := database.PostgresURL(config.DBConfig{
		Host:     "db",
		Port:     "5432",
		User:     "app",
		Password: "p@ss",
		Name:     "scheduler",
		SSLMode:  "disable",
	})
	assert.Equal(t, "pgx5://app:p%40ss@db:5432/scheduler?sslmode=disable", url)
}
