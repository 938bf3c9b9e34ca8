package database

import (
	"fmt"

	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedPassword is the password of every seeded account
const SeedPassword = "Password123"

type seedDoctor struct {
	email          string
	fullName       string
	specialization string
}

var seedDoctors = []seedDoctor{
	{email: "emily.carter@clinic.test", fullName: "Dr. Emily Carter", specialization: "Cardiology"},
	{email: "benjamin.lee@clinic.test", fullName: "Dr. Benjamin Lee", specialization: "Dermatology"},
	{email: "olivia.rodriguez@clinic.test", fullName: "Dr. Olivia Rodriguez", specialization: "Pediatrics"},
}

// Seeder creates the demo doctors. Existing accounts keep their password;
// only a missing profile is filled in.
type Seeder struct {
	db          *gorm.DB
	log         *logrus.Logger
	userRepo    repository.UserRepository
	profileRepo repository.DoctorProfileRepository
}

func NewSeeder(db *gorm.DB, log *logrus.Logger, userRepo repository.UserRepository, profileRepo repository.DoctorProfileRepository) *Seeder {
	return &Seeder{
		db:          db,
		log:         log,
		userRepo:    userRepo,
		profileRepo: profileRepo,
	}
}

// Seed returns the number of doctors created
func (s *Seeder) Seed() (int, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash seed password: %w", err)
	}

	created := 0
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, d := range seedDoctors {
			user, err := s.userRepo.FindByEmail(tx, d.email)
			if err != nil {
				return err
			}
			if user == nil {
				user = &entity.User{
					Role:     entity.RoleDoctor,
					Email:    d.email,
					Password: string(hashed),
					FullName: d.fullName,
					IsActive: true,
				}
				if err := s.userRepo.Create(tx, user); err != nil {
					return fmt.Errorf("create doctor %s: %w", d.email, err)
				}
				created++
			}

			profile, err := s.profileRepo.FindByUserID(tx, user.ID)
			if err != nil {
				return err
			}
			if profile != nil {
				s.log.Debugf("Doctor %s already seeded, skipping", d.email)
				continue
			}

			if err := s.profileRepo.Upsert(tx, &entity.DoctorProfile{
				UserID:         user.ID,
				Specialization: d.specialization,
				WorkStart:      entity.DefaultWorkingHours.Start,
				WorkEnd:        entity.DefaultWorkingHours.End,
			}); err != nil {
				return fmt.Errorf("create profile for %s: %w", d.email, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Infof("Seeded %d doctor(s)", created)
	return created, nil
}
