package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"appointment-scheduler/internal/domain/entity"
	domainRepo "appointment-scheduler/internal/domain/repository"
	"appointment-scheduler/internal/repository"
	"appointment-scheduler/internal/testutil"
	"appointment-scheduler/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testDate = "2030-03-04"
	testSlot = "10:00 AM"
)

type ledgerFixture struct {
	db       *gorm.DB
	ledger   *BookingLedger
	doctor   entity.Actor
	patientA entity.Actor
	patientB entity.Actor
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	db := testutil.NewDB(t)
	log := testutil.NewLogger()

	auditService := NewAuditService(log, repository.NewAuditLogRepository())
	ledger := NewBookingLedger(db, log, repository.NewAppointmentRepository(), auditService, NewStatusTransitionEngine())

	return &ledgerFixture{
		db:       db,
		ledger:   ledger,
		doctor:   testutil.Actor(testutil.CreateDoctor(t, db, "carter", nil)),
		patientA: testutil.Actor(testutil.CreatePatient(t, db, "alice")),
		patientB: testutil.Actor(testutil.CreatePatient(t, db, "bob")),
	}
}

func (f *ledgerFixture) book(t *testing.T, patient entity.Actor, slot string) *entity.Appointment {
	t.Helper()
	appointment := &entity.Appointment{
		PatientID: patient.ID,
		DoctorID:  f.doctor.ID,
		Date:      testDate,
		TimeSlot:  slot,
	}
	require.NoError(t, f.ledger.Create(context.Background(), appointment))
	return appointment
}

func TestBookingLedger_CreatePending(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	appointment := f.book(t, f.patientA, testSlot)
	assert.NotEqual(t, uuid.Nil, appointment.ID)
	assert.Equal(t, entity.AppointmentStatusPending, appointment.Status)

	stored, err := f.ledger.FindByID(ctx, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStatusPending, stored.Status)
	require.NotNil(t, stored.Patient)
	assert.Equal(t, "alice", stored.Patient.FullName)
	require.NotNil(t, stored.Doctor)
	assert.Equal(t, "carter", stored.Doctor.FullName)

	history, err := f.ledger.History(ctx, appointment.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.AuditActionAppointmentCreate, history[0].Action)
}

func TestBookingLedger_CompetingPendingRequestsAllowed(t *testing.T) {
	f := newLedgerFixture(t)

	f.book(t, f.patientA, testSlot)
	f.book(t, f.patientB, testSlot)

	booked, err := f.ledger.BookedSlots(context.Background(), f.doctor.ID, testDate)
	require.NoError(t, err)
	assert.Equal(t, []string{testSlot, testSlot}, booked)
}

func TestBookingLedger_CreateRejectsDuplicateForSamePatient(t *testing.T) {
	f := newLedgerFixture(t)
	f.book(t, f.patientA, testSlot)

	err := f.ledger.Create(context.Background(), &entity.Appointment{
		PatientID: f.patientA.ID,
		DoctorID:  f.doctor.ID,
		Date:      testDate,
		TimeSlot:  testSlot,
	})
	assert.ErrorIs(t, err, ErrDuplicateBooking)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestBookingLedger_CreateRejectsApprovedSlot(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	first := f.book(t, f.patientA, testSlot)
	_, err := f.ledger.Transition(ctx, f.doctor, first.ID, entity.AppointmentStatusApproved)
	require.NoError(t, err)

	err = f.ledger.Create(ctx, &entity.Appointment{
		PatientID: f.patientB.ID,
		DoctorID:  f.doctor.ID,
		Date:      testDate,
		TimeSlot:  testSlot,
	})
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Equal(t, "This time slot is already approved and booked. Please select another time.", apperror.MessageOf(err))
}

func TestBookingLedger_ApprovalGuard(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	first := f.book(t, f.patientA, testSlot)
	second := f.book(t, f.patientB, testSlot)

	approved, err := f.ledger.Transition(ctx, f.doctor, first.ID, entity.AppointmentStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStatusApproved, approved.Status)

	_, err = f.ledger.Transition(ctx, f.doctor, second.ID, entity.AppointmentStatusApproved)
	assert.ErrorIs(t, err, ErrApprovalConflict)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	// the rejected request is untouched and can still be resolved
	stored, err := f.ledger.FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStatusPending, stored.Status)

	completed, err := f.ledger.Transition(ctx, f.doctor, second.ID, entity.AppointmentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStatusCompleted, completed.Status)
}

func TestBookingLedger_ApprovalAllowedAfterHolderCancelled(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	first := f.book(t, f.patientA, testSlot)
	second := f.book(t, f.patientB, testSlot)

	_, err := f.ledger.Transition(ctx, f.doctor, first.ID, entity.AppointmentStatusApproved)
	require.NoError(t, err)
	_, err = f.ledger.Transition(ctx, f.doctor, first.ID, entity.AppointmentStatusCancelled)
	require.NoError(t, err)

	_, err = f.ledger.Transition(ctx, f.doctor, second.ID, entity.AppointmentStatusApproved)
	assert.NoError(t, err)
}

func TestBookingLedger_ConcurrentApprovalsOneWins(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	ids := []uuid.UUID{
		f.book(t, f.patientA, testSlot).ID,
		f.book(t, f.patientB, testSlot).ID,
	}

	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = f.ledger.Transition(ctx, f.doctor, id, entity.AppointmentStatusApproved)
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrApprovalConflict)
	}
	assert.Equal(t, 1, succeeded)

	var approved int64
	require.NoError(t, f.db.Model(&entity.Appointment{}).
		Where("doctor_id = ? AND date = ? AND time_slot = ? AND status = ?", f.doctor.ID, testDate, testSlot, entity.AppointmentStatusApproved).
		Count(&approved).Error)
	assert.Equal(t, int64(1), approved)
}

// staleGuardRepository reports no approved holder, as a racing transaction
// would see before the other approval commits
type staleGuardRepository struct {
	domainRepo.AppointmentRepository
}

func (staleGuardRepository) ExistsApproved(*gorm.DB, uuid.UUID, string, string, uuid.UUID) (bool, error) {
	return false, nil
}

func TestBookingLedger_UniqueIndexRejectsSecondApproval(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	log := testutil.NewLogger()
	f.ledger = NewBookingLedger(f.db, log,
		staleGuardRepository{AppointmentRepository: repository.NewAppointmentRepository()},
		NewAuditService(log, repository.NewAuditLogRepository()),
		NewStatusTransitionEngine())

	first := f.book(t, f.patientA, testSlot)
	second := f.book(t, f.patientB, testSlot)

	_, err := f.ledger.Transition(ctx, f.doctor, first.ID, entity.AppointmentStatusApproved)
	require.NoError(t, err)

	_, err = f.ledger.Transition(ctx, f.doctor, second.ID, entity.AppointmentStatusApproved)
	assert.ErrorIs(t, err, ErrApprovalConflict)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	// rolled back together with its audit entry
	stored, err := f.ledger.FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStatusPending, stored.Status)

	history, err := f.ledger.History(ctx, second.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm duplicated key", fmt.Errorf("update status: %w", gorm.ErrDuplicatedKey), true},
		{"postgres unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped postgres unique violation", fmt.Errorf("commit: %w", &pgconn.PgError{Code: "23505"}), true},
		{"postgres foreign key violation", &pgconn.PgError{Code: "23503"}, false},
		{"other error", errors.New("connection reset"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}

func TestBookingLedger_TransitionFailures(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.ledger.Transition(ctx, f.doctor, uuid.New(), entity.AppointmentStatusApproved)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	appointment := f.book(t, f.patientA, testSlot)

	_, err = f.ledger.Transition(ctx, f.patientB, appointment.ID, entity.AppointmentStatusCancelled)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = f.ledger.Transition(ctx, f.patientA, appointment.ID, entity.AppointmentStatusApproved)
	assert.ErrorIs(t, err, ErrDoctorOnlyTransition)

	_, err = f.ledger.Transition(ctx, f.patientA, appointment.ID, entity.AppointmentStatusCancelled)
	require.NoError(t, err)

	_, err = f.ledger.Transition(ctx, f.doctor, appointment.ID, entity.AppointmentStatusApproved)
	assert.ErrorIs(t, err, ErrAppointmentCancelled)
}

func TestBookingLedger_BookedSlotsIgnoreClosedAppointments(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	cancelled := f.book(t, f.patientA, "09:00 AM")
	completed := f.book(t, f.patientA, "09:15 AM")
	f.book(t, f.patientA, "09:30 AM")
	approved := f.book(t, f.patientB, "09:45 AM")

	_, err := f.ledger.Transition(ctx, f.patientA, cancelled.ID, entity.AppointmentStatusCancelled)
	require.NoError(t, err)
	_, err = f.ledger.Transition(ctx, f.doctor, completed.ID, entity.AppointmentStatusCompleted)
	require.NoError(t, err)
	_, err = f.ledger.Transition(ctx, f.doctor, approved.ID, entity.AppointmentStatusApproved)
	require.NoError(t, err)

	booked, err := f.ledger.BookedSlots(ctx, f.doctor.ID, testDate)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"09:30 AM", "09:45 AM"}, booked)

	other, err := f.ledger.BookedSlots(ctx, f.doctor.ID, "2030-03-05")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestBookingLedger_FindByActor(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	f.book(t, f.patientA, "09:00 AM")
	f.book(t, f.patientB, "09:15 AM")
	f.book(t, f.patientA, "09:30 AM")

	mine, err := f.ledger.FindByActor(ctx, f.patientA)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, a := range mine {
		assert.Equal(t, f.patientA.ID, a.PatientID)
		require.NotNil(t, a.Doctor)
	}

	schedule, err := f.ledger.FindByActor(ctx, f.doctor)
	require.NoError(t, err)
	assert.Len(t, schedule, 3)
	for _, a := range schedule {
		require.NotNil(t, a.Patient)
	}

	_, err = f.ledger.FindByActor(ctx, entity.Actor{ID: uuid.New(), Role: "ADMIN"})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestBookingLedger_HistoryRecordsEveryChange(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	appointment := f.book(t, f.patientA, testSlot)
	_, err := f.ledger.Transition(ctx, f.doctor, appointment.ID, entity.AppointmentStatusApproved)
	require.NoError(t, err)
	_, err = f.ledger.Transition(ctx, f.doctor, appointment.ID, entity.AppointmentStatusCompleted)
	require.NoError(t, err)

	history, err := f.ledger.History(ctx, appointment.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.Equal(t, entity.AuditActionAppointmentCreate, history[0].Action)
	assert.Equal(t, f.patientA.ID, *history[0].UserID)

	assert.Equal(t, entity.AuditActionAppointmentApprove, history[1].Action)
	assert.Equal(t, "PENDING", history[1].Metadata["old_value"])
	assert.Equal(t, "APPROVED", history[1].Metadata["new_value"])
	assert.Equal(t, f.doctor.ID, *history[1].UserID)

	assert.Equal(t, entity.AuditActionAppointmentComplete, history[2].Action)
}
