package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotRequest struct {
	DoctorID string `validate:"required,uuid"`
	Date     string `validate:"required,datetime=2006-01-02"`
	TimeSlot string `validate:"required,timeslot"`
	Status   string `validate:"omitempty,oneof=PENDING APPROVED"`
}

func TestValidate_TimeSlot(t *testing.T) {
	v := NewValidator()

	valid := []string{"09:00 AM", "12:45 PM", "04:15 PM", "11:59 PM"}
	for _, slot := range valid {
		err := v.Validate(&slotRequest{DoctorID: "6f1c2a8e-1d2b-4f3c-9a7b-0e5d4c3b2a19", Date: "2030-03-04", TimeSlot: slot})
		assert.NoError(t, err, slot)
	}

	invalid := []string{"9:00 AM", "09:00", "21:00 PM", "09:00 am", "09:00AM", "13:00 PM"}
	for _, slot := range invalid {
		err := v.Validate(&slotRequest{DoctorID: "6f1c2a8e-1d2b-4f3c-9a7b-0e5d4c3b2a19", Date: "2030-03-04", TimeSlot: slot})
		assert.Error(t, err, slot)
	}
}

func TestFormatValidationErrors(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&slotRequest{DoctorID: "x", Date: "04-03-2030", TimeSlot: "", Status: "DONE"})
	require.Error(t, err)

	fields := v.FormatValidationErrors(err)
	assert.Equal(t, "DoctorID must be a valid UUID", fields["DoctorID"])
	assert.Equal(t, "Date must be a date in YYYY-MM-DD format", fields["Date"])
	assert.Equal(t, "TimeSlot is required", fields["TimeSlot"])
	assert.Equal(t, "Status must be one of PENDING APPROVED", fields["Status"])
}
