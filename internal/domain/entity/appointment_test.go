package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatus_IsTerminal(t *testing.T) {
	assert.False(t, AppointmentStatusPending.IsTerminal())
	assert.False(t, AppointmentStatusApproved.IsTerminal())
	assert.True(t, AppointmentStatusCompleted.IsTerminal())
	assert.True(t, AppointmentStatusCancelled.IsTerminal())
}

func TestParseAppointmentStatus(t *testing.T) {
	status, ok := ParseAppointmentStatus("APPROVED")
	assert.True(t, ok)
	assert.Equal(t, AppointmentStatusApproved, status)

	_, ok = ParseAppointmentStatus("approved")
	assert.False(t, ok)
}
