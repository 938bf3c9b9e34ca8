package handler

import (
	"net/http"

	"appointment-scheduler/internal/usecase"
	"appointment-scheduler/pkg/response"
)

// AuditLogHandler serves the status history of appointments
type AuditLogHandler struct {
	schedulingUsecase usecase.SchedulingUsecase
}

func NewAuditLogHandler(schedulingUsecase usecase.SchedulingUsecase) *AuditLogHandler {
	return &AuditLogHandler{
		schedulingUsecase: schedulingUsecase,
	}
}

func (h *AuditLogHandler) GetAppointmentHistory(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	appointmentID, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	history, err := h.schedulingUsecase.GetAppointmentHistory(r.Context(), actor, appointmentID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointment history retrieved successfully", history)
}
