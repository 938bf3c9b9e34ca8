package handler

import (
	"net/http"

	"appointment-scheduler/internal/delivery/http/middleware"
	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/pkg/apperror"
	"appointment-scheduler/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// writeError maps an error kind to its HTTP status.
// Unavailable and unclassified errors always get the generic message.
func writeError(w http.ResponseWriter, err error) {
	message := apperror.MessageOf(err)

	switch apperror.KindOf(err) {
	case apperror.KindInvalidInput:
		response.BadRequest(w, message)
	case apperror.KindNotFound:
		response.NotFound(w, message)
	case apperror.KindForbidden:
		response.Forbidden(w, message)
	case apperror.KindConflict:
		response.Conflict(w, message)
	default:
		response.ServiceUnavailable(w, message)
	}
}

// actorFrom returns the caller set by AuthMiddleware, answering 401 when missing
func actorFrom(w http.ResponseWriter, r *http.Request) (entity.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not found in context")
		return entity.Actor{}, false
	}
	return actor, true
}

// pathUUID parses a UUID route variable, answering 400 when malformed
func pathUUID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	return parseUUID(w, mux.Vars(r)[name], label)
}

// parseUUID answers 400 when value is not a UUID
func parseUUID(w http.ResponseWriter, value, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(value)
	if err != nil {
		response.BadRequest(w, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}
