package service

import (
	"context"

	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuditService interface {
	LogCreate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, action string, entityName string, entityID string, newValue interface{}) error
	LogUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) error
	History(ctx context.Context, db *gorm.DB, entityID string) ([]entity.AuditLog, error)
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

// LogCreate logs a create action. tx must be the transaction that performed the create.
func (s *auditService) LogCreate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, action string, entityName string, entityID string, newValue interface{}) error {
	return s.write(ctx, tx, userID, action, entityID, entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": nil,
		"new_value": newValue,
	})
}

// LogUpdate logs an update action with old and new values
func (s *auditService) LogUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	return s.write(ctx, tx, userID, action, entityID, entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": oldValue,
		"new_value": newValue,
	})
}

// History returns the entries recorded for an entity, oldest first
func (s *auditService) History(ctx context.Context, db *gorm.DB, entityID string) ([]entity.AuditLog, error) {
	logs, err := s.auditRepo.FindByEntityID(db.WithContext(ctx), entityID)
	if err != nil {
		s.log.Warnf("Failed to find audit logs for %s: %+v", entityID, err)
		return nil, err
	}
	return logs, nil
}

func (s *auditService) write(ctx context.Context, tx *gorm.DB, userID uuid.UUID, action string, entityID string, metadata entity.JSON) error {
	auditLog := &entity.AuditLog{
		UserID:   &userID,
		Action:   action,
		EntityID: entityID,
		Metadata: metadata,
	}

	if err := s.auditRepo.Create(tx.WithContext(ctx), auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}

	return nil
}
