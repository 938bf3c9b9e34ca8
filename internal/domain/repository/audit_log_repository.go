package repository

import (
	"appointment-scheduler/internal/domain/entity"

	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Create(db *gorm.DB, log *entity.AuditLog) error
	FindByEntityID(db *gorm.DB, entityID string) ([]entity.AuditLog, error)
}
