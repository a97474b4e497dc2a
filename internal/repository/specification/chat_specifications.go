package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByActive struct {
	Active bool
}

func (s ByActive) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", s.Active)
}

type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}
