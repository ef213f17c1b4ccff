package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CaseAction labels an audit entry.
type CaseAction string

const (
	CaseActionCreated  CaseAction = "CASE_CREATED"
	CaseActionResolved CaseAction = "CASE_RESOLVED"
	CaseActionReopened CaseAction = "CASE_REOPENED"
)

// CaseLog is an append-only audit entry about a case.
type CaseLog struct {
	ID     uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	CaseID uuid.UUID  `json:"caseId" gorm:"type:char(36);not null;index"`
	Action CaseAction `json:"action" gorm:"type:varchar(32);not null"`
	ByRole Role       `json:"byRole" gorm:"type:varchar(10);not null"`
	ByUser string     `json:"byUser" gorm:"size:255"`
	At     time.Time  `json:"at" gorm:"index"`
}

// BeforeCreate sets UUID and the entry time.
func (l *CaseLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.At.IsZero() {
		l.At = time.Now()
	}
	return nil
}
