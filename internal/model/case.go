package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CaseStatus is the resolution state of a case.
type CaseStatus string

const (
	CaseStatusPending  CaseStatus = "PENDING"
	CaseStatusResolved CaseStatus = "RESOLVED"
)

// Case is a support ticket opened by an agent on behalf of a customer.
// CardNumber holds cipher output only and is never encoded directly.
type Case struct {
	ID           uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	CreatedByID  string          `json:"createdBy" gorm:"type:char(36);index"`
	AgentName    string          `json:"agentName" gorm:"size:255"`
	CustomerName string          `json:"cxName" gorm:"size:255;not null"`
	Phone        string          `json:"phone" gorm:"size:10;not null"`
	Email        string          `json:"email" gorm:"size:255"`
	Address      string          `json:"address" gorm:"type:text"`
	Device       string          `json:"device" gorm:"size:100"`
	Model        string          `json:"model" gorm:"size:100"`
	ISP          string          `json:"isp" gorm:"size:100"`
	Services     string          `json:"services" gorm:"size:255"`
	PaymentMode  string          `json:"paymentMode" gorm:"size:50"`
	Issue        string          `json:"issue" gorm:"type:text"`
	Remark       string          `json:"remark" gorm:"type:text"`
	Reference    string          `json:"caseId" gorm:"size:100"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null;default:0"`
	CardNumber   string          `json:"-" gorm:"size:128"`

	Resolved   bool       `json:"issueFixed" gorm:"default:false"`
	Status     CaseStatus `json:"status" gorm:"type:varchar(10);not null;default:'PENDING';index"`
	TechRemark string     `json:"techRemark" gorm:"type:text"`
	ResolvedAt *time.Time `json:"fixDate"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate sets UUID and the initial resolution state.
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = CaseStatusPending
	}
	return nil
}

// ApplyResolution moves the case to RESOLVED when fixed is true and back to
// PENDING otherwise. Status, Resolved and ResolvedAt always change together.
// Re-applying the same target state refreshes the timestamp and remark.
func (c *Case) ApplyResolution(fixed bool, remark string, now time.Time) {
	c.Resolved = fixed
	c.TechRemark = remark
	if fixed {
		c.Status = CaseStatusResolved
		at := now
		c.ResolvedAt = &at
		return
	}
	c.Status = CaseStatusPending
	c.ResolvedAt = nil
}
