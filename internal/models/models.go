package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is the lifecycle state of an application.
// Values are case-sensitive and must match the store's CHECK constraint.
type Status string

const (
	StatusApplied   Status = "Applied"
	StatusAccepted  Status = "Accepted"
	StatusWithdrawn Status = "Withdrawn"
	StatusRejected  Status = "Rejected"
)

// DefaultStatus is used when a new application does not name one.
const DefaultStatus = StatusApplied

// Statuses lists every allowed status in display order.
var Statuses = []Status{StatusApplied, StatusAccepted, StatusWithdrawn, StatusRejected}

// ParseStatus reports whether s is one of Statuses.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// StatusNames returns Statuses as plain strings.
func StatusNames() []string {
	names := make([]string, len(Statuses))
	for i, st := range Statuses {
		names[i] = string(st)
	}
	return names
}

type Application struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id" dynamodbav:"id"`
	CompanyName string    `gorm:"not null" json:"company_name" dynamodbav:"company_name"`
	Role        string    `gorm:"not null" json:"role" dynamodbav:"role"`
	Status      Status    `gorm:"not null;default:'Applied'" json:"status" dynamodbav:"status"`
	ResumeURL   *string   `json:"resume_url" dynamodbav:"resume_url,omitempty"`
	AppliedDate time.Time `gorm:"not null;index" json:"applied_date" dynamodbav:"applied_date"`
}

func (Application) TableName() string {
	return "job_applications"
}

// BeforeCreate assigns the id when the caller left it empty.
func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
