package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status of admission offer
const (
	AdmissionStatusPending  = "pending"
	AdmissionStatusAccepted = "accepted"
	AdmissionStatusDeclined = "declined"
)

// Decision student can give to admission offer
const (
	DecisionAccept  = "accept"
	DecisionDecline = "decline"
)

// Admission is offer created once when course application is approved
type Admission struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	ApplicationID uint            `gorm:"not null;uniqueIndex" json:"application_id"`
	StudentID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"student_id"`
	Student       *StudentProfile `gorm:"foreignKey:StudentID;references:UserID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	InstitutionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"institution_id"`
	CourseID      uint            `gorm:"not null;index" json:"course_id"`
	Course        *Course         `gorm:"foreignKey:CourseID;references:ID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Status        string          `gorm:"type:text;not null;default:'pending';check:status IN ('pending', 'accepted', 'declined')" json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

// Respond apply student decision to pending admission
func (a *Admission) Respond(decision string, now time.Time) error {
	if a.Status != AdmissionStatusPending {
		return fmt.Errorf("%w: admission already %s", ErrInvalidTransition, a.Status)
	}

	switch decision {
	case DecisionAccept:
		a.Status = AdmissionStatusAccepted
	case DecisionDecline:
		a.Status = AdmissionStatusDeclined
	default:
		return fmt.Errorf("%w: unknown decision %q", ErrInvalidStatus, decision)
	}
	a.RespondedAt = &now
	return nil
}
