package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Type of application target
const (
	ApplicationTypeCourse = "course"
	ApplicationTypeJob    = "job"
)

const (
	// ApplicationStatusPending indicates that the application is waiting for review
	ApplicationStatusPending = "pending"
	// ApplicationStatusApproved indicates that the course application is approved and admission is offered
	ApplicationStatusApproved = "approved"
	// ApplicationStatusAccepted indicates that the job application is accepted by company
	ApplicationStatusAccepted = "accepted"
	// ApplicationStatusRejected indicates that the application has been rejected by reviewer
	ApplicationStatusRejected = "rejected"
	// ApplicationStatusDeclined indicates that student declined the offer
	ApplicationStatusDeclined = "declined"
)

var (
	// ErrInvalidStatus is returned when status is not known for the application type
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidTransition is returned when application can't move from current status to the requested one
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrForbidden is returned when user try to act on record that isn't theirs
	ErrForbidden = errors.New("you don't have permission to modify this record")
)

// Application represents a student's submission for a course or a job
type Application struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	StudentID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_application_target,priority:1" json:"student_id"`
	Student   *StudentProfile `gorm:"foreignKey:StudentID;references:UserID;constraint:OnDelete:CASCADE" json:"student,omitempty"`

	// OwnerID is user id of institution or company that publish the target
	OwnerID  uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Type     string    `gorm:"type:text;not null;uniqueIndex:idx_application_target,priority:2" json:"type"`
	TargetID uint      `gorm:"not null;uniqueIndex:idx_application_target,priority:3" json:"target_id"`
	Status   string    `gorm:"type:text;not null;default:'pending';index" json:"status"`

	Motivation   string            `gorm:"type:text" json:"motivation"`
	CoverLetter  string            `gorm:"type:text" json:"cover_letter"`
	Answers      datatypes.JSONMap `gorm:"type:jsonb" json:"answers,omitempty"`
	Documents    []File            `gorm:"many2many:application_documents;constraint:OnDelete:CASCADE" json:"documents"`
	ReviewerNote string            `gorm:"type:text" json:"reviewer_note"`

	SubmittedAt time.Time  `gorm:"autoCreateTime" json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Admission *Admission `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"admission,omitempty"`
}

// ValidApplicationType report whether t is a known application type
func ValidApplicationType(t string) bool {
	return t == ApplicationTypeCourse || t == ApplicationTypeJob
}

// ReviewStatuses return statuses reviewer can move application of given type into
func ReviewStatuses(applicationType string) []string {
	switch applicationType {
	case ApplicationTypeCourse:
		return []string{ApplicationStatusApproved, ApplicationStatusRejected}
	case ApplicationTypeJob:
		return []string{ApplicationStatusAccepted, ApplicationStatusRejected}
	}
	return nil
}

// CanTransitionTo report whether reviewer may move application into next status
func (a *Application) CanTransitionTo(next string) bool {
	if a.Status != ApplicationStatusPending {
		return false
	}
	for _, s := range ReviewStatuses(a.Type) {
		if s == next {
			return true
		}
	}
	return false
}

// Review move pending application into next status and record reviewer note.
func (a *Application) Review(next string, note string, now time.Time) error {
	known := false
	for _, s := range []string{ApplicationStatusPending, ApplicationStatusApproved, ApplicationStatusAccepted, ApplicationStatusRejected, ApplicationStatusDeclined} {
		if s == next {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, next)
	}

	if !a.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s application can't move from %s to %s", ErrInvalidTransition, a.Type, a.Status, next)
	}

	a.Status = next
	a.ReviewerNote = note
	a.ReviewedAt = &now
	return nil
}

// Decline mark approved course application as declined when student turns down its admission
func (a *Application) Decline() error {
	if a.Type != ApplicationTypeCourse || a.Status != ApplicationStatusApproved {
		return fmt.Errorf("%w: can't decline %s %s application", ErrInvalidTransition, a.Status, a.Type)
	}
	a.Status = ApplicationStatusDeclined
	return nil
}

// Withdrawable report whether student can still withdraw the application
func (a *Application) Withdrawable() bool {
	return a.Status == ApplicationStatusPending
}

// NewAdmission build admission offer of approved course application
func (a *Application) NewAdmission() (Admission, error) {
	if a.Type != ApplicationTypeCourse || a.Status != ApplicationStatusApproved {
		return Admission{}, fmt.Errorf("%w: only approved course application can be admitted", ErrInvalidTransition)
	}
	return Admission{
		ApplicationID: a.ID,
		StudentID:     a.StudentID,
		InstitutionID: a.OwnerID,
		CourseID:      a.TargetID,
		Status:        AdmissionStatusPending,
	}, nil
}
