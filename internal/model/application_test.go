package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationReview_CourseApprove(t *testing.T) {
	now := time.Now()
	app := Application{Type: ApplicationTypeCourse, Status: ApplicationStatusPending}

	require.NoError(t, app.Review(ApplicationStatusApproved, "welcome", now))
	assert.Equal(t, ApplicationStatusApproved, app.Status)
	assert.Equal(t, "welcome", app.ReviewerNote)
	require.NotNil(t, app.ReviewedAt)
	assert.True(t, app.ReviewedAt.Equal(now))
}

func TestApplicationReview_JobAccept(t *testing.T) {
	app := Application{Type: ApplicationTypeJob, Status: ApplicationStatusPending}

	require.NoError(t, app.Review(ApplicationStatusAccepted, "", time.Now()))
	assert.Equal(t, ApplicationStatusAccepted, app.Status)
}

func TestApplicationReview_WrongStatusForType(t *testing.T) {
	course := Application{Type: ApplicationTypeCourse, Status: ApplicationStatusPending}
	err := course.Review(ApplicationStatusAccepted, "", time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, ApplicationStatusPending, course.Status)

	job := Application{Type: ApplicationTypeJob, Status: ApplicationStatusPending}
	err = job.Review(ApplicationStatusApproved, "", time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApplicationReview_AlreadyReviewed(t *testing.T) {
	app := Application{Type: ApplicationTypeCourse, Status: ApplicationStatusRejected}

	err := app.Review(ApplicationStatusApproved, "", time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, ApplicationStatusRejected, app.Status)
}

func TestApplicationReview_UnknownStatus(t *testing.T) {
	app := Application{Type: ApplicationTypeCourse, Status: ApplicationStatusPending}

	err := app.Review("maybe", "", time.Now())
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestApplicationReview_BackToPending(t *testing.T) {
	app := Application{Type: ApplicationTypeJob, Status: ApplicationStatusPending}

	err := app.Review(ApplicationStatusPending, "", time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApplicationDecline(t *testing.T) {
	app := Application{Type: ApplicationTypeCourse, Status: ApplicationStatusApproved}
	require.NoError(t, app.Decline())
	assert.Equal(t, ApplicationStatusDeclined, app.Status)

	pending := Application{Type: ApplicationTypeCourse, Status: ApplicationStatusPending}
	assert.ErrorIs(t, pending.Decline(), ErrInvalidTransition)

	hired := Application{Type: ApplicationTypeJob, Status: ApplicationStatusAccepted}
	assert.ErrorIs(t, hired.Decline(), ErrInvalidTransition)
	assert.Equal(t, ApplicationStatusAccepted, hired.Status)
}

func TestApplicationWithdrawable(t *testing.T) {
	assert.True(t, (&Application{Status: ApplicationStatusPending}).Withdrawable())
	assert.False(t, (&Application{Status: ApplicationStatusApproved}).Withdrawable())
	assert.False(t, (&Application{Status: ApplicationStatusRejected}).Withdrawable())
}

func TestNewAdmission(t *testing.T) {
	student := uuid.New()
	institution := uuid.New()
	app := Application{
		ID:        12,
		StudentID: student,
		OwnerID:   institution,
		Type:      ApplicationTypeCourse,
		TargetID:  3,
		Status:    ApplicationStatusApproved,
	}

	adm, err := app.NewAdmission()
	require.NoError(t, err)
	assert.Equal(t, uint(12), adm.ApplicationID)
	assert.Equal(t, student, adm.StudentID)
	assert.Equal(t, institution, adm.InstitutionID)
	assert.Equal(t, uint(3), adm.CourseID)
	assert.Equal(t, AdmissionStatusPending, adm.Status)
}

func TestNewAdmission_NotApprovedCourse(t *testing.T) {
	_, err := (&Application{Type: ApplicationTypeJob, Status: ApplicationStatusAccepted}).NewAdmission()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = (&Application{Type: ApplicationTypeCourse, Status: ApplicationStatusPending}).NewAdmission()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAdmissionRespond(t *testing.T) {
	now := time.Now()

	accepted := Admission{Status: AdmissionStatusPending}
	require.NoError(t, accepted.Respond(DecisionAccept, now))
	assert.Equal(t, AdmissionStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.RespondedAt)

	declined := Admission{Status: AdmissionStatusPending}
	require.NoError(t, declined.Respond(DecisionDecline, now))
	assert.Equal(t, AdmissionStatusDeclined, declined.Status)

	assert.ErrorIs(t, accepted.Respond(DecisionDecline, now), ErrInvalidTransition)

	unknown := Admission{Status: AdmissionStatusPending}
	assert.ErrorIs(t, unknown.Respond("later", now), ErrInvalidStatus)
	assert.Nil(t, unknown.RespondedAt)
}

func TestCourseAndJobIsOpen(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&Course{}).IsOpen(now))
	assert.True(t, (&Course{EditableCourseInfo: EditableCourseInfo{Deadline: &future}}).IsOpen(now))
	assert.False(t, (&Course{EditableCourseInfo: EditableCourseInfo{Deadline: &past}}).IsOpen(now))

	assert.True(t, (&Job{}).IsOpen(now))
	assert.False(t, (&Job{EditableJobInfo: EditableJobInfo{ClosingDate: &past}}).IsOpen(now))
}

func TestStudentFullName(t *testing.T) {
	s := StudentProfile{EditableStudentInfo: EditableStudentInfo{FirstName: "Lerato", LastName: "Mokoena"}}
	assert.Equal(t, "Lerato Mokoena", s.FullName())

	s.LastName = ""
	assert.Equal(t, "Lerato", s.FullName())
}
