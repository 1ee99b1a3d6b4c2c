package database

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"CareerFindr-backend/internal/model"
)

var seedOnce sync.Once

func seededInstance(t *testing.T) *DBinstanceStruct {
	t.Helper()
	db := newTestInstance(t)
	seedOnce.Do(func() {
		require.NoError(t, seedTestData(db))
	})
	return db
}

func newCourseApplication(t *testing.T, db *DBinstanceStruct, student uuid.UUID, course model.Course) model.Application {
	t.Helper()
	app := model.Application{
		StudentID:  student,
		OwnerID:    course.InstitutionID,
		Type:       model.ApplicationTypeCourse,
		TargetID:   course.ID,
		Status:     model.ApplicationStatusPending,
		Motivation: strings.Repeat("motivated ", 12),
	}
	require.NoError(t, db.Create(&app).Error)
	t.Cleanup(func() {
		db.Where("application_id = ?", app.ID).Delete(&model.Admission{})
		db.Delete(&model.Application{}, app.ID)
	})
	return app
}

func TestUpdateApplicationStatus_ApproveCreatesAdmission(t *testing.T) {
	db := seededInstance(t)
	app := newCourseApplication(t, db, TestStudent1.UserID, TestCourseOpen)

	updated, adm, err := db.UpdateApplicationStatus(context.Background(), TestInstitution1.UserID, app.ID, model.ApplicationStatusApproved, "Welcome aboard")
	require.NoError(t, err)
	require.NotNil(t, adm)

	assert.Equal(t, model.ApplicationStatusApproved, updated.Status)
	assert.Equal(t, "Welcome aboard", updated.ReviewerNote)
	assert.NotNil(t, updated.ReviewedAt)
	assert.Equal(t, app.ID, adm.ApplicationID)
	assert.Equal(t, TestCourseOpen.ID, adm.CourseID)
	assert.Equal(t, model.AdmissionStatusPending, adm.Status)

	var stored model.Application
	require.NoError(t, db.First(&stored, app.ID).Error)
	assert.Equal(t, model.ApplicationStatusApproved, stored.Status)

	var count int64
	require.NoError(t, db.Model(&model.Admission{}).Where("application_id = ?", app.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateApplicationStatus_SecondApproveRejected(t *testing.T) {
	db := seededInstance(t)
	app := newCourseApplication(t, db, TestStudent2.UserID, TestCourseOpen)

	_, _, err := db.UpdateApplicationStatus(context.Background(), TestInstitution1.UserID, app.ID, model.ApplicationStatusApproved, "")
	require.NoError(t, err)

	_, adm, err := db.UpdateApplicationStatus(context.Background(), TestInstitution1.UserID, app.ID, model.ApplicationStatusApproved, "")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	assert.Nil(t, adm)

	var count int64
	require.NoError(t, db.Model(&model.Admission{}).Where("application_id = ?", app.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateApplicationStatus_ConcurrentApprove(t *testing.T) {
	db := seededInstance(t)
	app := newCourseApplication(t, db, TestStudent1.UserID, TestCourseOtherInstitute)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = db.UpdateApplicationStatus(context.Background(), TestInstitution2.UserID, app.ID, model.ApplicationStatusApproved, "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)

	var count int64
	require.NoError(t, db.Model(&model.Admission{}).Where("application_id = ?", app.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateApplicationStatus_RejectNoAdmission(t *testing.T) {
	db := seededInstance(t)
	app := newCourseApplication(t, db, TestStudent2.UserID, TestCourseClosed)

	updated, adm, err := db.UpdateApplicationStatus(context.Background(), TestInstitution1.UserID, app.ID, model.ApplicationStatusRejected, "Seats are full")
	require.NoError(t, err)
	assert.Nil(t, adm)
	assert.Equal(t, model.ApplicationStatusRejected, updated.Status)
}

func TestUpdateApplicationStatus_NotOwner(t *testing.T) {
	db := seededInstance(t)
	app := newCourseApplication(t, db, TestStudent1.UserID, TestCourseClosed)

	_, _, err := db.UpdateApplicationStatus(context.Background(), TestInstitution2.UserID, app.ID, model.ApplicationStatusApproved, "")
	assert.ErrorIs(t, err, ErrForbidden)

	var stored model.Application
	require.NoError(t, db.First(&stored, app.ID).Error)
	assert.Equal(t, model.ApplicationStatusPending, stored.Status)
}

func TestUpdateApplicationStatus_NotFound(t *testing.T) {
	db := seededInstance(t)

	_, _, err := db.UpdateApplicationStatus(context.Background(), TestInstitution1.UserID, 999999, model.ApplicationStatusApproved, "")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRespondAdmission_Decline(t *testing.T) {
	db := seededInstance(t)
	app := newCourseApplication(t, db, TestStudent2.UserID, TestCourseOtherInstitute)

	_, adm, err := db.UpdateApplicationStatus(context.Background(), TestInstitution2.UserID, app.ID, model.ApplicationStatusApproved, "")
	require.NoError(t, err)

	_, err = db.RespondAdmission(context.Background(), TestStudent1.UserID, adm.ID, model.DecisionDecline)
	assert.ErrorIs(t, err, ErrForbidden)

	responded, err := db.RespondAdmission(context.Background(), TestStudent2.UserID, adm.ID, model.DecisionDecline)
	require.NoError(t, err)
	assert.Equal(t, model.AdmissionStatusDeclined, responded.Status)
	assert.NotNil(t, responded.RespondedAt)

	var stored model.Application
	require.NoError(t, db.First(&stored, app.ID).Error)
	assert.Equal(t, model.ApplicationStatusDeclined, stored.Status)

	_, err = db.RespondAdmission(context.Background(), TestStudent2.UserID, adm.ID, model.DecisionAccept)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestRespondAdmission_Accept(t *testing.T) {
	db := seededInstance(t)
	app := newCourseApplication(t, db, TestStudent1.UserID, TestCourseClosed)

	_, adm, err := db.UpdateApplicationStatus(context.Background(), TestInstitution1.UserID, app.ID, model.ApplicationStatusApproved, "")
	require.NoError(t, err)

	responded, err := db.RespondAdmission(context.Background(), TestStudent1.UserID, adm.ID, model.DecisionAccept)
	require.NoError(t, err)
	assert.Equal(t, model.AdmissionStatusAccepted, responded.Status)

	var stored model.Application
	require.NoError(t, db.First(&stored, app.ID).Error)
	assert.Equal(t, model.ApplicationStatusApproved, stored.Status)
}

func TestIsUniqueViolation(t *testing.T) {
	db := seededInstance(t)

	dup := model.User{ID: uuid.New(), Username: TestUserStudent1.Username, Role: model.RoleStudent}
	err := db.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsForeignKeyViolation(err))
	assert.False(t, IsUniqueViolation(nil))
}
