package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"CareerFindr-backend/internal/model"
)

// ErrForbidden is returned when user try to act on record that isn't theirs
var ErrForbidden = model.ErrForbidden

// Postgres error codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// IsUniqueViolation report whether err is caused by unique constraint
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// IsForeignKeyViolation report whether err is caused by foreign key constraint
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// UpdateApplicationStatus move application owned by reviewer into status. When course
// application is approved the admission offer is created in the same transaction, so the
// returned admission is nil for every other transition.
func (d *DBinstanceStruct) UpdateApplicationStatus(
	ctx context.Context,
	reviewerID uuid.UUID,
	applicationID uint,
	status string,
	note string,
) (model.Application, *model.Admission, error) {
	var app model.Application
	var admission *model.Admission

	err := d.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&app, applicationID).Error; err != nil {
			return err
		}
		if app.OwnerID != reviewerID {
			return ErrForbidden
		}

		if err := app.Review(status, note, time.Now()); err != nil {
			return err
		}

		if err := tx.Model(&model.Application{ID: app.ID}).Updates(map[string]interface{}{
			"status":        app.Status,
			"reviewer_note": app.ReviewerNote,
			"reviewed_at":   app.ReviewedAt,
		}).Error; err != nil {
			return err
		}

		if app.Type != model.ApplicationTypeCourse || app.Status != model.ApplicationStatusApproved {
			return nil
		}

		adm, err := app.NewAdmission()
		if err != nil {
			return err
		}
		if err := tx.Create(&adm).Error; err != nil {
			return err
		}
		admission = &adm
		return nil
	})
	if err != nil {
		return model.Application{}, nil, err
	}

	app.Admission = admission
	return app, admission, nil
}

// RespondAdmission record student decision on admission offer. Declining also move the
// underlying application to declined.
func (d *DBinstanceStruct) RespondAdmission(
	ctx context.Context,
	studentID uuid.UUID,
	admissionID uint,
	decision string,
) (model.Admission, error) {
	var admission model.Admission

	err := d.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&admission, admissionID).Error; err != nil {
			return err
		}
		if admission.StudentID != studentID {
			return ErrForbidden
		}

		if err := admission.Respond(decision, time.Now()); err != nil {
			return err
		}
		if err := tx.Model(&model.Admission{ID: admission.ID}).Updates(map[string]interface{}{
			"status":       admission.Status,
			"responded_at": admission.RespondedAt,
		}).Error; err != nil {
			return err
		}

		if admission.Status != model.AdmissionStatusDeclined {
			return nil
		}

		var app model.Application
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&app, admission.ApplicationID).Error; err != nil {
			return err
		}
		if err := app.Decline(); err != nil {
			return err
		}
		return tx.Model(&model.Application{ID: app.ID}).Update("status", app.Status).Error
	})
	if err != nil {
		return model.Admission{}, err
	}

	return admission, nil
}
