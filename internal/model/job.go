package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// EditableJobInfo is part of job that company can edit
type EditableJobInfo struct {
	Title        string         `gorm:"type:text;not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	Location     string         `gorm:"type:text" json:"location"`
	JobType      string         `gorm:"type:text;index" json:"job_type"`
	SalaryRange  string         `gorm:"type:text" json:"salary_range"`
	Requirements pq.StringArray `gorm:"type:text[]" json:"requirements"`
	ClosingDate  *time.Time     `gorm:"type:timestamp" json:"closing_date,omitempty"`
}

// Job is gorm model for job posted by company
type Job struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index;<-:create" json:"company_id"`
	Company   *Company  `gorm:"foreignKey:CompanyID;references:UserID;constraint:OnDelete:CASCADE" json:"company,omitempty"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	EditableJobInfo
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOpen report whether job still accept application at given time
func (j *Job) IsOpen(now time.Time) bool {
	return j.ClosingDate == nil || j.ClosingDate.After(now)
}
