package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// EditableCourseInfo is part of course that institution can edit
type EditableCourseInfo struct {
	Title        string         `gorm:"type:text;not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	Faculty      string         `gorm:"type:text;index" json:"faculty"`
	Duration     string         `gorm:"type:text" json:"duration"`
	Fees         string         `gorm:"type:text" json:"fees"`
	Requirements pq.StringArray `gorm:"type:text[]" json:"requirements"`
	Seats        *int           `json:"seats,omitempty"`
	Deadline     *time.Time     `gorm:"type:timestamp" json:"deadline,omitempty"`
}

// Course is gorm model for course offered by institution
type Course struct {
	ID            uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	InstitutionID uuid.UUID    `gorm:"type:uuid;not null;index;<-:create" json:"institution_id"`
	Institution   *Institution `gorm:"foreignKey:InstitutionID;references:UserID;constraint:OnDelete:CASCADE" json:"institution,omitempty"`
	Slug          string       `gorm:"uniqueIndex;not null" json:"slug"`
	EditableCourseInfo
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOpen report whether course still accept application at given time
func (c *Course) IsOpen(now time.Time) bool {
	return c.Deadline == nil || c.Deadline.After(now)
}
