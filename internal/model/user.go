package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Role of each user
const (
	RoleStudent     = "student"
	RoleInstitution = "institution"
	RoleCompany     = "company"
	RoleAdmin       = "admin"
)

// EditableUserInfo is part of user that owner can edit
type EditableUserInfo struct {
	Email          *string `gorm:"uniqueIndex" json:"email"`
	ProfilePicture string  `json:"profile_picture"`
}

// User is base account of every role
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Username string    `gorm:"uniqueIndex;not null" json:"username"`
	Password string    `json:"-"`
	GoogleID *string   `gorm:"uniqueIndex" json:"-"`
	Role     string    `gorm:"type:text;not null;index" json:"role"`
	EditableUserInfo
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EditableStudentInfo is part of student profile that student can edit
type EditableStudentInfo struct {
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	Phone          *string        `json:"phone" binding:"omitempty,phone"`
	DateOfBirth    *time.Time     `gorm:"type:date" json:"date_of_birth,omitempty"`
	EducationLevel *string        `json:"education_level"`
	Skills         pq.StringArray `gorm:"type:text[]" json:"skills"`
}

// StudentProfile hold student specific information
type StudentProfile struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"user"`
	EditableStudentInfo
	ResumeID *int  `json:"resume_id"`
	Resume   *File `gorm:"foreignKey:ResumeID;references:ID;constraint:OnDelete:SET NULL" json:"-"`
}

// FullName return first name and last name joined with space
func (s StudentProfile) FullName() string {
	switch {
	case s.FirstName == "":
		return s.LastName
	case s.LastName == "":
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// EditableOrganizationInfo is part of institution and company profile that owner can edit
type EditableOrganizationInfo struct {
	Name        string  `json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Location    string  `json:"location"`
	Website     *string `json:"website" binding:"omitempty,url"`
	Phone       *string `json:"phone" binding:"omitempty,phone"`
}

// Institution is profile of user that offer courses
type Institution struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"user"`
	Slug   string    `gorm:"uniqueIndex;not null" json:"slug"`
	EditableOrganizationInfo
	Verified bool     `gorm:"default:false" json:"verified"`
	LogoID   *int     `json:"logo_id"`
	Logo     *File    `gorm:"foreignKey:LogoID;references:ID;constraint:OnDelete:SET NULL" json:"-"`
	Courses  []Course `gorm:"foreignKey:InstitutionID;references:UserID" json:"courses,omitempty"`
}

// Company is profile of user that offer jobs
type Company struct {
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User     User      `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"user"`
	Slug     string    `gorm:"uniqueIndex;not null" json:"slug"`
	Industry string    `json:"industry"`
	EditableOrganizationInfo
	Verified bool  `gorm:"default:false" json:"verified"`
	LogoID   *int  `json:"logo_id"`
	Logo     *File `gorm:"foreignKey:LogoID;references:ID;constraint:OnDelete:SET NULL" json:"-"`
	Jobs     []Job `gorm:"foreignKey:CompanyID;references:UserID" json:"jobs,omitempty"`
}
