package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	m "CareerFindr-backend/internal/model"
	"CareerFindr-backend/internal/utilities"
)

var testDBInstance *DBinstanceStruct
var teardown TeardownFunc

// Exported test users & profiles
var (
	TestAdminUser            m.User
	TestUserStudent1         m.User
	TestUserStudent2         m.User
	TestUserInstitution1     m.User
	TestUserInstitution2     m.User
	TestUserCompany1         m.User
	TestUserCompany2         m.User
	TestStudent1             m.StudentProfile
	TestStudent2             m.StudentProfile
	TestInstitution1         m.Institution
	TestInstitution2         m.Institution
	TestCompany1             m.Company
	TestCompany2             m.Company
	TestSeedPassword         = "SeedPass123!"
	TestCourseOpen           m.Course
	TestCourseClosed         m.Course
	TestCourseOtherInstitute m.Course
	TestJobOpen              m.Job
	TestJobClosed            m.Job
)

// GetTestDB starts a PostgreSQL test container with seeded data and returns a teardown
// function, the DB instance, and any error encountered during setup.
func GetTestDB() (TeardownFunc, *DBinstanceStruct, error) {
	if testDBInstance != nil && teardown != nil {
		return teardown, testDBInstance, nil
	}

	dbContainer, dsn, err := startPostgresContainer(context.Background())
	if err != nil {
		if dbContainer != nil {
			return dbContainer.Terminate, nil, err
		}
		return nil, nil, err
	}

	db, err := NewDBInstance(&DBConfig{DSN: dsn})
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	if err := seedTestData(db); err != nil {
		_ = dbContainer.Terminate(context.Background())
		return nil, nil, err
	}

	testDBInstance = db
	teardown = dbContainer.Terminate

	return teardown, db, nil
}

// seedTestData inserts users of every role with their profiles, plus open and closed
// courses and jobs.
func seedTestData(db *DBinstanceStruct) error {
	userSpecs := []struct {
		username string
		email    string
		role     string
		target   *m.User
	}{
		{"student_1", "student1@example.com", m.RoleStudent, &TestUserStudent1},
		{"student_2", "student2@example.com", m.RoleStudent, &TestUserStudent2},
		{"institution_1", "admissions@northfield.example.com", m.RoleInstitution, &TestUserInstitution1},
		{"institution_2", "admissions@coastal.example.com", m.RoleInstitution, &TestUserInstitution2},
		{"company_1", "hr@technova.example.com", m.RoleCompany, &TestUserCompany1},
		{"company_2", "hr@dataforge.example.com", m.RoleCompany, &TestUserCompany2},
		{"admin_user", "admin@example.com", m.RoleAdmin, &TestAdminUser},
	}

	hashedPwd, err := utilities.HashPassword(TestSeedPassword)
	if err != nil {
		return err
	}

	for _, s := range userSpecs {
		u := m.User{
			ID:               uuid.New(),
			Username:         s.username,
			Password:         hashedPwd,
			Role:             s.role,
			EditableUserInfo: m.EditableUserInfo{Email: ptr(s.email)},
		}
		if err := db.Create(&u).Error; err != nil {
			return err
		}
		*s.target = u
	}

	students := []m.StudentProfile{
		{
			UserID: TestUserStudent1.ID,
			EditableStudentInfo: m.EditableStudentInfo{
				FirstName:      "Lerato",
				LastName:       "Mokoena",
				Phone:          ptr("+27821234567"),
				EducationLevel: ptr("Grade 12"),
				Skills:         pq.StringArray{"Mathematics", "Public speaking"},
			},
		},
		{
			UserID: TestUserStudent2.ID,
			EditableStudentInfo: m.EditableStudentInfo{
				FirstName:      "Thabo",
				LastName:       "Nkosi",
				EducationLevel: ptr("Diploma"),
				Skills:         pq.StringArray{"Go", "SQL"},
			},
		},
	}
	if err := db.Create(&students).Error; err != nil {
		return err
	}
	TestStudent1, TestStudent2 = students[0], students[1]

	institutions := []m.Institution{
		{
			UserID:   TestUserInstitution1.ID,
			Slug:     "northfield-university",
			Verified: true,
			EditableOrganizationInfo: m.EditableOrganizationInfo{
				Name:        "Northfield University",
				Description: "Public research university",
				Location:    "Johannesburg",
			},
		},
		{
			UserID: TestUserInstitution2.ID,
			Slug:   "coastal-college",
			EditableOrganizationInfo: m.EditableOrganizationInfo{
				Name:     "Coastal College",
				Location: "Durban",
			},
		},
	}
	if err := db.Create(&institutions).Error; err != nil {
		return err
	}
	TestInstitution1, TestInstitution2 = institutions[0], institutions[1]

	companies := []m.Company{
		{
			UserID:   TestUserCompany1.ID,
			Slug:     "technova",
			Industry: "Software",
			Verified: true,
			EditableOrganizationInfo: m.EditableOrganizationInfo{
				Name:        "TechNova",
				Description: "Innovative platform solutions",
				Location:    "Cape Town",
			},
		},
		{
			UserID:   TestUserCompany2.ID,
			Slug:     "dataforge",
			Industry: "Consulting",
			EditableOrganizationInfo: m.EditableOrganizationInfo{
				Name:     "DataForge",
				Location: "Pretoria",
			},
		},
	}
	if err := db.Create(&companies).Error; err != nil {
		return err
	}
	TestCompany1, TestCompany2 = companies[0], companies[1]

	future := time.Now().AddDate(0, 2, 0)
	past := time.Now().AddDate(0, -1, 0)

	courses := []m.Course{
		{
			InstitutionID: TestInstitution1.UserID,
			Slug:          "bsc-computer-science",
			EditableCourseInfo: m.EditableCourseInfo{
				Title:        "BSc Computer Science",
				Description:  "Three year degree in computing",
				Faculty:      "Science",
				Duration:     "3 years",
				Fees:         "R 65 000 per year",
				Requirements: pq.StringArray{"Mathematics 60%", "English 50%"},
				Seats:        ptr(120),
				Deadline:     &future,
			},
		},
		{
			InstitutionID: TestInstitution1.UserID,
			Slug:          "ba-fine-arts",
			EditableCourseInfo: m.EditableCourseInfo{
				Title:    "BA Fine Arts",
				Faculty:  "Humanities",
				Duration: "3 years",
				Deadline: &past,
			},
		},
		{
			InstitutionID: TestInstitution2.UserID,
			Slug:          "diploma-hospitality",
			EditableCourseInfo: m.EditableCourseInfo{
				Title:    "Diploma in Hospitality",
				Faculty:  "Tourism",
				Duration: "2 years",
			},
		},
	}
	if err := db.Create(&courses).Error; err != nil {
		return err
	}
	TestCourseOpen, TestCourseClosed, TestCourseOtherInstitute = courses[0], courses[1], courses[2]

	jobs := []m.Job{
		{
			CompanyID: TestCompany1.UserID,
			Slug:      "backend-engineer-intern",
			EditableJobInfo: m.EditableJobInfo{
				Title:        "Backend Engineer Intern",
				Description:  "Work on Go services and database layers.",
				Location:     "Cape Town",
				JobType:      "internship",
				SalaryRange:  "R 12 000 - R 15 000",
				Requirements: pq.StringArray{"Go basics", "SQL familiarity"},
				ClosingDate:  &future,
			},
		},
		{
			CompanyID: TestCompany1.UserID,
			Slug:      "data-analyst",
			EditableJobInfo: m.EditableJobInfo{
				Title:       "Data Analyst",
				Location:    "Remote",
				JobType:     "full-time",
				ClosingDate: &past,
			},
		},
	}
	if err := db.Create(&jobs).Error; err != nil {
		return err
	}
	TestJobOpen, TestJobClosed = jobs[0], jobs[1]

	return nil
}
