package profile

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"CareerFindr-backend/internal/auth"
	"CareerFindr-backend/internal/database"
	"CareerFindr-backend/internal/middleware"
	"CareerFindr-backend/internal/model"
	"CareerFindr-backend/internal/testutil"
	"CareerFindr-backend/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	auth.Configure("profile-test-secret", time.Hour)
	validation.Register()

	teardown, db, err := database.GetTestDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start test database: %v\n", err)
		os.Exit(1)
	}
	testDB = db

	code := m.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if teardown != nil {
		_ = teardown(ctx)
	}
	os.Exit(code)
}

func newRouter() *gin.Engine {
	pc := NewProfileController(testDB)
	r := gin.New()
	r.GET("/institution/:slug", pc.GetInstitutionBySlug)
	r.GET("/company/:slug", pc.GetCompanyBySlug)

	authed := r.Group("", middleware.RequireAuth(testDB))
	student := authed.Group("/student", middleware.CheckRole(model.RoleStudent))
	student.GET("/profile", pc.GetStudentProfile)
	student.PATCH("/profile", pc.EditStudentProfile)

	institution := authed.Group("/institution", middleware.CheckRole(model.RoleInstitution))
	institution.GET("/profile", pc.GetInstitutionProfile)
	institution.PATCH("/profile", pc.EditInstitutionProfile)

	company := authed.Group("/company", middleware.CheckRole(model.RoleCompany))
	company.GET("/profile", pc.GetCompanyProfile)
	company.PATCH("/profile", pc.EditCompanyProfile)
	return r
}

func token(t *testing.T, username string) string {
	t.Helper()
	tk, err := auth.GetAccessToken(t, testDB, username, database.TestSeedPassword)
	require.NoError(t, err)
	return tk
}

func TestGetStudentProfile(t *testing.T) {
	r := newRouter()

	rec, resp := testutil.MakeJSONRequest(nil, token(t, database.TestUserStudent1.Username), r, "/student/profile", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "Lerato", data["first_name"])
	assert.Equal(t, database.TestUserStudent1.Username, data["user"].(map[string]interface{})["username"])

	rec, _ = testutil.MakeJSONRequest(nil, token(t, database.TestUserCompany1.Username), r, "/student/profile", http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEditStudentProfile(t *testing.T) {
	r := newRouter()
	tk := token(t, database.TestUserStudent2.Username)
	t.Cleanup(func() {
		testDB.Model(&model.StudentProfile{}).Where("user_id = ?", database.TestUserStudent2.ID).
			Updates(map[string]interface{}{"education_level": "Diploma", "phone": nil})
	})

	rec, resp := testutil.MakeJSONRequest(gin.H{
		"education_level": "Degree",
		"phone":           "+27831112222",
	}, tk, r, "/student/profile", http.MethodPatch)
	require.Equal(t, http.StatusOK, rec.Code, resp)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "Degree", data["education_level"])
	assert.Equal(t, "+27831112222", data["phone"])
	assert.Equal(t, "Thabo", data["first_name"])
	assert.ElementsMatch(t, []interface{}{"Go", "SQL"}, data["skills"])
	assert.Equal(t, "student2@example.com", data["user"].(map[string]interface{})["email"])

	stored := model.StudentProfile{}
	require.NoError(t, testDB.Where("user_id = ?", database.TestUserStudent2.ID).First(&stored).Error)
	require.NotNil(t, stored.EducationLevel)
	assert.Equal(t, "Degree", *stored.EducationLevel)
}

func TestEditStudentProfile_Invalid(t *testing.T) {
	r := newRouter()
	tk := token(t, database.TestUserStudent1.Username)

	rec, resp := testutil.MakeJSONRequest(gin.H{"phone": "call me"}, tk, r, "/student/profile", http.MethodPatch)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["fields"], "phone")

	rec, _ = testutil.MakeJSONRequest(gin.H{"resume_id": 1}, tk, r, "/student/profile", http.MethodPatch)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = testutil.MakeJSONRequest(gin.H{"email": "student2@example.com"}, tk, r, "/student/profile", http.MethodPatch)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestInstitutionProfile(t *testing.T) {
	r := newRouter()
	tk := token(t, database.TestUserInstitution2.Username)
	t.Cleanup(func() {
		testDB.Model(&model.Institution{}).Where("user_id = ?", database.TestUserInstitution2.ID).
			Updates(map[string]interface{}{"description": "", "website": nil})
	})

	rec, resp := testutil.MakeJSONRequest(nil, tk, r, "/institution/profile", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "Coastal College", data["name"])
	assert.Len(t, data["courses"], 1)

	rec, resp = testutil.MakeJSONRequest(gin.H{
		"description": "Vocational college on the coast",
		"website":     "https://coastal.example.com",
	}, tk, r, "/institution/profile", http.MethodPatch)
	require.Equal(t, http.StatusOK, rec.Code, resp)
	data = resp["data"].(map[string]interface{})
	assert.Equal(t, "Vocational college on the coast", data["description"])
	assert.Equal(t, "Durban", data["location"])
	assert.Equal(t, "coastal-college", data["slug"])

	rec, _ = testutil.MakeJSONRequest(gin.H{"website": "not a url"}, tk, r, "/institution/profile", http.MethodPatch)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = testutil.MakeJSONRequest(gin.H{"verified": true}, tk, r, "/institution/profile", http.MethodPatch)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompanyProfile(t *testing.T) {
	r := newRouter()
	tk := token(t, database.TestUserCompany2.Username)
	t.Cleanup(func() {
		testDB.Model(&model.Company{}).Where("user_id = ?", database.TestUserCompany2.ID).
			Update("industry", "Consulting")
	})

	rec, resp := testutil.MakeJSONRequest(gin.H{"industry": "Analytics"}, tk, r, "/company/profile", http.MethodPatch)
	require.Equal(t, http.StatusOK, rec.Code, resp)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "Analytics", data["industry"])
	assert.Equal(t, "DataForge", data["name"])

	rec, resp = testutil.MakeJSONRequest(nil, token(t, database.TestUserCompany1.Username), r, "/company/profile", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp["data"].(map[string]interface{})["jobs"], 2)
}

func TestGetBySlug(t *testing.T) {
	r := newRouter()

	rec, resp := testutil.MakeJSONRequest(nil, "", r, "/institution/northfield-university", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "Northfield University", data["name"])
	assert.NotContains(t, data, "user")
	assert.Len(t, data["courses"], 2)

	rec, resp = testutil.MakeJSONRequest(nil, "", r, "/company/technova", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	data = resp["data"].(map[string]interface{})
	assert.Equal(t, "TechNova", data["name"])
	assert.NotContains(t, data, "user")

	rec, _ = testutil.MakeJSONRequest(nil, "", r, "/institution/nowhere", http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, "", r, "/company/nowhere", http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
