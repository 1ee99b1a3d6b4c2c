package course

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

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	auth.Configure("course-test-secret", time.Hour)

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
	cc := NewCourseController(testDB)
	r := gin.New()
	r.GET("/course", cc.GetCourses)
	r.GET("/course/:slug", cc.GetCourseBySlug)
	authed := r.Group("/course", middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleInstitution, model.RoleAdmin))
	authed.POST("", cc.CreateCourse)
	authed.PATCH("/:id", cc.EditCourse)
	authed.DELETE("/:id", cc.DeleteCourse)
	return r
}

func token(t *testing.T, username string) string {
	t.Helper()
	tk, err := auth.GetAccessToken(t, testDB, username, database.TestSeedPassword)
	require.NoError(t, err)
	return tk
}

func titles(resp map[string]interface{}) []string {
	out := []string{}
	for _, it := range resp["data"].([]interface{}) {
		out = append(out, it.(map[string]interface{})["title"].(string))
	}
	return out
}

func TestGetCourses_Filters(t *testing.T) {
	r := newRouter()

	rec, resp := testutil.MakeJSONRequest(nil, "", r, "/course", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Subset(t, titles(resp), []string{"BSc Computer Science", "BA Fine Arts", "Diploma in Hospitality"})

	_, resp = testutil.MakeJSONRequest(nil, "", r, "/course?q=computer", http.MethodGet)
	assert.Equal(t, []string{"BSc Computer Science"}, titles(resp))

	_, resp = testutil.MakeJSONRequest(nil, "", r, "/course?faculty=tour", http.MethodGet)
	assert.Equal(t, []string{"Diploma in Hospitality"}, titles(resp))

	_, resp = testutil.MakeJSONRequest(nil, "", r, "/course?institution=northfield-university&open=true", http.MethodGet)
	assert.Equal(t, []string{"BSc Computer Science"}, titles(resp))

	_, resp = testutil.MakeJSONRequest(nil, "", r, "/course?institution=coastal", http.MethodGet)
	assert.Equal(t, []string{"Diploma in Hospitality"}, titles(resp))
}

func TestGetCourses_Pagination(t *testing.T) {
	r := newRouter()

	rec, resp := testutil.MakeJSONRequest(nil, "", r, "/course?limit=1&page=2", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp["data"], 1)
	pagination := resp["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pagination["page"])
	assert.Equal(t, true, pagination["has_prev"])
}

func TestGetCourseBySlug(t *testing.T) {
	r := newRouter()

	rec, resp := testutil.MakeJSONRequest(nil, "", r, "/course/"+database.TestCourseOpen.Slug, http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, database.TestCourseOpen.Title, data["title"])
	assert.Equal(t, true, data["is_open"])
	assert.Equal(t, "Northfield University", data["institution"].(map[string]interface{})["name"])

	rec, resp = testutil.MakeJSONRequest(nil, "", r, "/course/"+database.TestCourseClosed.Slug, http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, resp["data"].(map[string]interface{})["is_open"])

	rec, _ = testutil.MakeJSONRequest(nil, "", r, "/course/no-such-course", http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func createCourse(t *testing.T, r *gin.Engine, username string, body gin.H) (int, map[string]interface{}) {
	t.Helper()
	rec, resp := testutil.MakeJSONRequest(body, token(t, username), r, "/course", http.MethodPost)
	if rec.Code == http.StatusCreated {
		id := uint(resp["data"].(map[string]interface{})["id"].(float64))
		t.Cleanup(func() { testDB.Delete(&model.Course{}, id) })
	}
	return rec.Code, resp
}

func TestCreateCourse(t *testing.T) {
	r := newRouter()

	code, resp := createCourse(t, r, database.TestUserInstitution2.Username, gin.H{
		"title":        "  Certificate in Culinary Arts ",
		"faculty":      "Tourism",
		"requirements": []string{"Grade 10"},
		"seats":        30,
	})
	require.Equal(t, http.StatusCreated, code, resp)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "certificate-in-culinary-arts", data["slug"])
	assert.Equal(t, "Certificate in Culinary Arts", data["title"])
	assert.Equal(t, database.TestUserInstitution2.ID.String(), data["institution_id"])

	// same title get suffixed slug
	code, resp = createCourse(t, r, database.TestUserInstitution1.Username, gin.H{"title": "Certificate in Culinary Arts"})
	require.Equal(t, http.StatusCreated, code)
	assert.Regexp(t, `^certificate-in-culinary-arts-[0-9a-f]{6}$`, resp["data"].(map[string]interface{})["slug"])
}

func TestCreateCourse_Invalid(t *testing.T) {
	r := newRouter()

	code, _ := createCourse(t, r, database.TestUserInstitution1.Username, gin.H{"faculty": "Science"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = createCourse(t, r, database.TestUserInstitution1.Username, gin.H{"title": "X", "institution_id": "hack"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = createCourse(t, r, database.TestUserInstitution1.Username, gin.H{"title": "X", "seats": -1})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = createCourse(t, r, database.TestUserStudent1.Username, gin.H{"title": "X"})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestCreateCourse_AdminForbidden(t *testing.T) {
	r := newRouter()

	code, resp := createCourse(t, r, database.TestAdminUser.Username, gin.H{"title": "Admin Course"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Only institution can create course", resp["error"])

	var count int64
	require.NoError(t, testDB.Model(&model.Course{}).Where("title = ?", "Admin Course").Count(&count).Error)
	assert.Zero(t, count)
}

func TestEditCourse(t *testing.T) {
	r := newRouter()
	code, resp := createCourse(t, r, database.TestUserInstitution1.Username, gin.H{"title": "Higher Certificate in IT", "faculty": "Science"})
	require.Equal(t, http.StatusCreated, code)
	path := fmt.Sprintf("/course/%d", uint(resp["data"].(map[string]interface{})["id"].(float64)))

	rec, _ := testutil.MakeJSONRequest(gin.H{"fees": "R 10"}, token(t, database.TestUserInstitution2.Username), r, path, http.MethodPatch)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = testutil.MakeJSONRequest(gin.H{"fees": "R 30 000"}, token(t, database.TestUserInstitution1.Username), r, path, http.MethodPatch)
	require.Equal(t, http.StatusOK, rec.Code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "R 30 000", data["fees"])
	assert.Equal(t, "Science", data["faculty"])
	assert.Equal(t, "Higher Certificate in IT", data["title"])

	rec, _ = testutil.MakeJSONRequest(gin.H{"fees": "R 1"}, token(t, database.TestAdminUser.Username), r, path, http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = testutil.MakeJSONRequest(gin.H{"fees": "R 1"}, token(t, database.TestUserInstitution1.Username), r, "/course/999999", http.MethodPatch)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteCourse(t *testing.T) {
	r := newRouter()
	code, resp := createCourse(t, r, database.TestUserInstitution1.Username, gin.H{"title": "Short Course in Robotics"})
	require.Equal(t, http.StatusCreated, code)
	id := uint(resp["data"].(map[string]interface{})["id"].(float64))
	path := fmt.Sprintf("/course/%d", id)

	app := model.Application{
		StudentID:  database.TestUserStudent1.ID,
		OwnerID:    database.TestUserInstitution1.ID,
		Type:       model.ApplicationTypeCourse,
		TargetID:   id,
		Motivation: "m",
	}
	require.NoError(t, testDB.Create(&app).Error)

	rec, _ := testutil.MakeJSONRequest(nil, token(t, database.TestUserInstitution1.Username), r, path, http.MethodDelete)
	assert.Equal(t, http.StatusConflict, rec.Code)

	require.NoError(t, testDB.Delete(&app).Error)

	rec, _ = testutil.MakeJSONRequest(nil, token(t, database.TestUserInstitution2.Username), r, path, http.MethodDelete)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, token(t, database.TestUserInstitution1.Username), r, path, http.MethodDelete)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, token(t, database.TestUserInstitution1.Username), r, path, http.MethodDelete)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
