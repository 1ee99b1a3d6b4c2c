// Package server contain implementation of go-gin-server and each route handlers
package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	// Init swagger doc
	_ "CareerFindr-backend/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"CareerFindr-backend/internal/auth"
	"CareerFindr-backend/internal/controller/admin"
	"CareerFindr-backend/internal/controller/admission"
	"CareerFindr-backend/internal/controller/application"
	"CareerFindr-backend/internal/controller/course"
	"CareerFindr-backend/internal/controller/dashboard"
	"CareerFindr-backend/internal/controller/file"
	"CareerFindr-backend/internal/controller/job"
	"CareerFindr-backend/internal/controller/profile"
	"CareerFindr-backend/internal/middleware"
	"CareerFindr-backend/internal/model"
)

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *MyServer) RegisterRoutes() http.Handler {
	r := gin.Default()

	gAuth := auth.NewOauthLoginHandler(s.DB, auth.NewGoogleOauthConfig(s.Config), auth.GoogleUserInfoEndpoint)
	lAuth := auth.NewLocalAuthHandler(s.DB)
	logout := auth.NewLogoutController(s.Blacklist)

	adminController := admin.NewAdminController(s.DB)
	admissionController := admission.NewAdmissionController(s.DB)
	applicationController := application.NewApplicationController(s.DB, s.Notifier)
	courseController := course.NewCourseController(s.DB)
	dashboardController := dashboard.NewDashboardController(s.DB)
	fileController := file.NewFileController(s.DB, s.Storage, s.Config.MaxUploadBytes)
	jobController := job.NewJobController(s.DB)
	profileController := profile.NewProfileController(s.DB)

	r.Use(middleware.SafeHeader())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.Config.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(middleware.RateLimiterMiddleware(s.Config.RateLimit, s.Redis))

	r.GET("/health", s.healthHandler)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	uploadLimit := middleware.SizeLimit(s.Config.MaxUploadBytes)

	v1 := r.Group("/api/v1")
	{
		authRoute := v1.Group("/auth")
		{
			authRoute.POST("register", lAuth.LocalRegisterHandler)
			authRoute.POST("login", lAuth.LocalLoginHandler)
			authRoute.POST("google/:role", gAuth.GoogleLoginHandler)
			authRoute.GET("google/callback", gAuth.Callback)
			authRoute.POST("logout", middleware.JwtBlacklistCheck(s.Blacklist), logout.LogoutHandler)
		}

		// Public catalog
		v1.GET("course", courseController.GetCourses)
		v1.GET("course/:slug", courseController.GetCourseBySlug)
		v1.GET("job", jobController.GetJobs)
		v1.GET("job/:slug", jobController.GetJobBySlug)
		v1.GET("institution/:slug", profileController.GetInstitutionBySlug)
		v1.GET("company/:slug", profileController.GetCompanyBySlug)

		needAuth := v1.Group("")
		needAuth.Use(middleware.JwtBlacklistCheck(s.Blacklist), middleware.RequireAuth(s.DB))
		{
			needAuth.GET("dashboard", dashboardController.GetDashboard)

			fileRoute := needAuth.Group("/file")
			{
				fileRoute.GET(":id", fileController.GetFile)
				fileRoute.DELETE(":id", fileController.DeleteFile)
				fileRoute.POST("document", middleware.CheckRole(model.RoleStudent), uploadLimit, fileController.UploadDocument)
			}

			studentRoute := needAuth.Group("/student", middleware.CheckRole(model.RoleStudent))
			{
				studentRoute.GET("profile", profileController.GetStudentProfile)
				studentRoute.PATCH("profile", profileController.EditStudentProfile)
				studentRoute.POST("profile/resume", uploadLimit, fileController.UploadResume)
			}

			institutionRoute := needAuth.Group("/institution", middleware.CheckRole(model.RoleInstitution))
			{
				institutionRoute.GET("profile", profileController.GetInstitutionProfile)
				institutionRoute.PATCH("profile", profileController.EditInstitutionProfile)
				institutionRoute.POST("profile/logo", uploadLimit, fileController.UploadInstitutionLogo)
			}

			companyRoute := needAuth.Group("/company", middleware.CheckRole(model.RoleCompany))
			{
				companyRoute.GET("profile", profileController.GetCompanyProfile)
				companyRoute.PATCH("profile", profileController.EditCompanyProfile)
				companyRoute.POST("profile/logo", uploadLimit, fileController.UploadCompanyLogo)
			}

			courseRoute := needAuth.Group("/course")
			{
				canManage := middleware.CheckRole(model.RoleInstitution, model.RoleAdmin)
				courseRoute.POST("", middleware.CheckRole(model.RoleInstitution), courseController.CreateCourse)
				courseRoute.PATCH(":id", canManage, courseController.EditCourse)
				courseRoute.DELETE(":id", canManage, courseController.DeleteCourse)
			}

			jobRoute := needAuth.Group("/job")
			{
				canManage := middleware.CheckRole(model.RoleCompany, model.RoleAdmin)
				jobRoute.POST("", middleware.CheckRole(model.RoleCompany), jobController.CreateJob)
				jobRoute.PATCH(":id", canManage, jobController.EditJob)
				jobRoute.DELETE(":id", canManage, jobController.DeleteJob)
			}

			applicationRoute := needAuth.Group("/application")
			{
				needStudent := middleware.CheckRole(model.RoleStudent)
				needOwner := middleware.CheckRole(model.RoleInstitution, model.RoleCompany)

				applicationRoute.POST("", needStudent, applicationController.CreateApplication)
				applicationRoute.GET("mine", needStudent, applicationController.GetMyApplications)
				applicationRoute.GET("received", needOwner, applicationController.GetReceivedApplications)
				applicationRoute.GET(":id", applicationController.GetApplication)
				applicationRoute.PATCH(":id/status", needOwner, applicationController.UpdateStatus)
				applicationRoute.DELETE(":id", needStudent, applicationController.WithdrawApplication)
			}

			admissionRoute := needAuth.Group("/admission")
			{
				admissionRoute.GET("mine", middleware.CheckRole(model.RoleStudent), admissionController.GetMyAdmissions)
				admissionRoute.GET("received", middleware.CheckRole(model.RoleInstitution), admissionController.GetReceivedAdmissions)
				admissionRoute.PATCH(":id/respond", middleware.CheckRole(model.RoleStudent), admissionController.RespondAdmission)
			}

			adminRoute := needAuth.Group("/admin", middleware.CheckRole(model.RoleAdmin))
			{
				adminRoute.GET("users", adminController.GetUsers)
				adminRoute.DELETE("users/:id", adminController.DeleteUser)
				adminRoute.PATCH("institution/:id/verify", adminController.VerifyInstitution)
				adminRoute.PATCH("company/:id/verify", adminController.VerifyCompany)
			}
		}
	}

	return r
}

func (s *MyServer) healthHandler(c *gin.Context) {
	report := s.DB.Health(c.Request.Context())
	status := http.StatusOK
	if report.Status != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}
