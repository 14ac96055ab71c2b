package routes

import (
	"academy-backend/controllers"
	"academy-backend/models"
	"academy-backend/security"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// Controllers bundles every handler group the router mounts.
type Controllers struct {
	Auth      *controllers.AuthController
	Booking   *controllers.BookingController
	Schedule  *controllers.ScheduleController
	Branch    *controllers.BranchController
	Dashboard *controllers.DashboardController
	Video     *controllers.VideoController
	Admin     *controllers.AdminController
	Chat      *controllers.ChatController
}

// Register mounts the full API under /api.
func Register(r *gin.Engine, db *sqlx.DB, ctrl Controllers) {
	api := r.Group("/api")

	api.GET("/health", ctrl.Auth.HealthCheck)

	auth := api.Group("/auth")
	{
		auth.POST("/signup", ctrl.Auth.SignUp)
		auth.POST("/signin", ctrl.Auth.SignIn)
		auth.POST("/refresh", ctrl.Auth.Refresh)
		auth.POST("/logout", ctrl.Auth.Logout)
		auth.POST("/forgot-password", ctrl.Auth.ForgotPassword)
		auth.POST("/reset-password", ctrl.Auth.ResetPassword)
	}

	authed := api.Group("")
	authed.Use(security.AuthMiddleware(db))
	{
		authed.POST("/profile", ctrl.Auth.CreateProfile)
		authed.GET("/profile", ctrl.Auth.GetProfile)
		authed.PUT("/profile", ctrl.Auth.UpdateProfile)
		authed.POST("/change-password", ctrl.Auth.ChangePassword)

		authed.GET("/branches", ctrl.Branch.ListBranches)
		authed.GET("/branches/:id", ctrl.Branch.GetBranch)

		authed.POST("/chat", ctrl.Chat.Chat)
	}

	player := api.Group("/player")
	player.Use(security.AuthMiddleware(db), security.RequireRole(db, models.RolePlayer))
	{
		player.GET("/dashboard", ctrl.Dashboard.PlayerDashboard)
		player.PUT("/profile", ctrl.Dashboard.UpdatePlayerProfile)

		player.GET("/sessions/availability", ctrl.Booking.GetAvailability)
		player.POST("/sessions/:id/book", ctrl.Booking.BookSession)

		player.POST("/videos", ctrl.Video.SubmitVideo)
		player.GET("/videos", ctrl.Video.GetMyVideos)
		player.DELETE("/videos/:id", ctrl.Video.DeleteVideo)
	}

	coach := api.Group("/coach")
	coach.Use(security.AuthMiddleware(db), security.RequireRole(db, models.RoleCoach))
	{
		coach.GET("/dashboard", ctrl.Dashboard.CoachDashboard)
		coach.PUT("/profile", ctrl.Dashboard.UpdateCoachProfile)

		coach.POST("/schedules", ctrl.Schedule.CreateSchedule)
		coach.GET("/schedules", ctrl.Schedule.GetSchedules)
		coach.DELETE("/schedules/:id", ctrl.Schedule.DeleteSchedule)
		coach.POST("/schedules/generate", ctrl.Schedule.GenerateSessions)

		coach.POST("/sessions", ctrl.Schedule.CreateSession)
		coach.GET("/sessions", ctrl.Schedule.GetCoachSessions)

		coach.GET("/videos/pending", ctrl.Video.ListPendingVideos)
		coach.POST("/videos/:id/feedback", ctrl.Video.SubmitFeedback)
	}

	admin := api.Group("/admin")
	admin.Use(security.AuthMiddleware(db), security.RequireRole(db, models.RoleAdmin))
	{
		admin.GET("/dashboard", ctrl.Dashboard.AdminDashboard)

		admin.GET("/users", ctrl.Admin.ListUsers)
		admin.POST("/users/:id/approve", ctrl.Admin.ApproveUser)
		admin.PUT("/users/:id/role", ctrl.Admin.UpdateUserRole)
		admin.POST("/users/:id/deactivate", ctrl.Admin.DeactivateUser)
		admin.POST("/users/:id/reactivate", ctrl.Admin.ReactivateUser)
		admin.POST("/users/:id/confirm-email", ctrl.Admin.ConfirmUserEmail)
		admin.POST("/users/verify-all-emails", ctrl.Admin.VerifyAllEmails)
		admin.POST("/create-admin", ctrl.Admin.CreateAdmin)

		admin.POST("/branches", ctrl.Branch.CreateBranch)
		admin.PUT("/branches/:id", ctrl.Branch.UpdateBranch)
		admin.DELETE("/branches/:id", ctrl.Branch.DeleteBranch)
	}
}
