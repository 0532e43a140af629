package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/config"
	"github.com/taskhive-dev/taskhive/internal/handlers"
	"github.com/taskhive-dev/taskhive/internal/middleware"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	handlers.AllowedOrigins = cfg.AllowedOrigins
	handlers.RemovalPolicy = cfg.MemberRemovalPolicy
	handlers.CookieDomain = cfg.CookieDomain

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/:project_id", middleware.AuthMiddleware(), handlers.BoardSocket)
		api.GET("/dashboard", middleware.AuthMiddleware(), handlers.GetDashboard)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.CreateUser)
			auth.POST("/login", handlers.LoginUser)
			auth.POST("/logout", handlers.LogoutUser)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.POST("", handlers.CreateProject)
			projects.GET("", handlers.ListProjects)
			projects.GET("/:project_id", handlers.GetProject)
			projects.PATCH("/:project_id", handlers.UpdateProject)
			projects.DELETE("/:project_id", handlers.DeleteProject)

			projects.GET("/:project_id/stats", handlers.GetProjectStats)

			// Membership endpoints
			projects.GET("/:project_id/members", handlers.ListMembers)
			projects.POST("/:project_id/members", handlers.AddMember)
			projects.DELETE("/:project_id/members/:user_id", handlers.RemoveMember)
			projects.GET("/:project_id/members/candidates", handlers.ListInviteCandidates)

			// Task endpoints
			projects.POST("/:project_id/tasks", handlers.CreateTask)
			projects.GET("/:project_id/tasks", handlers.ListTasks)
		}

		taskRoutes := api.Group("/tasks", middleware.AuthMiddleware())
		{
			taskRoutes.PATCH("/:task_id", handlers.UpdateTask)
			taskRoutes.DELETE("/:task_id", handlers.DeleteTask)
			taskRoutes.PATCH("/:task_id/status", handlers.SetTaskStatus)
		}
	}

	return r
}
