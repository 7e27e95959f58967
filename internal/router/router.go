package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/handlers"
	"github.com/taskhive-dev/taskhive/internal/middleware"
	"github.com/taskhive-dev/taskhive/internal/types"
)

func NewRouter(deps handlers.Deps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authHandler := handlers.NewAuthHandler(deps)
	projectHandler := handlers.NewProjectHandler(deps)
	taskHandler := handlers.NewTaskHandler(deps)
	notificationHandler := handlers.NewNotificationHandler(deps)
	healthHandler := handlers.NewHealthHandler(deps.Store)

	requireAuth := middleware.RequireAuth(deps.Tokens, deps.Store)

	r.GET("/", handlers.Home)
	r.GET("/health", healthHandler.Check)

	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		auth.POST("/logout", requireAuth, authHandler.Logout)
		auth.GET("/me", requireAuth, authHandler.Me)
		auth.PATCH("/me", requireAuth, authHandler.UpdateMe)
		auth.POST("/change-password", requireAuth, authHandler.ChangePassword)
	}

	projects := r.Group("/projects", requireAuth)
	{
		projects.POST("", projectHandler.Create)
		projects.GET("", projectHandler.List)
		projects.GET("/:project_id", projectHandler.Get)
		projects.PATCH("/:project_id", projectHandler.Update)
		projects.DELETE("/:project_id", projectHandler.Delete)

		projects.GET("/:project_id/stats", projectHandler.Stats)
		projects.GET("/:project_id/activity", projectHandler.Activity)

		projects.GET("/:project_id/members", projectHandler.ListMembers)
		projects.POST("/:project_id/members", projectHandler.AddMember)
		projects.PATCH("/:project_id/members/:user_id", projectHandler.UpdateMemberRole)
		projects.DELETE("/:project_id/members/:user_id", projectHandler.RemoveMember)

		projects.GET("/:project_id/tasks", taskHandler.ListForProject)
		projects.POST("/:project_id/tasks", taskHandler.Create)
	}

	tasks := r.Group("/tasks", requireAuth)
	{
		tasks.GET("/my", taskHandler.MyTasks)
		tasks.GET("/:task_id", taskHandler.Get)
		tasks.PATCH("/:task_id", taskHandler.Update)
		tasks.DELETE("/:task_id", taskHandler.Delete)

		tasks.POST("/:task_id/comments", taskHandler.CreateComment)
		tasks.GET("/:task_id/comments", taskHandler.ListComments)
	}

	api := r.Group("/api", requireAuth)
	{
		notifications := api.Group("/notifications")
		{
			notifications.GET("", notificationHandler.List)
			notifications.GET("/stats", notificationHandler.Stats)
			notifications.GET("/stream", notificationHandler.Stream)
			notifications.PATCH("/read-all", notificationHandler.MarkAllRead)
			notifications.PATCH("/:notification_id/read", notificationHandler.MarkRead)
			notifications.DELETE("/clear", notificationHandler.ClearRead)
			notifications.DELETE("/:notification_id", notificationHandler.Delete)
			notifications.GET("/settings", notificationHandler.GetSettings)
			notifications.PATCH("/settings", notificationHandler.UpdateSettings)
		}
	}

	return r
}
