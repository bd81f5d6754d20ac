package routes

import (
	"github.com/gin-gonic/gin"

	"taskflow/internal/authz"
	"taskflow/internal/handlers"
	"taskflow/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	jwtSecret []byte,
	authHandler *handlers.AuthHandler,
	taskHandler *handlers.TaskHandler,
	projectHandler *handlers.ProjectHandler,
	reportHandler *handlers.ReportHandler,
) *gin.Engine {

	// ---- public
	r.POST("/login", authHandler.Login)

	// ---- protected
	r.Use(middleware.AuthMiddleware(jwtSecret))

	anyRole := middleware.RequireRoles(authz.RoleStaff, authz.RoleManager, authz.RoleAdmin)
	managers := middleware.RequireRoles(authz.RoleManager, authz.RoleAdmin)

	// PROJECTS
	projects := r.Group("/projects", anyRole)
	{
		projects.GET("/", projectHandler.List)
		projects.GET("/:id", projectHandler.GetByID)
		projects.POST("/", managers, projectHandler.Create)
		projects.POST("/:id/members", managers, projectHandler.AddMember)
	}

	// TASKS
	tasks := r.Group("/tasks", anyRole)
	{
		tasks.POST("/", taskHandler.Create)
		tasks.GET("/", taskHandler.GetAll)
		tasks.GET("/:id", taskHandler.GetByID)
		tasks.POST("/:id/status", taskHandler.ChangeStatus)
		tasks.POST("/:id/time", taskHandler.LogTime)
		tasks.POST("/:id/archive", managers, taskHandler.Archive)
		tasks.GET("/:id/subtasks", taskHandler.ListSubtasks)
	}

	// SUBTASKS
	subtasks := r.Group("/subtasks", anyRole)
	{
		subtasks.POST("/", taskHandler.CreateSubtask)
		subtasks.POST("/:id/time", taskHandler.LogSubtaskTime)
	}

	// REPORTS: staff reach only their own user report, checked in the handler
	reports := r.Group("/reports", anyRole)
	{
		reports.GET("/departments", reportHandler.Departments)
		reports.GET("/project/:id", reportHandler.ProjectCompletion)
		reports.GET("/user/:id", reportHandler.UserCompletion)
		reports.GET("/team/:projectId", reportHandler.TeamSummary)
		reports.GET("/logged-time/project/:id", reportHandler.LoggedTimeByProject)
		reports.GET("/logged-time/department/:department", reportHandler.LoggedTimeByDepartment)
	}

	return r
}
