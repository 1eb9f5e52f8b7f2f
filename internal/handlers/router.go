package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/campus-service/internal/config"
	"github.com/campuslink/campus-service/internal/models"
	"github.com/campuslink/campus-service/internal/realtime"
	"github.com/campuslink/campus-service/internal/services"
	"github.com/campuslink/campus-service/internal/utils"
)

// HandlerManager wires every handler and the auth middleware into the
// router. Route-level role guards mirror the service-layer policy
// table; the service check remains authoritative.
type HandlerManager struct {
	grievanceHandler   *GrievanceHandler
	postingHandler     *PostingHandler
	applicationHandler *ApplicationHandler
	academicHandler    *AcademicHandler
	lostFoundHandler   *LostFoundHandler
	userHandler        *UserHandler
	dashboardHandler   *DashboardHandler
	realtimeHandler    *RealtimeHandler

	authMiddleware *CasdoorAuthMiddleware
	serviceManager services.ServiceManager
	logger         utils.Logger
}

func NewHandlerManager(serviceManager services.ServiceManager, hub *realtime.Hub, casdoorConfig config.CasdoorConfig, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		grievanceHandler:   NewGrievanceHandler(serviceManager.Grievance(), logger),
		postingHandler:     NewPostingHandler(serviceManager.Posting(), logger),
		applicationHandler: NewApplicationHandler(serviceManager.Application(), logger),
		academicHandler:    NewAcademicHandler(serviceManager.Academic(), logger),
		lostFoundHandler:   NewLostFoundHandler(serviceManager.LostFound(), logger),
		userHandler:        NewUserHandler(serviceManager.User(), logger),
		dashboardHandler:   NewDashboardHandler(serviceManager.Dashboard(), serviceManager.Export(), logger),
		realtimeHandler:    NewRealtimeHandler(hub, serviceManager.Notification(), logger),
		authMiddleware:     NewCasdoorAuthMiddleware(casdoorConfig, serviceManager.User(), logger),
		serviceManager:     serviceManager,
		logger:             logger,
	}
}

// SetupRoutes registers all API routes on the router
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	overseers := hm.authMiddleware.RequireRoleMiddleware(models.RoleAuthority)
	posters := hm.authMiddleware.RequireRoleMiddleware(models.RoleFaculty, models.RoleAuthority)
	admins := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		grievances := v1.Group("/grievances")
		{
			grievances.POST("", hm.grievanceHandler.CreateGrievance)
			grievances.GET("/me", hm.grievanceHandler.GetMyGrievances)
			grievances.GET("/stats", overseers, hm.grievanceHandler.GetGrievanceStats)
			grievances.GET("", overseers, hm.grievanceHandler.ListGrievances)
			grievances.GET("/:id", hm.grievanceHandler.GetGrievance)
			grievances.PUT("/:id", hm.grievanceHandler.UpdateGrievance)
			grievances.PUT("/:id/status", overseers, hm.grievanceHandler.UpdateGrievanceStatus)
			grievances.DELETE("/:id", overseers, hm.grievanceHandler.DeleteGrievance)
		}

		opportunities := v1.Group("/opportunities")
		{
			opportunities.POST("", posters, hm.postingHandler.CreateOpportunity)
			opportunities.GET("", hm.postingHandler.ListOpportunities)
			opportunities.GET("/:id", hm.postingHandler.GetOpportunity)
			opportunities.PUT("/:id", posters, hm.postingHandler.UpdateOpportunity)
			opportunities.DELETE("/:id", posters, hm.postingHandler.DeleteOpportunity)
			opportunities.GET("/:id/applications", hm.applicationHandler.ListOpportunityApplications)
		}

		internships := v1.Group("/internships")
		{
			internships.POST("", posters, hm.postingHandler.CreateInternship)
			internships.GET("", hm.postingHandler.ListInternships)
			internships.GET("/:id", hm.postingHandler.GetInternship)
			internships.PUT("/:id", posters, hm.postingHandler.UpdateInternship)
			internships.DELETE("/:id", posters, hm.postingHandler.DeleteInternship)
			internships.GET("/:id/applications", hm.applicationHandler.ListInternshipApplications)
		}

		applications := v1.Group("/applications")
		{
			applications.POST("", hm.applicationHandler.CreateApplication)
			applications.GET("/me", hm.applicationHandler.GetMyApplications)
			applications.GET("/stats", admins, hm.applicationHandler.GetApplicationStats)
			applications.GET("/:id", hm.applicationHandler.GetApplication)
			applications.PUT("/:id/status", hm.applicationHandler.UpdateApplicationStatus)
		}

		courses := v1.Group("/courses")
		{
			courses.POST("", posters, hm.academicHandler.CreateCourse)
			courses.GET("", hm.academicHandler.ListCourses)
			courses.GET("/:id", hm.academicHandler.GetCourse)
			courses.PUT("/:id", posters, hm.academicHandler.UpdateCourse)
			courses.DELETE("/:id", posters, hm.academicHandler.DeleteCourse)
			courses.POST("/:id/resources", posters, hm.academicHandler.AddResource)
			courses.GET("/:id/resources", hm.academicHandler.GetResources)
			courses.POST("/:id/enroll", hm.academicHandler.Enroll)
			courses.DELETE("/:id/enroll", hm.academicHandler.Unenroll)
		}
		v1.DELETE("/resources/:id", posters, hm.academicHandler.DeleteResource)
		v1.GET("/enrollments/me", hm.academicHandler.GetMyEnrollments)

		calendar := v1.Group("/calendar")
		{
			calendar.GET("", hm.academicHandler.GetCalendar)
			calendar.POST("/events", posters, hm.academicHandler.CreateEvent)
			calendar.PUT("/events/:id", posters, hm.academicHandler.UpdateEvent)
			calendar.DELETE("/events/:id", posters, hm.academicHandler.DeleteEvent)
		}

		lostfound := v1.Group("/lostfound")
		{
			lostfound.POST("", hm.lostFoundHandler.CreateItem)
			lostfound.GET("", hm.lostFoundHandler.ListItems)
			lostfound.GET("/:id", hm.lostFoundHandler.GetItem)
			lostfound.PUT("/:id", hm.lostFoundHandler.UpdateItem)
			lostfound.DELETE("/:id", hm.lostFoundHandler.DeleteItem)
			lostfound.POST("/:id/claim", hm.lostFoundHandler.ClaimItem)
		}

		users := v1.Group("/users")
		{
			users.GET("/me", hm.userHandler.GetMyProfile)
			users.PUT("/me", hm.userHandler.UpdateMyProfile)
			users.GET("", admins, hm.userHandler.ListUsers)
			users.GET("/:id", hm.userHandler.GetUser)
			users.PUT("/:id/governance", admins, hm.userHandler.UpdateUserGovernance)
			users.DELETE("/:id", admins, hm.userHandler.DeleteUser)
		}

		domains := v1.Group("/domains", admins)
		{
			domains.POST("", hm.userHandler.AddDomain)
			domains.GET("", hm.userHandler.ListDomains)
			domains.PUT("/:id", hm.userHandler.UpdateDomain)
			domains.DELETE("/:id", hm.userHandler.RemoveDomain)
		}

		notifications := v1.Group("/notifications")
		{
			notifications.GET("/stream", hm.realtimeHandler.StreamNotifications)
			notifications.POST("/broadcast", admins, hm.realtimeHandler.BroadcastNotification)
		}

		dashboard := v1.Group("/dashboard", overseers)
		{
			dashboard.GET("/stats", hm.dashboardHandler.GetStats)
			dashboard.GET("/export/grievances", hm.dashboardHandler.ExportGrievances)
		}
	}
}
