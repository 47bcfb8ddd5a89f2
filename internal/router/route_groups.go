package router

import (
	"prodtrack_backend/internal/handlers"
	"prodtrack_backend/internal/middleware"
	"prodtrack_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up login and the current-user profile.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.GET("/me", authHandler.GetProfile)
	}
}

// SetupMaterialRoutes sets up sections, colors and materials. Section and
// color writes are gated to privileged roles.
func SetupMaterialRoutes(apiGroup *gin.RouterGroup, materialHandler *handlers.MaterialHandler, authEnforced bool) {
	privileged := middleware.RequireRoles(authEnforced, models.RoleAdmin, models.RoleSupervisor)

	sectionRoutes := apiGroup.Group("/sections")
	{
		sectionRoutes.GET("", materialHandler.GetSections)
		sectionRoutes.POST("", privileged, materialHandler.CreateSection)
		sectionRoutes.PUT("/:id", privileged, materialHandler.UpdateSection)
		sectionRoutes.DELETE("/:id", privileged, materialHandler.DeleteSection)
	}

	colorRoutes := apiGroup.Group("/colors")
	{
		colorRoutes.GET("", materialHandler.GetColors)
		colorRoutes.POST("", privileged, materialHandler.CreateColor)
		colorRoutes.PUT("/:id", privileged, materialHandler.UpdateColor)
		colorRoutes.DELETE("/:id", privileged, materialHandler.DeleteColor)
	}

	materialRoutes := apiGroup.Group("/materials")
	{
		materialRoutes.GET("", materialHandler.GetMaterials)
		materialRoutes.POST("", materialHandler.CreateMaterial)
		materialRoutes.GET("/:id", materialHandler.GetMaterial)
		materialRoutes.PUT("/:id", materialHandler.UpdateMaterial)
		materialRoutes.DELETE("/:id", materialHandler.DeleteMaterial)
		materialRoutes.PATCH("/:id/quantity", materialHandler.AdjustQuantity)
		materialRoutes.GET("/:id/history", materialHandler.GetHistory)
	}
}

// SetupOrderRoutes sets up production orders and shipments.
func SetupOrderRoutes(apiGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orderRoutes := apiGroup.Group("/orders")
	{
		orderRoutes.POST("", orderHandler.CreateOrder)
		orderRoutes.GET("", orderHandler.GetOrders)
		orderRoutes.GET("/shipped", orderHandler.GetShippedOrders)
		orderRoutes.GET("/:id", orderHandler.GetOrder)
		orderRoutes.PUT("/:id/items/:item_id", orderHandler.UpdateOrderItem)
		orderRoutes.PATCH("/:id/status", orderHandler.UpdateOrderStatus)
		orderRoutes.DELETE("/:id", orderHandler.DeleteOrder)
		orderRoutes.DELETE("/:id/shipments", orderHandler.DeleteOrderShipments)
	}

	freeShipmentRoutes := apiGroup.Group("/free-shipments")
	{
		freeShipmentRoutes.GET("", orderHandler.GetFreeShipments)
		freeShipmentRoutes.POST("", orderHandler.CreateFreeShipments)
		freeShipmentRoutes.DELETE("/:id", orderHandler.DeleteFreeShipment)
	}
}

// SetupRequestRoutes sets up ad-hoc material requests.
func SetupRequestRoutes(apiGroup *gin.RouterGroup, requestHandler *handlers.RequestHandler) {
	requestRoutes := apiGroup.Group("/requests")
	{
		requestRoutes.POST("", requestHandler.CreateRequest)
		requestRoutes.GET("", requestHandler.GetRequests)
		requestRoutes.GET("/:id", requestHandler.GetRequest)
		requestRoutes.PUT("/items/:item_id", requestHandler.UpdateRequestItem)
		requestRoutes.PATCH("/:id/send", requestHandler.SendRequest)
		requestRoutes.DELETE("/:id", requestHandler.DeleteRequest)
	}
}

// SetupScheduleRoutes sets up time tracking, the timesheet and the planned
// work schedule.
func SetupScheduleRoutes(apiGroup *gin.RouterGroup, scheduleHandler *handlers.ScheduleHandler) {
	timeRoutes := apiGroup.Group("/time-tracking")
	{
		timeRoutes.POST("", scheduleHandler.UpsertTimeEntry)
		timeRoutes.GET("", scheduleHandler.GetTimeEntries)
		timeRoutes.PUT("/:id", scheduleHandler.UpdateTimeEntry)
		timeRoutes.DELETE("/:id", scheduleHandler.DeleteTimeEntry)
	}

	apiGroup.GET("/timesheet", scheduleHandler.GetMonthlyTimesheet)

	rosterRoutes := apiGroup.Group("/timesheet-employees")
	{
		rosterRoutes.GET("", scheduleHandler.GetTimesheetEmployees)
		rosterRoutes.POST("", scheduleHandler.AddTimesheetEmployee)
		rosterRoutes.DELETE("/:id", scheduleHandler.DeleteTimesheetEmployee)
	}

	workScheduleRoutes := apiGroup.Group("/work-schedule")
	{
		workScheduleRoutes.POST("", scheduleHandler.UpsertWorkScheduleEntry)
		workScheduleRoutes.GET("", scheduleHandler.GetWorkSchedule)
		workScheduleRoutes.DELETE("/:id", scheduleHandler.DeleteWorkScheduleEntry)
	}
}

// SetupUserRoutes sets up user account management.
func SetupUserRoutes(apiGroup *gin.RouterGroup, userHandler *handlers.UserHandler) {
	userRoutes := apiGroup.Group("/users")
	{
		userRoutes.POST("", userHandler.CreateUser)
		userRoutes.GET("", userHandler.GetUsers)
		userRoutes.GET("/:id", userHandler.GetUser)
		userRoutes.PUT("/:id", userHandler.UpdateUser)
		userRoutes.DELETE("/:id", userHandler.DeleteUser)
	}
}
