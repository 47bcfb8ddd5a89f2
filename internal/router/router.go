package router

import (
	"database/sql"
	"net/http"

	"prodtrack_backend/internal/handlers"
	"prodtrack_backend/internal/middleware"
	"prodtrack_backend/internal/repositories"
	"prodtrack_backend/internal/services"
	"prodtrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Setup wires repositories, services and handlers and registers all routes.
// authEnforced controls whether role-gated endpoints reject anonymous
// callers or wave them through the way the legacy API did.
func Setup(engine *gin.Engine, db *sql.DB, authEnforced bool) {
	materialRepo := repositories.NewMaterialRepository(db)
	shipmentRepo := repositories.NewShipmentRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	requestRepo := repositories.NewRequestRepository(db)
	scheduleRepo := repositories.NewScheduleRepository(db)
	userRepo := repositories.NewUserRepository(db)

	inventoryService := services.NewInventoryService(materialRepo, shipmentRepo, orderRepo, db)
	materialService := services.NewMaterialService(materialRepo, db)
	orderService := services.NewOrderService(orderRepo, shipmentRepo, inventoryService, db)
	requestService := services.NewRequestService(requestRepo, db)
	scheduleService := services.NewScheduleService(scheduleRepo, db)
	userService := services.NewUserService(userRepo, db)
	authService := services.NewAuthService(userRepo)

	materialHandler := handlers.NewMaterialHandler(materialService, inventoryService)
	orderHandler := handlers.NewOrderHandler(orderService, inventoryService)
	requestHandler := handlers.NewRequestHandler(requestService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	userHandler := handlers.NewUserHandler(userService)
	authHandler := handlers.NewAuthHandler(authService)

	engine.HandleMethodNotAllowed = true
	engine.NoMethod(func(c *gin.Context) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusMethodNotAllowed, utils.ErrCodeMethodNotAllowed, "Method not supported", ""))
	})
	engine.NoRoute(func(c *gin.Context) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Route not found", ""))
	})

	apiV1 := engine.Group("/api/v1")
	apiV1.Use(middleware.Identity(userRepo, db))

	SetupAuthRoutes(apiV1, authHandler)
	SetupMaterialRoutes(apiV1, materialHandler, authEnforced)
	SetupOrderRoutes(apiV1, orderHandler)
	SetupRequestRoutes(apiV1, requestHandler)
	SetupScheduleRoutes(apiV1, scheduleHandler)
	SetupUserRoutes(apiV1, userHandler)
}
