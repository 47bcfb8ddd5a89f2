package main

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"prodtrack_backend/internal/database"
	"prodtrack_backend/internal/middleware"
	"prodtrack_backend/internal/router"
	"prodtrack_backend/pkg/utils"
)

func main() {
	// .env is optional, real deployments set the environment directly.
	_ = godotenv.Load()

	utils.InitLogger()
	utils.SetJWTSecret(utils.Getenv("JWT_SECRET", ""))

	db, err := database.Connect(database.Config{
		Host:       utils.Getenv("DB_HOST", "localhost"),
		Port:       utils.Getenv("DB_PORT", "5432"),
		User:       utils.Getenv("DB_USER", "postgres"),
		Password:   utils.Getenv("DB_PASSWORD", "postgres"),
		Name:       utils.Getenv("DB_NAME", "prodtrack"),
		SSLMode:    utils.Getenv("DB_SSLMODE", "disable"),
		SchemaPath: utils.Getenv("DB_SCHEMA_PATH", ""),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Database initialization failed")
	}
	defer db.Close()

	if utils.Getenv("GIN_MODE", "") == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(utils.GinLogger())

	allowedOrigins := strings.Split(utils.Getenv("CORS_ALLOWED_ORIGINS", "*"), ",")
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-User-Id", "X-Request-Id"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: true,
	}))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	authEnforced := utils.Getenv("AUTH_ENFORCED", "false") == "true"
	router.Setup(engine, db, authEnforced)

	port := utils.Getenv("PORT", "8080")
	log.Info().Str("port", port).Bool("auth_enforced", authEnforced).Msg("Starting server")
	if err := engine.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
