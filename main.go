package main

import (
	"lms/config"
	"lms/database"
	"lms/middleware"
	analyticsRoutes "lms/routers/analyticsRoutes"
	assignmentRoutes "lms/routers/assignmentRoutes"
	progressRoutes "lms/routers/progressRoutes"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"log"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	metrics := middleware.NewMetrics()
	app.Use(metrics.Handler())

	app.Get("/health", func(c *fiber.Ctx) error {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", metrics.Snapshot())
	})

	progressRoutes.SetupProgressRoutes(app)
	analyticsRoutes.SetupAnalyticsRoutes(app)
	assignmentRoutes.SetupAssignmentRoutes(app)

	utils.InitializeAssignmentScheduler()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
