package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/agrolink/internal/apperrors"
	"github.com/example/agrolink/internal/config"
	"github.com/example/agrolink/internal/database"
	"github.com/example/agrolink/internal/logger"
	"github.com/example/agrolink/internal/routes"
	"github.com/example/agrolink/internal/services"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)

	db := database.Connect(cfg.DatabaseURL)

	app := fiber.New(fiber.Config{
		AppName:      "Agrolink Backend",
		ErrorHandler: apperrors.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(fiberlogger.New())

	sms := services.NewTwilioSMSService(cfg)
	routes.Register(app, db, cfg, sms)

	logger.Log.Infof("starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		logger.Log.Fatalf("fiber.Listen error: %v", err)
	}
}
