package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/agrolink/internal/config"
	"github.com/example/agrolink/internal/handlers"
	"github.com/example/agrolink/internal/middleware"
	"github.com/example/agrolink/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, sms services.SMSSender) {
	farmerService := services.NewFarmerService(db, sms, cfg.OTPTTL)
	productService := services.NewProductService(db)

	farmerHandler := handlers.NewFarmerHandler(farmerService, cfg)
	productHandler := handlers.NewProductHandler(productService)
	activityHandler := handlers.NewActivityHandler(db)

	api := app.Group("/api")

	api.Get("/health_check", handlers.HealthCheck)

	farmers := api.Group("/farmers")
	farmers.Post("/register", farmerHandler.Register)
	farmers.Post("/login", farmerHandler.Login)
	farmers.Post("/verify-phone", farmerHandler.VerifyPhone)
	farmers.Post("/resend-otp", farmerHandler.ResendOTP)
	farmers.Post("/logout", farmerHandler.Logout)
	farmers.Get("/dashboard", middleware.SessionMiddleware(cfg), farmerHandler.Dashboard)

	api.Post("/products", productHandler.CreateProduct)

	activities := api.Group("/activities", middleware.SessionMiddleware(cfg))
	activities.Post("/", activityHandler.CreateActivity)
	activities.Get("/", activityHandler.ListActivities)
}
