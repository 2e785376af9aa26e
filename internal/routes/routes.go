package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/example/nepwork/internal/config"
	"github.com/example/nepwork/internal/handlers"
	"github.com/example/nepwork/internal/middleware"
	"github.com/example/nepwork/internal/models"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)
	kycHandler := handlers.NewKYCHandler(db)
	serviceHandler := handlers.NewServiceHandler(db)
	bookingHandler := handlers.NewBookingHandler(db)
	clientHandler := handlers.NewClientHandler(db)
	statsHandler := handlers.NewStatsHandler(db)

	auth := middleware.Auth(db, cfg)
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	customerOnly := middleware.RequireRole(models.RoleCustomer)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	accounts := api.Group("/accounts")
	accounts.Post("/register", authHandler.Register)
	accounts.Post("/login", authHandler.Login)
	accounts.Post("/sync", authHandler.Sync)
	accounts.Get("/stats", statsHandler.Stats)
	accounts.Get("/user-stats", auth, statsHandler.UserStats)

	kyc := accounts.Group("/kyc", auth)
	kyc.Post("/submit", kycHandler.Submit)
	kyc.Get("/status", kycHandler.Status)
	kyc.Get("/pending", adminOnly, kycHandler.Pending)
	kyc.Post("/:id/verify", adminOnly, kycHandler.Verify)

	clients := api.Group("/clients", auth, customerOnly)
	clients.Get("/profile", clientHandler.GetProfile)
	clients.Put("/profile", clientHandler.UpdateProfile)
	clients.Patch("/profile", clientHandler.UpdateProfile)
	clients.Get("/preferences", clientHandler.GetPreferences)
	clients.Put("/preferences", clientHandler.UpdatePreferences)
	clients.Patch("/preferences", clientHandler.UpdatePreferences)
	clients.Get("/favorites", clientHandler.ListFavorites)
	clients.Post("/favorites", clientHandler.AddFavorite)
	clients.Delete("/favorites/:id", clientHandler.RemoveFavorite)

	services := api.Group("/services")
	services.Get("/categories", serviceHandler.ListCategories)
	services.Get("/services", serviceHandler.ListServices)
	services.Post("/services/create", auth, serviceHandler.CreateService)
	services.Get("/services/my", auth, middleware.RequireRole(models.RoleProvider), serviceHandler.MyServices)
	services.Get("/services/:id", serviceHandler.GetService)
	services.Patch("/services/:id", auth, serviceHandler.UpdateService)
	services.Put("/services/:id", auth, serviceHandler.UpdateService)
	services.Delete("/services/:id/delete", auth, serviceHandler.DeleteService)

	bookings := api.Group("/bookings", auth)
	bookings.Post("/create", bookingHandler.CreateBooking)
	bookings.Get("/mine", bookingHandler.MyBookings)
	bookings.Patch("/:id/status", bookingHandler.UpdateStatus)
	bookings.Patch("/:id/rate", bookingHandler.Rate)
}
