package main

import (
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/example/nepwork/internal/apperrors"
	"github.com/example/nepwork/internal/config"
	"github.com/example/nepwork/internal/database"
	"github.com/example/nepwork/internal/logger"
	"github.com/example/nepwork/internal/middleware"
	"github.com/example/nepwork/internal/routes"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Env)
	defer logger.Sync()

	db := database.Connect(cfg.DatabaseURL)

	app := fiber.New(fiber.Config{
		AppName:      "NepWork Backend",
		ErrorHandler: apperrors.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(middleware.Metrics())

	routes.Register(app, db, cfg)

	logger.L().Info("starting server", zap.String("port", cfg.AppPort))
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		logger.L().Fatal("fiber.Listen error", zap.Error(err))
	}
}
