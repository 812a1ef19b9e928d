package main

import (
	"guardpost/internal/guards/handler"
	"guardpost/internal/guards/repository"
	"guardpost/internal/guards/service"
	"guardpost/internal/guards/validator"
	"guardpost/pkg/app"
	"guardpost/pkg/config"
)

const ServiceName = "guards"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Guards service")
	guardService := initServices(cfg)
	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewGuardHandler(guardService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.GuardService {
	guardValidator := validator.NewGuardValidator(cfg.Log)
	guardRepo := repository.NewMongoGuardRepository(cfg)
	guardService := service.NewGuardService(guardRepo, guardValidator, cfg)

	cfg.Log.Info("Guard service initialized", "database", cfg.MongoDatabaseName)
	return guardService
}
