package main

import (
	"guardpost/internal/companies/handler"
	"guardpost/internal/companies/repository"
	"guardpost/internal/companies/service"
	"guardpost/internal/companies/validator"
	"guardpost/pkg/app"
	"guardpost/pkg/config"
)

const ServiceName = "companies"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Companies service")
	companyService := initServices(cfg)
	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewCompanyHandler(companyService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.CompanyService {
	companyValidator := validator.NewCompanyValidator(cfg, cfg.Log)
	companyRepo := repository.NewMongoCompanyRepository(cfg)
	companyService := service.NewCompanyService(companyRepo, companyValidator, cfg)

	cfg.Log.Info("Company service initialized", "database", cfg.MongoDatabaseName)
	return companyService
}
