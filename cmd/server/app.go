package main

import (
	"fmt"

	"github.com/h4ks-com/farmhand/internal/config"
	"github.com/h4ks-com/farmhand/internal/database"
	"github.com/h4ks-com/farmhand/internal/logging"
	"github.com/h4ks-com/farmhand/internal/repository"
	"github.com/h4ks-com/farmhand/internal/router"
	"github.com/h4ks-com/farmhand/internal/services"
	"github.com/h4ks-com/farmhand/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type app struct {
	cfg      *config.Config
	log      *zap.Logger
	db       *gorm.DB
	services router.Services
}

// bootstrap loads configuration, opens and migrates the database and builds every service.
func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, log); err != nil {
		return nil, err
	}

	store, err := storage.NewLocalStore(cfg.Storage.Dir, cfg.Storage.PublicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open media storage: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	farmRepo := repository.NewFarmRepository(db)
	plotRepo := repository.NewPlotRepository(db)
	workerRepo := repository.NewWorkerRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	planRepo := repository.NewPlanRepository(db)
	jobRepo := repository.NewJobRepository(db)
	logRepo := repository.NewJobLogRepository(db)
	payrollRepo := repository.NewPayrollRepository(db)
	reportRepo := repository.NewReportRepository(db)

	tokenService := services.NewTokenService(tokenRepo, userRepo, cfg.JWT.Secret)
	payrollService := services.NewPayrollService(payrollRepo, logRepo, catalogRepo, workerRepo, db, log)

	svc := router.Services{
		Users:   services.NewUserService(userRepo, tokenService, cfg.JWT.TokenTTL, log),
		Tokens:  tokenService,
		Farms:   services.NewFarmService(farmRepo, userRepo, db, log),
		Roster:  services.NewRosterService(plotRepo, workerRepo, teamRepo, jobRepo, store, db, log),
		Catalog: services.NewCatalogService(catalogRepo, db, log),
		Plans:   services.NewPlanService(planRepo, jobRepo, logRepo, db, log),
		Jobs:    services.NewJobService(jobRepo, logRepo, planRepo, teamRepo, plotRepo, db, log),
		Logs:    services.NewJobLogService(logRepo, jobRepo, workerRepo, db, log),
		Payroll: payrollService,
		Exports: services.NewExportService(payrollService, farmRepo, cfg.ExportSigningKey),
		Reports: services.NewReportService(reportRepo, log, nil),
	}

	return &app{cfg: cfg, log: log, db: db, services: svc}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
