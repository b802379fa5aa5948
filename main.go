package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/LuisRz1/pluginProvcalApp/pkg/config"
	"github.com/LuisRz1/pluginProvcalApp/pkg/database"
	"github.com/LuisRz1/pluginProvcalApp/pkg/handlers"
	"github.com/LuisRz1/pluginProvcalApp/pkg/holiday"
	"github.com/LuisRz1/pluginProvcalApp/pkg/logging"
	"github.com/LuisRz1/pluginProvcalApp/pkg/middleware"
	"github.com/LuisRz1/pluginProvcalApp/pkg/repositories"
	"github.com/LuisRz1/pluginProvcalApp/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	// Log startup configuration
	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("bind_addr", cfg.BindAddr),
		zap.String("port", cfg.Port),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("holiday_base_url", cfg.Holiday.BaseURL),
	)

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	// golang-migrate needs database/sql, not pgx.
	sqlDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		logger.Fatal("failed to open sql connection", zap.String("error", logging.SanitizeError(err)))
	}
	if err := database.RunMigrations(sqlDB, cfg.MigrationsPath, logger); err != nil {
		sqlDB.Close()
		logger.Fatal("failed to run migrations", zap.String("error", logging.SanitizeError(err)))
	}
	sqlDB.Close()

	// An empty base URL disables holiday lookup; every day counts as a
	// working day.
	var holidays holiday.Checker
	if cfg.Holiday.BaseURL != "" {
		holidays = holiday.NewClient(
			cfg.Holiday.BaseURL,
			cfg.Holiday.CountryCode,
			time.Duration(cfg.Holiday.TimeoutSeconds)*time.Second,
		)
	} else {
		logger.Warn("holiday lookup disabled, all days treated as working days")
	}

	monthlyRepo := repositories.NewMonthlyMenuRepository()
	weeklyRepo := repositories.NewWeeklyMenuRepository()
	dailyRepo := repositories.NewDailyMenuRepository()
	mealRepo := repositories.NewMealRepository()
	componentRepo := repositories.NewMealComponentRepository()
	componentTypeRepo := repositories.NewComponentTypeRepository()
	changeRepo := repositories.NewMenuChangeRepository()

	ingestionService := services.NewMenuIngestionService(&services.MenuIngestionDeps{
		DB:                db,
		MonthlyRepo:       monthlyRepo,
		WeeklyRepo:        weeklyRepo,
		DailyRepo:         dailyRepo,
		MealRepo:          mealRepo,
		ComponentRepo:     componentRepo,
		ComponentTypeRepo: componentTypeRepo,
		Holidays:          holidays,
		Logger:            logger,
	})

	queryService := services.NewMenuQueryService(&services.MenuQueryDeps{
		MonthlyRepo:       monthlyRepo,
		WeeklyRepo:        weeklyRepo,
		DailyRepo:         dailyRepo,
		MealRepo:          mealRepo,
		ComponentRepo:     componentRepo,
		ComponentTypeRepo: componentTypeRepo,
		Logger:            logger,
	})

	changeService := services.NewChangeWorkflowService(&services.ChangeWorkflowDeps{
		DB:                db,
		DailyRepo:         dailyRepo,
		MealRepo:          mealRepo,
		ComponentRepo:     componentRepo,
		ComponentTypeRepo: componentTypeRepo,
		ChangeRepo:        changeRepo,
		Logger:            logger,
	})

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	menuHandler := handlers.NewMenuHandler(ingestionService, queryService, changeService, logger)
	menuHandler.RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(handlers.WithDatabase(db, mux))

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("starting comedor-menu", zap.String("addr", addr), zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
