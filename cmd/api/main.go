package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chronopoint/attendance-backend-go/internal/config"
	appHTTP "github.com/chronopoint/attendance-backend-go/internal/handler/http"
	"github.com/chronopoint/attendance-backend-go/internal/pkg/cron"
	"github.com/chronopoint/attendance-backend-go/internal/pkg/database"
	"github.com/chronopoint/attendance-backend-go/internal/pkg/debounce"
	"github.com/chronopoint/attendance-backend-go/internal/pkg/jwt"
	"github.com/chronopoint/attendance-backend-go/internal/repository/postgresql"
	autocloseService "github.com/chronopoint/attendance-backend-go/internal/service/autoclose"
	punchService "github.com/chronopoint/attendance-backend-go/internal/service/punch"
	scheduleService "github.com/chronopoint/attendance-backend-go/internal/service/schedule"
	supplementaryService "github.com/chronopoint/attendance-backend-go/internal/service/supplementary"
	wrongtypeService "github.com/chronopoint/attendance-backend-go/internal/service/wrongtype"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("app", "chronopoint-attendance"),
	)

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	// Redis backs the punch debounce guard. The guard degrades to
	// allow-all when Redis is unreachable, so a failed ping is a
	// warning, not a startup failure.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, punch debounce disabled", "error", err)
		redisClient = nil
	}
	cancelPing()
	guard := debounce.NewGuard(redisClient)

	punchRepo := postgresql.NewPunchRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	deviceRepo := postgresql.NewDeviceRepository(db)
	shiftRepo := postgresql.NewShiftRepository(db)
	scheduleRepo := postgresql.NewScheduleRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	overtimeRepo := postgresql.NewOvertimeRepository(db)
	tenantRepo := postgresql.NewTenantRepository(db)
	settingsRepo := postgresql.NewSettingsRepository(db)
	supplementaryRepo := postgresql.NewSupplementaryRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	resolver := scheduleService.NewResolver(scheduleRepo, shiftRepo, employeeRepo)
	wrongTypeDetector := wrongtypeService.NewDetector(settingsRepo, punchRepo, resolver, logger)
	anomalyDetector := punchService.NewAnomalyDetector(punchRepo, tenantRepo, logger)
	supplementarySvc := supplementaryService.NewService(
		supplementaryRepo,
		punchRepo,
		employeeRepo,
		holidayRepo,
		tenantRepo,
		settingsRepo,
		logger,
	)
	punchSvc := punchService.NewPunchService(
		punchRepo,
		employeeRepo,
		deviceRepo,
		settingsRepo,
		anomalyDetector,
		wrongTypeDetector,
		supplementarySvc,
		resolver,
		postgresql.NewTxRunner(db),
		guard,
		logger,
	)
	autoCloseSvc := autocloseService.NewService(
		punchRepo,
		tenantRepo,
		settingsRepo,
		overtimeRepo,
		resolver,
		logger,
	)

	scheduler := cron.NewScheduler(logger)
	punchJobs := cron.NewPunchJobs(
		autoCloseSvc,
		supplementarySvc,
		time.Duration(cfg.Jobs.MissingOutIntervalMinutes)*time.Minute,
		time.Duration(cfg.Jobs.AutoCloseIntervalMinutes)*time.Minute,
		time.Duration(cfg.Jobs.SupplementaryIntervalMinutes)*time.Minute,
	)
	punchJobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	punchHandler := appHTTP.NewPunchHandler(punchSvc)
	supplementaryHandler := appHTTP.NewSupplementaryHandler(supplementarySvc)

	router := appHTTP.NewRouter(JWTService, punchHandler, supplementaryHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	server := &http.Server{
		Addr:    port,
		Handler: router,
	}

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
}
