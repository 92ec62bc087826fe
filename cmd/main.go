package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelBookingHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/create_booking"
	createExceptionRangeHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/create_exception_range"
	deleteExceptionHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/delete_exception"
	deleteWeeklyRuleHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/delete_weekly_rule"
	getAvailableSlotsHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/get_available_slots"
	getBarberBookingsHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/get_barber_bookings"
	getBarberStatsHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/get_barber_stats"
	getBookingHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/get_booking"
	getCalendarHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/get_calendar"
	getClientBookingsHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/get_client_bookings"
	getExceptionsHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/get_exceptions"
	getWeeklyScheduleHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/get_weekly_schedule"
	updateBookingStatusHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/update_booking_status"
	updateWeeklyScheduleHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/update_weekly_schedule"
	upsertExceptionHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/upsert_exception"
	upsertWeeklyRuleHandler "github.com/m04kA/SMC-BarberService/internal/api/handlers/upsert_weekly_rule"
	"github.com/m04kA/SMC-BarberService/internal/api/middleware"
	"github.com/m04kA/SMC-BarberService/internal/availability"
	"github.com/m04kA/SMC-BarberService/internal/config"
	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/internal/infra/cache/idempotency"
	bookingRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/booking"
	exceptionRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/exception"
	scheduleRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-BarberService/internal/integrations/catalogservice"
	bookingsService "github.com/m04kA/SMC-BarberService/internal/service/bookings"
	scheduleService "github.com/m04kA/SMC-BarberService/internal/service/schedule"
	createBookingUC "github.com/m04kA/SMC-BarberService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-BarberService/internal/usecase/get_available_slots"
	getCalendarUC "github.com/m04kA/SMC-BarberService/internal/usecase/get_calendar"
	"github.com/m04kA/SMC-BarberService/pkg/dbmetrics"
	"github.com/m04kA/SMC-BarberService/pkg/logger"
	"github.com/m04kA/SMC-BarberService/pkg/metrics"
	"github.com/m04kA/SMC-BarberService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-BarberService/pkg/txmanager"
	"github.com/m04kA/SMC-BarberService/pkg/types"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-BarberService...")

	// Бизнес-метрики нужны use case'ам всегда, при выключенных метриках пишем в неэкспортируемый реестр
	var metricsCollector *metrics.Metrics
	stopCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	} else {
		metricsCollector = metrics.NewWithRegistry(cfg.Metrics.ServiceName, prometheus.NewRegistry())
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Redis для ключей идемпотентности (опционально)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			// Без Redis повтор запроса находится по ключу в БД
			log.Warn("Redis is unavailable, idempotency falls back to database: %v", err)
		} else {
			log.Info("Connected to Redis at %s", cfg.Redis.Addr)
		}
		pingCancel()
		defer redisClient.Close()
	}
	idempotencyStore := idempotency.NewStore(redisClient, time.Duration(cfg.Redis.IdempotencyTTLSecs)*time.Second)

	// Клиент каталога барберов и услуг
	catalogClient := catalogservice.NewClient(
		cfg.CatalogService.URL,
		time.Duration(cfg.CatalogService.Timeout)*time.Second,
		log,
	)
	log.Info("Catalog client initialized (url=%s, timeout=%ds)", cfg.CatalogService.URL, cfg.CatalogService.Timeout)

	// Движок доступности
	engine, err := availability.NewEngine(availability.Config{
		DefaultDay: domain.TimeInterval{
			Start: types.TimeString(cfg.Engine.DefaultDayStart),
			End:   types.TimeString(cfg.Engine.DefaultDayEnd),
		},
		GranularityMinutes: cfg.Engine.SlotGranularityMinutes,
	})
	if err != nil {
		log.Fatal("Failed to initialize availability engine: %v", err)
	}

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository   *bookingRepo.Repository
		scheduleRepository  *scheduleRepo.Repository
		exceptionRepository *exceptionRepo.Repository
		txMgr               *txmanager.TransactionManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		exceptionRepository = exceptionRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		scheduleRepository = scheduleRepo.NewRepository(db)
		exceptionRepository = exceptionRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(bookingRepository, log)
	scheduleSvc := scheduleService.NewService(
		scheduleRepository,
		exceptionRepository,
		catalogClient,
		txMgr,
		validator.New(),
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		scheduleRepository,
		exceptionRepository,
		catalogClient,
		idempotencyStore,
		txMgr,
		engine,
		createBookingUC.Settings{
			AdvanceBookingDays:      cfg.Booking.AdvanceBookingDays,
			MinBookingNoticeMinutes: cfg.Booking.MinBookingNoticeMinutes,
		},
		metricsCollector,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		scheduleRepository,
		exceptionRepository,
		catalogClient,
		engine,
		getAvailableSlotsUC.Settings{
			AdvanceBookingDays:      cfg.Booking.AdvanceBookingDays,
			MinBookingNoticeMinutes: cfg.Booking.MinBookingNoticeMinutes,
		},
		metricsCollector,
		log,
	)

	getCalendarUseCase := getCalendarUC.NewUseCase(
		scheduleRepository,
		exceptionRepository,
		catalogClient,
		txMgr,
		engine,
		cfg.Booking.MaxCalendarDays,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getCalendar := getCalendarHandler.NewHandler(getCalendarUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	getClientBookings := getClientBookingsHandler.NewHandler(bookingSvc, log)
	getBarberBookings := getBarberBookingsHandler.NewHandler(bookingSvc, log)
	getBarberStats := getBarberStatsHandler.NewHandler(bookingSvc, log)
	getWeeklySchedule := getWeeklyScheduleHandler.NewHandler(scheduleSvc, log)
	updateWeeklySchedule := updateWeeklyScheduleHandler.NewHandler(scheduleSvc, log)
	upsertWeeklyRule := upsertWeeklyRuleHandler.NewHandler(scheduleSvc, log)
	deleteWeeklyRule := deleteWeeklyRuleHandler.NewHandler(scheduleSvc, log)
	getExceptions := getExceptionsHandler.NewHandler(scheduleSvc, log)
	upsertException := upsertExceptionHandler.NewHandler(scheduleSvc, log)
	createExceptionRange := createExceptionRangeHandler.NewHandler(scheduleSvc, log)
	deleteException := deleteExceptionHandler.NewHandler(scheduleSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(log))

	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные слоты барбера на дату
	api.HandleFunc("/barbers/{barberId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Эффективная доступность барбера по дням
	api.HandleFunc("/barbers/{barberId}/calendar", getCalendar.Handle).Methods(http.MethodGet)

	// Недельное расписание и исключения (чтение)
	api.HandleFunc("/barbers/{barberId}/schedule", getWeeklySchedule.Handle).Methods(http.MethodGet)
	api.HandleFunc("/barbers/{barberId}/exceptions", getExceptions.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	var createBookingRoute http.Handler = http.HandlerFunc(createBooking.Handle)
	if cfg.RateLimit.Enabled {
		idleTTL := time.Duration(cfg.RateLimit.IdleTTLSeconds) * time.Second
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, idleTTL)
		go limiter.RunCleanup(idleTTL, stopCh)
		createBookingRoute = limiter.Middleware(createBookingRoute)
		log.Info("Booking rate limit enabled (rps=%.2f, burst=%d)", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}
	protected.Handle("/bookings", createBookingRoute).Methods(http.MethodPost)

	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/clients/{clientId}/bookings", getClientBookings.Handle).Methods(http.MethodGet)

	// --- Управление барбером (барбер или администратор) ---
	staff := protected.PathPrefix("").Subrouter()
	staff.Use(middleware.RequireRole(domain.RoleBarber, domain.RoleAdmin))

	staff.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)
	staff.HandleFunc("/barbers/{barberId}/bookings", getBarberBookings.Handle).Methods(http.MethodGet)
	staff.HandleFunc("/barbers/{barberId}/stats", getBarberStats.Handle).Methods(http.MethodGet)
	staff.HandleFunc("/barbers/{barberId}/schedule", updateWeeklySchedule.Handle).Methods(http.MethodPut)
	staff.HandleFunc("/barbers/{barberId}/schedule/{dayOfWeek:[0-9]+}", upsertWeeklyRule.Handle).Methods(http.MethodPut)
	staff.HandleFunc("/barbers/{barberId}/schedule/{dayOfWeek:[0-9]+}", deleteWeeklyRule.Handle).Methods(http.MethodDelete)
	staff.HandleFunc("/barbers/{barberId}/exceptions/range", createExceptionRange.Handle).Methods(http.MethodPost)
	staff.HandleFunc("/barbers/{barberId}/exceptions/{date}", upsertException.Handle).Methods(http.MethodPut)
	staff.HandleFunc("/barbers/{barberId}/exceptions/{date}", deleteException.Handle).Methods(http.MethodDelete)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем фоновые задачи: метрики connection pool и очистку rate limiter
	close(stopCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
