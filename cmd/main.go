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

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	acquireHoldHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/acquire_hold"
	cancelBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/cancel_booking"
	checkAvailabilityHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/check_availability"
	completeBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/complete_booking"
	confirmBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/confirm_booking"
	createBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/create_booking"
	getAvailableDatesHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_available_dates"
	getAvailableSlotsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_booking"
	getBookingHistoryHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_booking_history"
	getProviderBookingsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_provider_bookings"
	getProviderScheduleHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_provider_schedule"
	getUserBookingsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_user_bookings"
	markNoShowHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/mark_no_show"
	releaseHoldHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/release_hold"
	rescheduleBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/reschedule_booking"
	updateProviderScheduleHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/update_provider_schedule"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/config"
	"github.com/m04kA/SMC-SchedulingService/internal/events"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	scheduleRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/schedule"
	providerServiceClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/providerservice"
	availabilityService "github.com/m04kA/SMC-SchedulingService/internal/service/availability"
	calendarService "github.com/m04kA/SMC-SchedulingService/internal/service/calendar"
	holdsService "github.com/m04kA/SMC-SchedulingService/internal/service/holds"
	lifecycleService "github.com/m04kA/SMC-SchedulingService/internal/service/lifecycle"
	scheduleService "github.com/m04kA/SMC-SchedulingService/internal/service/schedule"
	slotsService "github.com/m04kA/SMC-SchedulingService/internal/service/slots"
	checkAvailabilityUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/check_availability"
	createBookingUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
	getAvailableDatesUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_dates"
	getAvailableSlotsUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
	rescheduleBookingUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
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

	log.Info("Starting SMC-SchedulingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем клиент каталога провайдеров
	providerClient := providerServiceClient.NewClient(
		cfg.ProviderService.URL,
		time.Duration(cfg.ProviderService.Timeout)*time.Second,
		log,
	)
	log.Info("Provider service client initialized (url=%s, timeout=%ds)",
		cfg.ProviderService.URL, cfg.ProviderService.Timeout)

	// Инициализируем репозитории и transaction manager (с метриками или без)
	var (
		bookingRepository  *bookingRepo.Repository
		scheduleRepository *scheduleRepo.Repository
		txMgr              lifecycleService.TransactionManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		scheduleRepository = scheduleRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Прокидываем метрики в сервисы только когда они включены
	var (
		holdMetrics      holdsService.MetricsCollector
		slotMetrics      availabilityService.MetricsCollector
		lifecycleMetrics lifecycleService.MetricsCollector
	)
	if cfg.Metrics.Enabled {
		holdMetrics = metricsCollector
		slotMetrics = metricsCollector
		lifecycleMetrics = metricsCollector
	}

	// Хранилище холдов: Redis в продакшене, память для локальной разработки
	var holdStore holdsService.HoldStore
	var redisClient *redis.Client

	if cfg.Holds.Backend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to ping redis: %v", err)
		}
		defer redisClient.Close()

		holdStore = holdsService.NewRedisStore(redisClient)
		log.Info("Hold store: redis (addr=%s)", cfg.Redis.Addr)
	} else {
		holdStore = holdsService.NewMemoryStore()
		log.Info("Hold store: in-memory (single instance only)")
	}

	// Инициализируем сервисы
	calendar := calendarService.NewService()
	generator := slotsService.NewGenerator()

	scheduleSvc := scheduleService.NewService(
		scheduleRepository,
		providerClient,
		calendar,
		txMgr,
		log,
	)

	holdArbiter := holdsService.NewArbiter(
		holdStore,
		bookingRepository,
		scheduleSvc,
		time.Duration(cfg.Holds.TTLSeconds)*time.Second,
		holdMetrics,
		log,
	)

	availabilitySvc := availabilityService.NewService(
		scheduleRepository,
		bookingRepository,
		holdStore,
		providerClient,
		calendar,
		generator,
		slotMetrics,
		log,
	)

	eventBus := events.NewBus()
	subscribeEventLoggers(eventBus, log)

	lifecycleSvc := lifecycleService.NewService(
		bookingRepository,
		holdArbiter,
		providerClient,
		scheduleSvc,
		holdStore,
		txMgr,
		eventBus,
		lifecycleMetrics,
		log,
	)

	// Фоновая вычистка истекших холдов
	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	go runHoldSweeper(sweeperCtx, holdArbiter, time.Duration(cfg.Holds.SweeperInterval)*time.Second, log)

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(availabilitySvc, log)
	checkAvailabilityUseCase := checkAvailabilityUC.NewUseCase(availabilitySvc, log)
	getAvailableDatesUseCase := getAvailableDatesUC.NewUseCase(availabilitySvc, log)
	createBookingUseCase := createBookingUC.NewUseCase(lifecycleSvc, log)
	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(lifecycleSvc, log)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	checkAvailability := checkAvailabilityHandler.NewHandler(checkAvailabilityUseCase, log)
	getAvailableDates := getAvailableDatesHandler.NewHandler(getAvailableDatesUseCase, log)
	acquireHold := acquireHoldHandler.NewHandler(holdArbiter, log)
	releaseHold := releaseHoldHandler.NewHandler(holdArbiter, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(lifecycleSvc, log)
	getBookingHistory := getBookingHistoryHandler.NewHandler(lifecycleSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(lifecycleSvc, log)
	confirmBooking := confirmBookingHandler.NewHandler(lifecycleSvc, log)
	completeBooking := completeBookingHandler.NewHandler(lifecycleSvc, log)
	markNoShow := markNoShowHandler.NewHandler(lifecycleSvc, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	getUserBookings := getUserBookingsHandler.NewHandler(lifecycleSvc, log)
	getProviderBookings := getProviderBookingsHandler.NewHandler(lifecycleSvc, log)
	getProviderSchedule := getProviderScheduleHandler.NewHandler(scheduleSvc, log)
	updateProviderSchedule := updateProviderScheduleHandler.NewHandler(scheduleSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		log.Info("Rate limiting enabled (rps=%.0f, burst=%d)", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Проекция доступности
	api.HandleFunc("/providers/{providerId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/availability",
		checkAvailability.Handle).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/available-dates",
		getAvailableDates.Handle).Methods(http.MethodGet)

	// Расписание провайдера (чтение)
	api.HandleFunc("/providers/{providerId}/schedule",
		getProviderSchedule.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Холды ---
	protected.HandleFunc("/holds", acquireHold.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/holds/{holdId}", releaseHold.Handle).Methods(http.MethodDelete)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/history", getBookingHistory.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/confirm", confirmBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/complete", completeBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/no-show", markNoShow.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPost)

	// История бронирований пользователя
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Управление провайдером (для менеджеров) ---
	protected.HandleFunc("/providers/{providerId}/bookings", getProviderBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/providers/{providerId}/schedule", updateProviderSchedule.Handle).Methods(http.MethodPut)

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

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	stopSweeper()

	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

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

// runHoldSweeper периодически вычищает истекшие холды.
// Вычистка идемпотентна, так что рестарты и гонка с ленивой вычисткой
// арбитра безопасны.
func runHoldSweeper(ctx context.Context, arbiter *holdsService.Arbiter, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("Hold sweeper started (interval=%s)", interval)

	for {
		select {
		case <-ctx.Done():
			log.Info("Hold sweeper stopped")
			return
		case <-ticker.C:
			reclaimed, err := arbiter.ReclaimExpired(ctx)
			if err != nil {
				log.Error("Hold sweeper: reclaim failed: %v", err)
				continue
			}
			if reclaimed > 0 {
				log.Info("Hold sweeper: reclaimed %d expired holds", reclaimed)
			}
		}
	}
}

// subscribeEventLoggers подписывает лог-обработчики на события жизненного цикла.
// Интеграционная точка: сюда же подписываются продьюсеры уведомлений и платежей.
func subscribeEventLoggers(bus *events.Bus, log *logger.Logger) {
	bus.Subscribe(events.TypeBookingCreated, func(e events.Event) {
		log.Info("event %s: booking=%d, provider=%d, customer=%d", e.Type, e.BookingID, e.ProviderID, e.CustomerID)
	})
	bus.Subscribe(events.TypeBookingConfirmed, func(e events.Event) {
		log.Info("event %s: booking=%d, provider=%d", e.Type, e.BookingID, e.ProviderID)
	})
	bus.Subscribe(events.TypeBookingCancelled, func(e events.Event) {
		if e.FeePercentage != nil {
			log.Info("event %s: booking=%d, fee=%.1f%%", e.Type, e.BookingID, *e.FeePercentage)
			return
		}
		log.Info("event %s: booking=%d", e.Type, e.BookingID)
	})
	bus.Subscribe(events.TypeBookingRescheduled, func(e events.Event) {
		if e.NewBookingID != nil {
			log.Info("event %s: booking=%d -> new booking=%d", e.Type, e.BookingID, *e.NewBookingID)
			return
		}
		log.Info("event %s: booking=%d", e.Type, e.BookingID)
	})
	bus.Subscribe(events.TypeBookingCompleted, func(e events.Event) {
		log.Info("event %s: booking=%d", e.Type, e.BookingID)
	})
	bus.Subscribe(events.TypeBookingNoShow, func(e events.Event) {
		log.Info("event %s: booking=%d", e.Type, e.BookingID)
	})
}
