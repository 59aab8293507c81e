package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/aftersale-service/internal/api/http"
	"github.com/spec-kit/aftersale-service/internal/api/http/handlers"
	"github.com/spec-kit/aftersale-service/internal/auth"
	"github.com/spec-kit/aftersale-service/internal/config"
	"github.com/spec-kit/aftersale-service/internal/events"
	"github.com/spec-kit/aftersale-service/internal/observability"
	"github.com/spec-kit/aftersale-service/internal/persistence"
	"github.com/spec-kit/aftersale-service/internal/repository"
	"github.com/spec-kit/aftersale-service/internal/service"
	"github.com/spec-kit/aftersale-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	agentRepo := repository.NewAgentRepository(pool)
	returnRepo := repository.NewReturnRepository(pool)
	repairRepo := repository.NewRepairRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	chatRepo := repository.NewChatRepository(pool)
	appointmentRepo := repository.NewAppointmentRepository(pool)
	feedbackRepo := repository.NewFeedbackRepository(pool)
	historyRepo := repository.NewHistoryRepository(pool)

	resetStore := auth.NewResetTokenStore(redis.Client, cfg.Auth.ResetTokenTTL())

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		AgentRepo:  agentRepo,
		ResetStore: resetStore,
	})
	returnService := service.NewReturnService(service.ReturnDependencies{
		ReturnRepo:  returnRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
	})
	repairService := service.NewRepairService(service.RepairDependencies{
		RepairRepo:  repairRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
	})
	chatService := service.NewChatService(service.ChatDependencies{
		ChatRepo:    chatRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
	})
	bookingService := service.NewBookingService(service.BookingDependencies{
		AppointmentRepo: appointmentRepo,
		HistoryRepo:     historyRepo,
		Dispatcher:      dispatcher,
		Metrics:         metrics,
		Booking:         cfg.Booking,
	})
	feedbackService := service.NewFeedbackService(feedbackRepo, dispatcher)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, agentRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Agents:         handlers.NewAgentsHandler(authService),
		Returns:        handlers.NewReturnsHandler(returnService),
		Repairs:        handlers.NewRepairsHandler(repairService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		DeskTickets:    handlers.NewDeskTicketsHandler(ticketService),
		Chats:          handlers.NewChatHandler(chatService),
		Bookings:       handlers.NewBookingsHandler(bookingService),
		Feedback:       handlers.NewFeedbackHandler(feedbackService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
