package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"hems/internal/app/commands"
	bookingapp "hems/internal/app/handlers/booking"
	paymentapp "hems/internal/app/handlers/payment"
	roomapp "hems/internal/app/handlers/room"
	"hems/internal/app/middleware"
	appoutbox "hems/internal/app/outbox"
	"hems/internal/app/queries"
	authsvc "hems/internal/app/services/auth"
	"hems/internal/app/uow"
	domainauth "hems/internal/domain/auth"
	domainroom "hems/internal/domain/room"
	domainuser "hems/internal/domain/user"
	"hems/internal/domain/shared/money"
	"hems/internal/infra/broker/kafka"
	"hems/internal/infra/config"
	mongodb "hems/internal/infra/db/mongo"
	ginserver "hems/internal/infra/http/gin"
	"hems/internal/infra/obs"
	outboxinfra "hems/internal/infra/outbox"
	"hems/internal/infra/security"
	"hems/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := getenv("ROOM_FIXTURES", filepath.Join("data", "rooms.json"))
	if err := loadRoomFixtures(ctx, app.uowFactory, fixturesPath, logger); err != nil {
		logger.Warn("room fixtures load failed", "error", err, "path", fixturesPath)
	}

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
		if app.producer != nil {
			_ = app.producer.Close()
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers   ginserver.Handlers
	uowFactory uow.UoWFactory
	worker     *outboxinfra.Worker
	producer   *kafka.Producer
	ready      func() error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	var (
		uowFactory   uow.UoWFactory
		outboxImpl   appoutbox.Outbox
		idStore      middleware.IdempotencyStore
		userRepo     domainuser.Repository
		sessionStore domainauth.SessionStore
		worker       *outboxinfra.Worker
		producer     *kafka.Producer
		ready        = func() error { return nil }
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, fmt.Errorf("mongo connect: %w", err)
		}
		uowFactory = mongodb.Factory{
			DB:          client.DB,
			RoomRepo:    mongodb.NewRoomRepository(client.DB),
			BookingRepo: mongodb.NewBookingRepository(client.DB),
			PaymentRepo: mongodb.NewPaymentRepository(client.DB),
		}
		store := outboxinfra.NewStore(client.DB)
		outboxImpl = store
		idStore = mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		userRepo = mongodb.NewUserRepository(client.DB)
		sessionStore = mongodb.NewSessionStore(client.DB)
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		if len(cfg.KafkaBrokers) > 0 {
			producer, err = kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return application{}, fmt.Errorf("kafka producer: %w", err)
			}
			worker = &outboxinfra.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
		}
	default:
		uowFactory = memory.Factory{Store: memory.NewStore()}
		outboxImpl = memory.NewOutbox()
		idStore = memory.NewIdempotencyStore()
		userRepo = memory.NewUserRepository()
		sessionStore = memory.NewSessionStore()
	}

	authService := &authsvc.Service{
		Users:      userRepo,
		Sessions:   sessionStore,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	commandBus := commands.NewInMemoryBus()
	encoder := appoutbox.JSONEventEncoder{}

	commands.RegisterHandler(commandBus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{
		UoWFactory: uowFactory, Outbox: outboxImpl, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		Outbox: outboxImpl, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.CompleteBookingCommand{}.Key(), &bookingapp.CompleteBookingHandler{
		Outbox: outboxImpl, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(commandBus, paymentapp.RecordPaymentCommand{}.Key(), &paymentapp.RecordPaymentHandler{
		Outbox: outboxImpl, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(commandBus, paymentapp.VoidPaymentCommand{}.Key(), &paymentapp.VoidPaymentHandler{
		Outbox: outboxImpl, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(commandBus, roomapp.RegisterRoomCommand{}.Key(), &roomapp.RegisterRoomHandler{
		Outbox: outboxImpl, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(commandBus, roomapp.StartMaintenanceCommand{}.Key(), &roomapp.StartMaintenanceHandler{
		Outbox: outboxImpl, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(commandBus, roomapp.EndMaintenanceCommand{}.Key(), &roomapp.EndMaintenanceHandler{
		Outbox: outboxImpl, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(commandBus, roomapp.ChangeRateCommand{}.Key(), &roomapp.ChangeRateHandler{
		Outbox: outboxImpl, Encoder: encoder, Logger: logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingapp.GetBookingQuery{}.Key(), &bookingapp.GetBookingHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, bookingapp.ListBookingsQuery{}.Key(), &bookingapp.ListBookingsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, paymentapp.ListPaymentsQuery{}.Key(), &paymentapp.ListPaymentsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, roomapp.GetRoomQuery{}.Key(), &roomapp.GetRoomHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, roomapp.ListRoomsQuery{}.Key(), &roomapp.ListRoomsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, roomapp.RoomAvailabilityQuery{}.Key(), &roomapp.RoomAvailabilityHandler{UoWFactory: uowFactory})

	commandPipeline := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil, cfg.RetryBackoff),
		middleware.OutboxFlush(outboxImpl),
	)
	queryPipeline := middleware.ChainQueries(queryBus)

	return application{
		handlers: ginserver.Handlers{
			Room:           ginserver.RoomHandler{Commands: commandPipeline, Queries: queryPipeline, Logger: logger},
			Booking:        ginserver.BookingHandler{Commands: commandPipeline, Queries: queryPipeline, Logger: logger},
			Payment:        ginserver.PaymentHandler{Commands: commandPipeline, Queries: queryPipeline, Logger: logger},
			Auth:           ginserver.AuthHandler{Service: authService, Logger: logger},
			AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
		},
		uowFactory: uowFactory,
		worker:     worker,
		producer:   producer,
		ready:      ready,
	}, nil
}

type roomFixture struct {
	ID       string `json:"id"`
	Number   string `json:"number"`
	Type     string `json:"type"`
	Rate     int64  `json:"rate"`
	Currency string `json:"currency"`
}

func loadRoomFixtures(ctx context.Context, factory uow.UoWFactory, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("room fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures []roomFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	if len(fixtures) == 0 {
		return nil
	}

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	now := time.Now().UTC()
	imported := 0
	for _, fx := range fixtures {
		if _, err := unit.Rooms().ByNumber(ctx, fx.Number); err == nil {
			continue
		}
		rate, err := money.New(fx.Rate, fx.Currency)
		if err != nil {
			logger.Error("fixture rate invalid", "room", fx.Number, "error", err)
			continue
		}
		rm, err := domainroom.NewRoom(domainroom.CreateParams{
			ID:        domainroom.RoomID(fx.ID),
			Number:    fx.Number,
			Type:      fx.Type,
			Rate:      rate,
			CreatedAt: now,
		})
		if err != nil {
			logger.Error("fixture invalid", "room", fx.Number, "error", err)
			continue
		}
		rm.ClearEvents()
		if err := unit.Rooms().Save(ctx, rm); err != nil {
			logger.Error("cannot store fixture room", "room", fx.Number, "error", err)
			continue
		}
		imported++
	}
	if err := unit.Commit(ctx); err != nil {
		return err
	}
	committed = true
	if imported > 0 {
		logger.Info("room fixtures imported", "count", imported)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
