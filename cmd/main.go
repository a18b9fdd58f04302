package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"streak_hub/internal/adapters"
	"streak_hub/internal/bootstrap"
	authDelivery "streak_hub/internal/delivery/auth"
	roomDelivery "streak_hub/internal/delivery/room"
	sessionDelivery "streak_hub/internal/delivery/session"
	ownMiddleware "streak_hub/internal/middleware"
	repo "streak_hub/internal/repository"
	progressionUC "streak_hub/internal/usecase/progression"
)

type mainDeliveryHandler struct {
	auth    *authDelivery.AuthHandler
	session *sessionDelivery.SessionHandler
	room    *roomDelivery.RoomHandler
}

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func main() {
	logger := NewLogger()
	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Error("Failed to setup configuration", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	databaseAdapters := initDatabaseAdapters(ctx, logger, *cfg)
	defer databaseAdapters.mongoAdapter.Close(ctx)
	defer databaseAdapters.redisAdapter.Close(ctx)

	r := chi.NewRouter()
	handlers := initializeDeliveryHandlers(*cfg, logger, databaseAdapters)
	handlers.Router(r, cfg.IsLocalCors)

	go handlers.room.Hub().RunLivenessMonitor(ctx)

	port := cfg.ServerPort
	logger.Infof("Server is running on port %s", port)
	if err := http.ListenAndServe(port, r); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func (h *mainDeliveryHandler) Router(r *chi.Mux, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)

	r.Post("/register", h.auth.Register)
	r.Post("/login", h.auth.Login)
	r.Delete("/logout", h.auth.Logout)

	r.Get("/api/user", h.auth.HandleGetMe)
	r.Patch("/api/user/privacy", h.session.HandleUpdatePrivacy)
	r.Post("/api/session", h.session.HandleLogSession)
	r.Get("/api/leaderboard", h.session.HandleLeaderboard)
	r.Get("/api/achievements", h.session.HandleAchievements)

	r.Post("/api/rooms", h.room.HandleCreateRoom)
	r.Get("/api/rooms", h.room.HandleListRooms)
	r.Get("/api/rooms/{id}", h.room.HandleGetRoom)
	r.Get("/ws", h.room.HandleSocket)
}

func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg bootstrap.Config) *dataBaseAdapters {
	mongoAdapter := adapters.NewAdapterMongo(&cfg)
	if err := mongoAdapter.Init(ctx); err != nil {
		log.Fatal("Failed to initialize MongoDB", zap.Error(err))
	}

	redisAdapter := adapters.NewAdapterRedis(&cfg)
	if err := redisAdapter.Init(ctx); err != nil {
		log.Fatal("Failed to initialize Redis", zap.Error(err))
	}

	log.Info("Database adapters initialized")
	return &dataBaseAdapters{
		redisAdapter: redisAdapter,
		mongoAdapter: mongoAdapter,
	}
}

func initializeDeliveryHandlers(
	cfg bootstrap.Config,
	log *zap.SugaredLogger,
	databaseAdapters *dataBaseAdapters,
) *mainDeliveryHandler {
	userStorage := repo.NewMongoUserStorage(databaseAdapters.mongoAdapter)
	sessionStorage := repo.NewSessionRedisStorage(databaseAdapters.redisAdapter.GetClient())
	roomStorage := repo.NewMongoRoomStorage(log, databaseAdapters.mongoAdapter)
	leaderboardStorage := repo.NewRedisLeaderboardStorage(databaseAdapters.redisAdapter.GetClient())

	authDeliveryHandler := authDelivery.NewAuthHandler(userStorage, sessionStorage, log)

	progressionUsecase := progressionUC.NewProgressionUseCase(log, userStorage, leaderboardStorage)
	sessionDeliveryHandler := sessionDelivery.NewSessionHandler(cfg, log, progressionUsecase, authDeliveryHandler)

	roomDeliveryHandler := roomDelivery.NewRoomHandler(cfg, log, roomStorage, authDeliveryHandler)

	return &mainDeliveryHandler{
		auth:    authDeliveryHandler,
		session: sessionDeliveryHandler,
		room:    roomDeliveryHandler,
	}
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
	time.Sleep(1 * time.Second) // give connections time to close
}
