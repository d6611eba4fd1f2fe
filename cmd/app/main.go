package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"github.com/burenotti/go_endurance_backend/internal/adapter/api"
	"github.com/burenotti/go_endurance_backend/internal/adapter/storage"
	draftstorage "github.com/burenotti/go_endurance_backend/internal/adapter/storage/drafts"
	"github.com/burenotti/go_endurance_backend/internal/adapter/storage/memstore"
	profilestorage "github.com/burenotti/go_endurance_backend/internal/adapter/storage/profiles"
	"github.com/burenotti/go_endurance_backend/internal/adapter/storage/userstorage"
	"github.com/burenotti/go_endurance_backend/internal/app/authapp"
	"github.com/burenotti/go_endurance_backend/internal/app/messagebus"
	"github.com/burenotti/go_endurance_backend/internal/app/onboarding"
	"github.com/burenotti/go_endurance_backend/internal/app/profileapp"
	"github.com/burenotti/go_endurance_backend/internal/app/unitofwork"
	"github.com/burenotti/go_endurance_backend/internal/config"
	"github.com/burenotti/go_endurance_backend/internal/domain"
	"github.com/burenotti/go_endurance_backend/internal/domain/auth"
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
	"github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/leporo/sqlf"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)
	logger := initLogger(cfg)

	bus := messagebus.New(logger)
	registerHandlers(bus, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, closeStores := mustOpenStorages(ctx, cfg, logger)
	defer closeStores()

	validator := onboarding.NewValidator(cfg.App.DefaultTimezone)

	authorizer := &authapp.Authorizer{
		Cost:             bcrypt.DefaultCost,
		Secret:           cfg.JWT.Secret,
		AccessTokenTTL:   cfg.JWT.AccessTokenTTL,
		AuthorizationTTL: cfg.JWT.RefreshTokenTTL,
	}

	authService := authapp.NewService(
		authorizer,
		unitofwork.New[*authapp.AtomicContext](stores.accounts, stores.auth.NewAtomicContext, bus, logger),
		logger,
	)

	profileService := profileapp.New(
		unitofwork.New[*profileapp.AtomicContext](
			stores.profiles,
			profileapp.NewAtomicContextFactory(stores.profileStorage),
			bus,
			logger,
		),
		validator,
		logger,
	)

	onboardingService := onboarding.NewService(stores.drafts, profileService, validator, logger)

	server := api.NewServer(
		api.Addr(cfg.Server.Host, cfg.Server.Port),
		api.Logger(logger),
		api.Validator(validator),
		api.AuthService(authService),
		api.ProfileService(profileService),
		api.OnboardingService(onboardingService),
		api.AuthRateLimit(api.RateLimit{RPS: cfg.RateLimit.AuthRPS, Burst: cfg.RateLimit.AuthBurst}),
	)

	errCh := make(chan error)

	go func() {
		defer close(errCh)
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server was not shutdown gracefully", "error", err)
		}
	case err := <-errCh:
		if err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server closed with unexpected error", "error", err)
			}
		}
	}

	bus.Close()
	logger.Info("server shutdown")
}

func registerHandlers(bus *messagebus.MessageBus, logger *slog.Logger) {
	bus.Register(auth.EventCreated, func(event domain.Event) error {
		e := event.(auth.CreatedEvent)
		logger.Info("user created", "user_id", e.UserID)
		return nil
	})
	bus.Register(auth.EventNewLogin, func(event domain.Event) error {
		e := event.(auth.LoginEvent)
		logger.Info("user logged in", "user_id", e.UserID, "browser", e.Device.Browser, "os", e.Device.OS)
		return nil
	})
	bus.Register(auth.EventLogout, func(event domain.Event) error {
		e := event.(auth.LogoutEvent)
		logger.Info("user logged out", "user_id", e.UserID)
		return nil
	})
	bus.Register(profile.EventOnboarded, func(event domain.Event) error {
		e := event.(profile.OnboardedEvent)
		logger.Info("onboarding completed", "profile_id", e.ProfileID)
		return nil
	})
	bus.Register(profile.EventUpdated, func(event domain.Event) error {
		e := event.(profile.UpdatedEvent)
		logger.Debug("profile updated", "profile_id", e.ProfileID)
		return nil
	})
}

type storages struct {
	accounts       storage.Transactor
	profiles       storage.Transactor
	auth           authapp.Storages
	profileStorage func(tx storage.Transaction) profileapp.ProfileStorage
	drafts         onboarding.DraftStore
}

func mustOpenStorages(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storages, func()) {
	var (
		s       storages
		closers []func()
	)

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		db := memstore.New()
		s.accounts = db
		s.profiles = db
		s.auth.Users = func(tx storage.Transaction) authapp.UserStorage { return memstore.NewUserStorage(tx) }
		s.auth.Profiles = func(tx storage.Transaction) authapp.ProfileStorage { return memstore.NewProfileStorage(tx) }
		s.profileStorage = func(tx storage.Transaction) profileapp.ProfileStorage { return memstore.NewProfileStorage(tx) }
		logger.Warn("using in-memory storage, data is lost on restart")

	case config.DriverPostgres:
		sqlf.SetDialect(sqlf.PostgreSQL)

		sqlDB, err := sql.Open("pgx", cfg.DB.DSN)
		if err != nil {
			panic("failed to connect database: " + err.Error())
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			panic("failed to ping database: " + err.Error())
		}
		closers = append(closers, func() { _ = sqlDB.Close() })

		db := &storage.DB{DB: sqlDB}
		s.accounts = db
		s.auth.Users = func(tx storage.Transaction) authapp.UserStorage {
			return userstorage.NewPostgresStorage(storage.MustExecutor(tx), logger)
		}

		switch cfg.ProfilesDriver() {
		case config.DriverMongo:
			collection, disconnect := mustConnectMongo(ctx, cfg)
			closers = append(closers, disconnect)

			s.profiles = storage.NopTransactor{}
			s.auth.Profiles = func(storage.Transaction) authapp.ProfileStorage {
				return profilestorage.NewMongoStorage(collection)
			}
			s.profileStorage = func(storage.Transaction) profileapp.ProfileStorage {
				return profilestorage.NewMongoStorage(collection)
			}
		default:
			s.profiles = db
			s.auth.Profiles = func(tx storage.Transaction) authapp.ProfileStorage {
				return profilestorage.NewPostgresStorage(storage.MustExecutor(tx))
			}
			s.profileStorage = func(tx storage.Transaction) profileapp.ProfileStorage {
				return profilestorage.NewPostgresStorage(storage.MustExecutor(tx))
			}
		}
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			panic("failed to connect redis: " + err.Error())
		}
		closers = append(closers, func() { _ = client.Close() })
		s.drafts = draftstorage.NewRedisStorage(client, cfg.Redis.DraftTTL)
	} else {
		s.drafts = draftstorage.NewMemoryStorage(cfg.Redis.DraftTTL)
	}

	return &s, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}

func mustConnectMongo(ctx context.Context, cfg *config.Config) (*mongo.Collection, func()) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		panic("failed to connect mongo: " + err.Error())
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		panic("failed to ping mongo: " + err.Error())
	}

	collection := client.Database(cfg.Mongo.Database).Collection(profilestorage.MongoCollection)
	if err := profilestorage.EnsureMongoIndexes(connectCtx, collection); err != nil {
		panic("failed to create mongo indexes: " + err.Error())
	}

	return collection, func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}
}

func initLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler
	switch cfg.App.Env {
	case config.Development:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: true,
			Level:     slog.LevelDebug,
		})
	case config.Production:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: false,
			Level:     slog.LevelInfo,
		})
	default:
		panic("invalid env")
	}

	return slog.New(handler)
}
