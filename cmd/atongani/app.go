package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/atongani/market-client/internal/core/domain"
	"github.com/atongani/market-client/internal/core/ports"
	"github.com/atongani/market-client/internal/core/service"
	"github.com/atongani/market-client/internal/infrastructure/config"
	mongodb "github.com/atongani/market-client/internal/infrastructure/db/mongo"
	redisdb "github.com/atongani/market-client/internal/infrastructure/db/redis"
	"github.com/atongani/market-client/internal/infrastructure/marketapi"
	"github.com/atongani/market-client/internal/infrastructure/queue"
	filestore "github.com/atongani/market-client/internal/infrastructure/storage/file"
	"github.com/atongani/market-client/internal/session"
)

// app bundles the long-lived dependencies shared by every command.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	out    io.Writer
	prompt *prompter

	session *session.Store
	api     *marketapi.Client
	auth    *service.AuthService
	orders  *service.OrderService

	redis       *goredis.Client
	mongoClient *mongo.Client
	mongoDB     *mongo.Database
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, out io.Writer) (*app, error) {
	a := &app{cfg: cfg, log: log, out: out}

	if cfg.Redis.Enabled {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		a.redis = rdb
		log.Debug().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	}

	storage, err := a.tokenStorage()
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.session = session.NewStore(storage, log)
	if err := a.session.Load(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.api, err = marketapi.New(marketapi.Config{
		BaseURL:   cfg.API.BaseURL,
		LoginPath: cfg.API.LoginPath,
		Timeout:   cfg.API.Timeout,
	}, a.session, log)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.auth = service.NewAuthService(a.api, a.session, log)
	a.orders = service.NewOrderService(a.api, log)
	return a, nil
}

func (a *app) tokenStorage() (ports.TokenStorage, error) {
	switch a.cfg.Session.Backend {
	case config.SessionBackendMemory:
		return session.NewMemoryStorage(), nil
	case config.SessionBackendRedis:
		return redisdb.NewTokenStore(a.redis, a.cfg.Session.Key, a.cfg.Session.TTL), nil
	default:
		path := a.cfg.Session.File
		if path == "" {
			path = filestore.DefaultPath()
		}
		return filestore.New(filestore.Config{
			Path:   path,
			Key:    a.cfg.Session.Key,
			Secret: a.cfg.Session.Secret,
		})
	}
}

// connectMongo opens the audit store when enabled. It is only needed by the
// commands that observe transitions.
func (a *app) connectMongo(ctx context.Context) (*mongodb.TransitionRepository, error) {
	if !a.cfg.Mongo.Enabled {
		return nil, nil
	}
	if a.mongoDB == nil {
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      a.cfg.Mongo.URI,
			Database: a.cfg.Mongo.Database,
		})
		if err != nil {
			return nil, err
		}
		a.mongoClient, a.mongoDB = client, db
	}
	repo := mongodb.NewTransitionRepository(a.mongoDB)
	if err := repo.EnsureIndexes(ctx); err != nil {
		a.log.Warn().Err(err).Msg("failed to ensure transition indexes")
	}
	return repo, nil
}

// startDispatcher wires the transition pipeline: dedup in Redis (or memory),
// audit in Mongo when enabled, and announcement through notifier.
func (a *app) startDispatcher(ctx context.Context, notifier service.Notifier) (*queue.Dispatcher, *mongodb.TransitionRepository, error) {
	repo, err := a.connectMongo(ctx)
	if err != nil {
		return nil, nil, err
	}

	var dedup service.DedupChecker = service.NewMemoryDedup()
	if a.redis != nil {
		dedup = redisdb.NewDedupChecker(a.redis)
	}

	var auditRepo ports.TransitionRepository
	if repo != nil {
		auditRepo = repo
	}

	transitions := service.NewTransitionService(auditRepo, dedup, notifier, a.log)
	d := queue.NewDispatcher(a.cfg.Poll.Workers, transitions, a.log)
	d.Start(ctx)
	return d, repo, nil
}

func (a *app) newOrdersView(sink service.TransitionSink) *service.OrdersView {
	return service.NewOrdersView(a.orders, service.OrdersViewOptions{
		Interval: a.cfg.Poll.Interval,
		Timeout:  a.cfg.Poll.Timeout,
		Sink:     sink,
	}, a.log)
}

// enterDashboard is the command-line route guard: presence first, then the
// backend confirms the identity. Failures map to exit code 2.
func (a *app) enterDashboard(ctx context.Context) (*domain.User, error) {
	if !a.session.Present() {
		return nil, exitErr(exitNoSession, domain.ErrNoSession.Error())
	}
	user, err := a.auth.EnterDashboard(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSessionInvalid) {
			return nil, exitErr(exitNoSession, domain.ErrSessionInvalid.Error())
		}
		return nil, exitErr(exitNoSession, fmt.Sprintf("could not confirm your session (%v), please log in again", err))
	}
	return user, nil
}

// requireRole rejects users whose role may not run the command.
func requireRole(user *domain.User, roles ...domain.Role) error {
	for _, r := range roles {
		if user.Role == r {
			return nil
		}
	}
	return exitErr(exitFailure, fmt.Sprintf("this command is not available to %s accounts", user.Role.Label()))
}

func (a *app) Close(ctx context.Context) {
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn().Err(err).Msg("redis close failed")
		}
	}
}
