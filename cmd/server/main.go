package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/teamchat/internal/config"
	"github.com/Skotchmaster/teamchat/internal/db"
	"github.com/Skotchmaster/teamchat/internal/es"
	"github.com/Skotchmaster/teamchat/internal/graph"
	"github.com/Skotchmaster/teamchat/internal/logging"
	authmw "github.com/Skotchmaster/teamchat/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/teamchat/internal/middleware/logging"
	"github.com/Skotchmaster/teamchat/internal/mykafka"
	"github.com/Skotchmaster/teamchat/internal/realtime"
	"github.com/Skotchmaster/teamchat/internal/repo"
	"github.com/Skotchmaster/teamchat/internal/service"
	httpserver "github.com/Skotchmaster/teamchat/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	l := logging.New(cfg.LogLevel, cfg.AppEnv).With("service", cfg.ServiceName)
	logging.SetDefault(l)
	defer func() { _ = l.Sync() }()

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	gdb, err := db.Open(startCtx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := db.Migrate(gdb); err != nil {
		return err
	}

	store := repo.New(gdb)
	hub := realtime.NewHub()

	var producer *mykafka.Producer
	var events service.EventPublisher = mykafka.Nop{}
	if cfg.EventsEnabled() {
		producer = mykafka.NewProducer(cfg.KafkaBrokers)
		events = producer
		l.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}

	messages := &service.MessageService{Repo: store, Events: events, Notifier: hub}
	if cfg.SearchEnabled() {
		client, err := es.NewClient(startCtx, cfg)
		if err != nil {
			return err
		}
		messages.Index = es.NewMessageIndex(client, cfg.ESIndex)
		l.Info("search_enabled", "index", cfg.ESIndex)
	}

	auth := &service.AuthService{
		Repo:          store,
		Events:        events,
		AccessSecret:  cfg.AccessSecret(),
		RefreshSecret: cfg.RefreshSecret(),
	}
	teams := &service.TeamService{Repo: store, Events: events}

	schema, err := graph.NewSchema(&graph.Resolver{
		UserService:    &service.UserService{Repo: store, Events: events},
		AuthService:    auth,
		TeamService:    teams,
		ChannelService: &service.ChannelService{Repo: store, Teams: teams, Events: events},
		MessageService: messages,
		Store:          store,
	})
	if err != nil {
		return fmt.Errorf("graphql schema: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(l))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  []string{echo.HeaderContentType, echo.HeaderAuthorization, authmw.HeaderToken, authmw.HeaderRefreshToken},
		ExposeHeaders: []string{authmw.HeaderToken, authmw.HeaderRefreshToken},
	}))
	e.Use(authmw.NewTokenAuth(cfg.AccessSecret(), auth).Middleware)

	httpserver.Register(e, &httpserver.Deps{
		DB:             gdb,
		Schema:         schema,
		Hub:            hub,
		Store:          store,
		AllowedOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		l.Info("http_server_started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("http_server_error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	go func() {
		<-quit
		l.Warn("force_exit")
		os.Exit(1)
	}()

	l.Info("shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		l.Error("server_shutdown_error", "error", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			l.Error("db_close_error", "error", err)
		}
	} else {
		l.Error("db_handle_error", "error", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			l.Error("kafka_close_error", "error", err)
		}
	}

	l.Info("shutdown_complete")
	return nil
}
