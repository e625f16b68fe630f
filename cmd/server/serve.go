package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fivecrowns/server/internal/auth"
	"github.com/fivecrowns/server/internal/config"
	"github.com/fivecrowns/server/internal/eventstore"
	"github.com/fivecrowns/server/internal/hub"
	"github.com/fivecrowns/server/internal/rest"
	"github.com/fivecrowns/server/internal/store"
)

// runServe wires config, Postgres, the event store, the hub, and the REST
// router together and blocks serving HTTP until the process receives a
// shutdown signal. On shutdown it stops the HTTP server and then stops
// every game actor; commands still waiting in an actor's queue are not
// guaranteed to run, and the hub does not close open websockets itself.
func runServe(cmd *cobra.Command, cfg *config.Config) error {
	log := newLogger()

	pool, err := pgxpool.New(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parsing redis url: %w", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	sessions := auth.NewSessionMinter(cfg.SessionSigningSecret, cfg.SessionTTL())
	media := auth.NewMediaMinter(cfg.MediaServiceSecret)

	events := eventstore.NewPostgresStore(pool)
	users := store.NewUserRepository(pool)
	friends := store.NewFriendshipRepository(pool)
	games := store.NewGameRepository(pool)
	notifications := store.NewNotificationRepository(pool)

	h := hub.New(sessions, events, games, notifications, redisClient, log)
	defer h.Shutdown()

	router := rest.NewRouter(&rest.Deps{
		Users:         users,
		Friends:       friends,
		Games:         games,
		Notifications: notifications,
		Sessions:      sessions,
		Media:         media,
		Hub:           h,
		Log:           log,
	})

	// ReadTimeout/WriteTimeout bound the REST handlers only: gorilla's
	// Upgrade hijacks the TCP conn for /ws before either deadline applies,
	// so the websocket handshake and the long-lived socket that follows
	// are governed by hub.writeWait/pongWait instead. Don't shorten these
	// to "fix" a slow socket; they don't touch it.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ListenPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.ListenPort).Info("listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("listen: %w", err)
		}
	case sig := <-shutdown:
		log.WithField("signal", sig).Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			srv.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}
	return nil
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	return log
}
