// The server binary runs the cinema HTTP API. It assumes the migrate binary
// has already brought the schema up to date.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jimmitjoo/cinema/auth"
	"github.com/jimmitjoo/cinema/cache"
	"github.com/jimmitjoo/cinema/config"
	"github.com/jimmitjoo/cinema/data"
	"github.com/jimmitjoo/cinema/database"
	"github.com/jimmitjoo/cinema/email"
	"github.com/jimmitjoo/cinema/handlers"
	"github.com/jimmitjoo/cinema/logging"
)

func main() {
	cfg, err := config.Load(os.Getenv("CINEMA_CONFIG"))
	if err != nil {
		logging.NewDefault().Fatal("loading configuration", map[string]interface{}{"error": err.Error()})
	}

	level := logging.ParseLogLevel(cfg.LogLevel)
	logger := logging.New(logging.Config{
		Level:      level,
		Writer:     os.Stdout,
		Service:    cfg.AppName,
		EnableJSON: !cfg.Debug,
	})

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", map[string]interface{}{"error": err.Error()})
	}
}

func run(cfg *config.Config, logger *logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DB.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	var store cache.Cache = cache.Noop{}
	if cfg.Cache.Driver == "badger" {
		badgerCache, err := cache.NewBadgerCache(cfg.Cache.Path, cfg.AppName+":")
		if err != nil {
			return err
		}
		defer badgerCache.Close()
		store = badgerCache
	}

	users := data.NewUserRepository(db)

	h := &handlers.Handlers{
		Log:        logger,
		Users:      users,
		Movies:     data.NewMovieRepository(db),
		Genres:     data.NewGenreRepository(db),
		Comments:   data.NewCommentRepository(db),
		Ratings:    data.NewRatingRepository(db),
		Reactions:  data.NewReactionRepository(db),
		Favourites: data.NewFavouriteRepository(db),

		Tokens: auth.NewTokenManager(
			cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret,
			cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL),
		Signer: auth.NewSigner(cfg.Auth.SigningSecret),
		Mail: &email.Mailer{
			Host:       cfg.Email.Host,
			Port:       cfg.Email.Port,
			Username:   cfg.Email.Username,
			Password:   cfg.Email.Password,
			Encryption: cfg.Email.Encryption,
			From:       cfg.Email.From,
			FromName:   cfg.Email.FromName,
		},
		Cache:  store,
		Health: database.NewHealthChecker(db, 5*time.Second),

		ActivationTTL: cfg.Auth.ActivationTTL,
		ResetTTL:      cfg.Auth.ResetTTL,
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@hourly", func() {
		purged, err := users.PurgeExpiredTokens(context.Background())
		if err != nil {
			logger.Error("purging refresh tokens", map[string]interface{}{"error": err.Error()})
			return
		}
		if purged > 0 {
			logger.Info("purged expired refresh tokens", map[string]interface{}{"count": purged})
		}
	}); err != nil {
		return err
	}
	if badgerCache, ok := store.(*cache.BadgerCache); ok {
		if _, err := scheduler.AddFunc("@every 15m", badgerCache.RunGC); err != nil {
			return err
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      h.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", map[string]interface{}{"addr": server.Addr})
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
