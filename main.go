package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/agroconnect/agroconnect/config"
	"github.com/agroconnect/agroconnect/models"
	"github.com/agroconnect/agroconnect/repository"
	"github.com/agroconnect/agroconnect/routes"
	"github.com/agroconnect/agroconnect/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db, err := config.InitDatabase(
		&models.Post{}, &models.Comment{}, &models.Reaction{}, &models.Bookmark{},
		&models.CommentLike{}, &models.PostReport{},
		&models.Equipment{}, &models.BulkDeal{}, &models.LendingCircle{}, &models.Loan{},
		&models.Expense{}, &models.MarketTrend{}, &models.MarketAlert{}, &models.Scheme{},
	)

	// The forum store is chosen exactly once here; handlers never branch
	// between backends per request.
	var forum repository.ForumStore
	switch {
	case err == nil:
		forum = repository.NewGormForumStore(db)
	case cfg.ForumMemoryFallback:
		utils.Sugar.Warnf("database unavailable (%v); serving forum from memory store", err)
		db = nil
		forum = repository.NewMemoryForumStore()
	default:
		utils.Sugar.Fatalf("database unavailable: %v", err)
	}

	r := routes.SetupRouter(db, forum)

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.Sugar.Infof("Starting server on port %s (env=%s)", cfg.AppPort, cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Sugar.Fatalf("server stopped with error: %v", err)
		}
	}()

	<-ctx.Done()
	utils.Sugar.Info("shutdown signal received, draining connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Sugar.Errorf("HTTP server shutdown error: %v", err)
	}
}
