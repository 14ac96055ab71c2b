package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"academy-backend/config"
	"academy-backend/controllers"
	"academy-backend/provisioner"
	"academy-backend/routes"
	"academy-backend/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logger.Sync()

	db, err := config.ConnectDB(cfg.Database)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	prov := provisioner.New(provisioner.NewPostgresStore(db), logger)

	ctrl := routes.Controllers{
		Auth:      controllers.NewAuthController(db, logger, prov),
		Booking:   controllers.NewBookingController(db, logger),
		Schedule:  controllers.NewScheduleController(db, logger),
		Branch:    controllers.NewBranchController(db, logger),
		Dashboard: controllers.NewDashboardController(db, logger),
		Video:     controllers.NewVideoController(db, logger),
		Admin:     controllers.NewAdminController(db, logger, prov),
		Chat:      controllers.NewChatController(db, logger, cfg.Chat),
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(security.CORSMiddleware())
	routes.Register(r, db, ctrl)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	go func() {
		logger.Info("academy backend starting", zap.String("port", cfg.HTTPPort), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	// Give outstanding requests 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
