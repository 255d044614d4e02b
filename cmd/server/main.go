package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"soko/config"
	"soko/internal/cache"
	"soko/internal/database"
	"soko/internal/events"
	"soko/internal/router"
	"soko/pkg/cloudinary"
	"soko/pkg/payment"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()
	if cfg.Server.Env == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	if err := database.AutoMigrate(db); err != nil {
		logrus.WithError(err).Fatal("migration failed")
	}

	var gateway payment.Provider
	if cfg.Paystack.Secret != "" {
		gateway = payment.NewPaystackProvider(cfg.Paystack.BaseURL, cfg.Paystack.Secret, cfg.Paystack.Timeout)
	} else {
		logrus.Warn("PAYSTACK_SECRET not set, using stub payment provider")
		gateway = &payment.StubProvider{}
	}

	var publisher events.Publisher
	if cfg.AMQP.URL != "" {
		pub, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			logrus.WithError(err).Warn("amqp unavailable, events disabled")
		} else {
			publisher = pub
			defer pub.Close()
		}
	}

	var cloud cloudinary.Client
	if cfg.Cloudinary.CloudName != "" {
		cloud, err = cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			logrus.WithError(err).Fatal("cloudinary init failed")
		}
	} else {
		logrus.Warn("CLOUDINARY_CLOUD_NAME not set, image uploads disabled")
	}

	var store *cache.Cache
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logrus.WithError(err).Warn("redis unavailable, product cache disabled")
	} else {
		store = cache.New(rdb)
	}
	cancelPing()

	engine := router.Setup(cfg, db, gateway, publisher, cloud, store)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logrus.Infof("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("listen failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Fatal("server shutdown failed")
	}
	logrus.Info("server stopped")
}
