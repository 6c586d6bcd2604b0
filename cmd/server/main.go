package main

import (
	"context"
	"os"
	"time"

	"smartorder/internal/api"
	"smartorder/internal/catalog"
	"smartorder/internal/config"
	"smartorder/internal/pg"
	"smartorder/pkg/logger"
)

func main() {
	cfg := config.LoadWithPath("config.json")

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.LogDev})
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	reg, err := catalog.LoadRegistry(cfg.CatalogsDir)
	if err != nil {
		log.Fatalw("load catalog descriptors", "dir", cfg.CatalogsDir, "err", err)
	}
	log.Infow("catalogs registered", "count", len(reg.Tables()))

	storage := api.NewStorage(reg, log)

	if cfg.DBURL != "" {
		db, err := pg.Open(cfg.DBURL)
		if err != nil {
			log.Fatalw("postgres connect", "err", err)
		}
		defer db.Close()

		store, err := pg.NewStore(db)
		if err != nil {
			log.Fatalw("postgres bootstrap", "err", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := storage.WithPersister(ctx, store); err != nil {
			cancel()
			log.Fatalw("load persisted catalogs", "err", err)
		}
		cancel()
		log.Infow("postgres persistence enabled")
	}

	router := api.NewRouter(storage, api.RouterConfig{
		SessionCookie: cfg.SessionCookie,
		CSRFCookie:    cfg.CSRFCookie,
		DevUser:       cfg.DevUser,
		DevPass:       cfg.DevPass,
	}, log)

	log.Infow("catalog server listening", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalw("server stopped", "err", err)
	}
}
