package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/arelyshop/tiendatemp/internal/api"
	"github.com/arelyshop/tiendatemp/internal/config"
	"github.com/arelyshop/tiendatemp/internal/database"
	"github.com/arelyshop/tiendatemp/internal/migrations"
	"github.com/arelyshop/tiendatemp/internal/pdf"
	"github.com/arelyshop/tiendatemp/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer logger.Sync()

	st := store.New(db)
	docs := pdf.New(cfg.AssetsDir)
	handler := api.New(st, cfg.Secret, cfg.AllowRegistration, docs, logger)

	logger.Info("storefront server starting", zap.String("port", cfg.HTTPPort))
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
