package main

import (
	"github.com/arnavshah/rota-api-go/pkg/auth"
	"github.com/arnavshah/rota-api-go/pkg/config"
	"github.com/arnavshah/rota-api-go/pkg/database"
	"github.com/arnavshah/rota-api-go/pkg/handlers"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const version = "3.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("could not load config: %v", err)
	}
	log, err := cfg.NewLogger()
	if err != nil {
		logrus.Fatal(err)
	}

	if cfg.GinMode == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDB(database.Config{DatabaseURL: cfg.DatabaseURL, DataPath: cfg.DataPath})
	if err != nil {
		log.Fatal(err)
	}
	if err := auth.EnsureAdminExists(db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.WithError(err).Warn("could not create admin user")
	}

	h := &handlers.Handler{
		DB:         db,
		Auth:       auth.New(cfg.JWTSecret, cfg.APIMasterSecret),
		Scheduling: cfg.Scheduling,
		Log:        log,
	}

	r := gin.Default()
	h.Register(r, version)

	log.WithFields(logrus.Fields{
		"port":   cfg.Port,
		"days":   len(cfg.Scheduling.Days),
		"shifts": cfg.Scheduling.Shifts,
		"quota":  cfg.Scheduling.Quota,
	}).Info("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
