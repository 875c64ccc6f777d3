package handler

import (
	"net/http"

	"github.com/arnavshah/rota-api-go/pkg/auth"
	"github.com/arnavshah/rota-api-go/pkg/config"
	"github.com/arnavshah/rota-api-go/pkg/database"
	"github.com/arnavshah/rota-api-go/pkg/handlers"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var r *gin.Engine

func init() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("could not load config: %v", err)
	}
	log, err := cfg.NewLogger()
	if err != nil {
		logrus.Fatal(err)
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

	gin.SetMode(gin.ReleaseMode)
	r = gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	h.Register(r, "3.0.0-serverless")
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
