package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/config"
	"github.com/yeremiapane/restaurant-pos/database"
	"github.com/yeremiapane/restaurant-pos/kds"
	"github.com/yeremiapane/restaurant-pos/router"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

func main() {
	utils.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load config: %v", err)
	}
	utils.InitLoggerWithLevel(cfg.LogLevel)
	utils.ConfigureJWT(cfg.JWTSecret, cfg.JWTTTL)
	if cfg.JWTSecret == "" {
		utils.InfoLogger.Warn("JWT_SECRET is not set; using the development secret")
	}

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}

	if cfg.AdminPassword != "" {
		users := services.NewUserService(db)
		if err := users.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
			utils.ErrorLogger.Fatalf("Failed to seed admin user: %v", err)
		}
	} else {
		utils.InfoLogger.Warn("ADMIN_PASSWORD is not set; no admin user will be seeded")
	}

	hub := kds.NewHub()
	r := router.SetupRouter(db, hub, router.Options{
		CORSOrigin:     cfg.CORSOrigin,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})
	if err := r.SetTrustedProxies(nil); err != nil {
		utils.ErrorLogger.Fatal(err)
	}

	utils.InfoLogger.Printf("Listening on port %s (db=%s)", cfg.Port, cfg.DBDriver)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}
