package main

import (
	"log"

	"catfish/config"
	"catfish/handlers"
	"catfish/middleware"
	"catfish/models"
	"catfish/routes"
	"catfish/services"
	"catfish/store"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Prompt{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	redisClient := config.InitRedis(cfg)
	gameStore := store.New(redisClient)

	authService := services.NewAuthService(db, cfg.JWTSecret)
	promptService := services.NewPromptService(db)
	lobbyService := services.NewLobbyService(gameStore)
	gameService := services.NewGameService(gameStore, promptService)

	assetService, err := services.NewAssetService(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		log.Fatal("Failed to initialise asset storage:", err)
	}

	hub := services.NewHub()
	go hub.Run()

	authHandler := handlers.NewAuthHandler(authService)
	gameHandler := handlers.NewGameHandler(lobbyService, gameService, assetService, hub)
	promptHandler := handlers.NewPromptHandler(promptService)

	router := gin.Default()
	router.Use(middleware.CORS())

	routes.SetupRoutes(router, authHandler, gameHandler, promptHandler, hub, gameService, authService, cfg.UploadDir)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.BindAddress + ":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
