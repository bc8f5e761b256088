package routes

import (
	"log"
	"net/http"

	"catfish/handlers"
	"catfish/middleware"
	"catfish/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	gameHandler *handlers.GameHandler,
	promptHandler *handlers.PromptHandler,
	hub *services.Hub,
	gameService *services.GameService,
	authService *services.AuthService,
	uploadDir string,
) {
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/guest", authHandler.Guest)
		}

		// Game routes (any authenticated identity, guests included)
		games := api.Group("/games")
		games.Use(middleware.Auth(authService))
		{
			games.POST("", gameHandler.CreateGame)
			games.POST("/join", gameHandler.JoinGame)
			games.GET("/:id", gameHandler.GetGame)
			games.POST("/:id/leave", gameHandler.LeaveGame)
			games.POST("/:id/start", gameHandler.StartGame)
			games.POST("/:id/advance", gameHandler.AdvancePhase)
			games.POST("/:id/answer", gameHandler.SubmitAnswer)
			games.POST("/:id/profile-picture", gameHandler.UploadProfilePicture)
		}

		// Prompt pool administration (registered accounts only)
		prompts := api.Group("/prompts")
		prompts.Use(middleware.Auth(authService), middleware.RequireRegistered())
		{
			prompts.GET("", promptHandler.ListPrompts)
			prompts.POST("", promptHandler.CreatePrompt)
			prompts.PUT("/:id", promptHandler.UpdatePrompt)
			prompts.DELETE("/:id", promptHandler.DeletePrompt)
		}
	}

	// Profile pictures are served straight off disk.
	router.Static("/uploads", uploadDir)

	// WebSocket endpoint pushing change notifications for one game.
	// Clients re-fetch the game document when nudged.
	router.GET("/ws/:gameID", func(c *gin.Context) {
		gameID := c.Param("gameID")

		if _, err := gameService.GetGame(c.Request.Context(), gameID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("websocket upgrade failed for game %s: %v", gameID, err)
			return
		}

		hub.RegisterClient(conn, gameID)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
