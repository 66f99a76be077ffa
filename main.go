package main

import (
	"context"
	"log"
	"os"
	"time"

	"temanin/server/internal/chat"
	"temanin/server/internal/config"
	"temanin/server/internal/database"
	"temanin/server/internal/friends"
	"temanin/server/internal/handlers"
	"temanin/server/internal/middleware"
	"temanin/server/internal/routes"
	"temanin/server/internal/store"
	ws "temanin/server/internal/websocket"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	// Connect to database
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(context.Background()); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	st := store.NewPostgres(database.Pool)

	// Realtime core: hub first, then the chat service that handles its
	// events
	hub := ws.NewHub()
	hub.OnOffline = func(userID string) {
		if err := st.TouchLastSeen(context.Background(), userID); err != nil {
			log.Printf("Failed to update last seen: %v", err)
		}
	}
	chatService := chat.NewService(st, st, st, hub)
	hub.SetHandler(chatService)

	friendService := friends.NewService(st)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Temanin API v1.0",
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowCredentials: true,
	}))

	routes.SetupRoutes(app, routes.Deps{
		Auth:           middleware.Auth(st, []byte(cfg.JWTSecret)),
		LimiterStorage: middleware.NewLimiterStorage(cfg.RedisURL),
		Friends:        &handlers.FriendHandler{Friends: friendService, Store: st, Users: st},
		Messages:       &handlers.MessageHandler{Chat: chatService, Hub: hub},
		Groups:         &handlers.GroupHandler{Groups: st, Users: st, Chat: chatService},
		WS:             &handlers.WebSocketHandler{Hub: hub},
	})

	go func() {
		log.Printf("🚀 Server starting on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal(err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"fiber": func(ctx context.Context) error {
				return app.ShutdownWithContext(ctx)
			},
			"database": func(ctx context.Context) error {
				database.Close()
				return nil
			},
		},
	)

	exitCode := <-wait
	log.Printf("Server exited with code: %d", exitCode)
	os.Exit(exitCode)
}
