package main

import (
	"log"
	"os"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"token-distance-overlay/config"
	"token-distance-overlay/session"
	"token-distance-overlay/store"
)

var cfg = config.Load("config.json")
var settings = config.NewSettings(cfg)
var manager = session.NewManager(cfg, settings)

func setupApp() *fiber.App {
	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/canvas", manager.CreateCanvas)
	app.Get("/canvas/:id/hovered", manager.GetHovered)
	app.Post("/settings", manager.UpdateSettings)

	app.Get("/ws/:canvasId", websocket.New(manager.HandleWS))

	return app
}

func main() {
	// Allow DATABASE_URL env var to override config file
	dbURL := cfg.DatabaseURL
	if envURL := os.Getenv("DATABASE_URL"); envURL != "" {
		dbURL = envURL
	}

	if dbURL != "" {
		s, err := store.New(dbURL)
		if err != nil {
			log.Printf("warning: failed to connect to database, running without settings persistence: %v", err)
		} else {
			manager.SetStore(s)
			manager.RestoreSettings()
			defer s.Close()
		}
	}

	app := setupApp()
	log.Fatal(app.Listen(":3000"))
}
