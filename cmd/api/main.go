package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"lifebookshelf-sync/internal/config"
	"lifebookshelf-sync/internal/handler"
	"lifebookshelf-sync/internal/middleware"
	"lifebookshelf-sync/internal/repository"
	"lifebookshelf-sync/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	minioClient, err := config.NewMinIOClient(cfg)
	if err != nil {
		log.Printf("Warning: Failed to connect to MinIO: %v (cover images will be omitted)", err)
	}

	notionClient := config.NewNotionClient(cfg)

	fcmClient, err := config.NewMessagingClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize messaging client: %v", err)
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, minioClient, notionClient, fcmClient, cfg)
	handlers := handler.NewHandlers(services)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))

	setupRoutes(app, handlers)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jobs := app.Group("/jobs")
	jobs.Post("/publication-status-sync", h.Job.SyncPublicationStatus)
	jobs.Post("/new-publication", h.Job.ProcessNewPublication)
	jobs.Post("/member-cleanup", h.Job.CleanupMembers)
}
