package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/socialspark/api/internal/client"
	"github.com/socialspark/api/internal/config"
	"github.com/socialspark/api/internal/handler"
	"github.com/socialspark/api/internal/middleware"
	"github.com/socialspark/api/internal/queue"
	"github.com/socialspark/api/internal/render"
	"github.com/socialspark/api/internal/repository"
	"github.com/socialspark/api/internal/service"
	"github.com/socialspark/api/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Initialize validator
	validate := validator.New()

	// Initialize external clients
	groqClient := client.NewGroqClient(&cfg.Groq)
	hordeClient := client.NewHordeClient(&cfg.Horde)
	pixabayClient := client.NewPixabayClient(&cfg.Pixabay)
	publishClient := client.NewUploadPostClient(&cfg.Publish)

	storageClient, err := client.NewS3Client(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage client: %v", err)
	}
	if !storageClient.IsConfigured() {
		log.Println("Warning: object storage not configured, renders will fail at upload")
	}

	// Initialize queue and repositories
	taskQueue := queue.NewTaskQueue(asynqClient)
	scheduleRepo := repository.NewScheduleRepository(redisClient)

	// Initialize services
	taskService := service.NewTaskService(redisClient)
	captionService := service.NewCaptionService(groqClient)
	imageService := service.NewImageService(groqClient, taskQueue, taskService)
	videoService := service.NewVideoService(groqClient, taskQueue, taskService)
	scheduleService := service.NewScheduleService(taskQueue, taskService, scheduleRepo)

	// Initialize handlers
	captionHandler := handler.NewCaptionHandler(captionService, validate)
	imageHandler := handler.NewImageHandler(imageService, validate)
	videoHandler := handler.NewVideoHandler(videoService, validate)
	scheduleHandler := handler.NewScheduleHandler(scheduleService, validate)
	taskHandler := handler.NewTaskHandler(taskService)

	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    50 * 1024 * 1024, // 50MB
	})

	// Global middleware
	app.Use(recover.New())
	isDebug := strings.EqualFold(cfg.Server.LogLevel, "debug")
	logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if isDebug {
		logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${body}\n"
		log.Println("Debug logging enabled")
	}
	app.Use(logger.New(logger.Config{
		Format: logFormat,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Base URL - timestamp
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"timestamp": time.Now().Unix(),
		})
	})

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"groq":    groqClient.IsConfigured(),
				"horde":   hordeClient.IsConfigured(),
				"pixabay": pixabayClient.IsConfigured(),
				"publish": publishClient.IsConfigured(),
				"storage": storageClient.IsConfigured(),
			},
		})
	})

	// API routes
	api := app.Group("/api")

	// Caption routes
	captions := api.Group("/captions", rateLimiter.CaptionLimit(cfg.RateLimit.CaptionsPerMin))
	captions.Post("/generate", captionHandler.Generate)

	// Image routes
	images := api.Group("/images")
	images.Post("/generate", rateLimiter.CaptionLimit(cfg.RateLimit.CaptionsPerMin), imageHandler.Generate)
	images.Post("/render", rateLimiter.ImageLimit(cfg.RateLimit.ImagesPerHour), imageHandler.Render)

	// Video routes
	videos := api.Group("/videos")
	videos.Post("/storyboard", rateLimiter.CaptionLimit(cfg.RateLimit.CaptionsPerMin), videoHandler.Storyboard)
	videos.Post("/render", rateLimiter.VideoLimit(cfg.RateLimit.VideosPerHour), videoHandler.Render)

	// Schedule routes
	schedule := api.Group("/schedule")
	schedule.Post("/post", scheduleHandler.SchedulePost)
	schedule.Post("/reminder", scheduleHandler.ScheduleReminder)
	schedule.Get("/:assetId", scheduleHandler.Get)

	// Task status routes
	api.Get("/tasks/:taskId", taskHandler.Status)

	// Start Asynq worker server
	go startWorkerServer(cfg, taskService, scheduleRepo, hordeClient, pixabayClient, publishClient, storageClient)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func startWorkerServer(
	cfg *config.Config,
	taskService *service.TaskService,
	scheduleRepo *repository.ScheduleRepository,
	hordeClient *client.HordeClient,
	pixabayClient *client.PixabayClient,
	publishClient *client.UploadPostClient,
	storageClient *client.S3Client,
) {
	asynqLogLevel := asynq.InfoLevel
	if strings.EqualFold(cfg.Server.LogLevel, "debug") {
		asynqLogLevel = asynq.DebugLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "warn") {
		asynqLogLevel = asynq.WarnLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "error") {
		asynqLogLevel = asynq.ErrorLevel
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				queue.QueueRender:  6,
				queue.QueuePublish: 4,
			},
			LogLevel: asynqLogLevel,
		},
	)

	pipeline := render.NewPipeline(storageClient)

	imageWorker := worker.NewImageWorker(hordeClient, taskService)
	videoWorker := worker.NewVideoWorker(pixabayClient, pipeline, taskService, cfg.Render.AllowMissingShots)
	publishWorker := worker.NewPublishWorker(publishClient, storageClient, taskService)
	reminderWorker := worker.NewReminderWorker(scheduleRepo, taskService)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskTypeRenderImage, imageWorker.ProcessTask)
	mux.HandleFunc(queue.TaskTypeRenderVideo, videoWorker.ProcessTask)
	mux.HandleFunc(queue.TaskTypePublishPost, publishWorker.ProcessTask)
	mux.HandleFunc(queue.TaskTypeReminder, reminderWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
