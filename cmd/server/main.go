package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"drpworkshop/server/internal/api"
	"drpworkshop/server/internal/config"
	"drpworkshop/server/internal/repository/mongo"
	"drpworkshop/server/internal/service"
	"drpworkshop/server/internal/storage"
)

// @title DRP Workshop API
// @version 1.0
// @description API for SweatPros and SweatAthletes: SweatSheet programs, messaging, calendars and team rosters.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting DRP Workshop server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() { // Run index creation in the background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureSweatSheetIndexes(ctx, appDB.Collection("sweatsheets"))
		mongo.EnsureWorkoutIndexes(ctx, appDB.Collection("workout_categories"), appDB.Collection("workout_exercises"))
		mongo.EnsureConversationIndexes(ctx, appDB.Collection("conversations"))
		mongo.EnsureMessageIndexes(ctx, appDB.Collection("messages"), appDB.Collection("message_reads"))
		mongo.EnsureCalendarIndexes(ctx, appDB.Collection("calendars"))
		mongo.EnsureNoteIndexes(ctx, appDB.Collection("notes"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	sheetRepo := mongo.NewMongoSweatSheetRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)
	conversationRepo := mongo.NewMongoConversationRepository(appDB)
	messageRepo := mongo.NewMongoMessageRepository(appDB)
	calendarRepo := mongo.NewMongoCalendarRepository(appDB)
	noteRepo := mongo.NewMongoNoteRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	sheetService := service.NewSweatSheetService(sheetRepo, userRepo, workoutRepo)
	workoutService := service.NewWorkoutService(workoutRepo)
	messagingService := service.NewMessagingService(conversationRepo, messageRepo, userRepo, fileStorage)
	calendarService := service.NewCalendarService(calendarRepo)
	teamService := service.NewTeamService(userRepo, fileStorage)
	noteService := service.NewNoteService(noteRepo)

	// --- Seed Workout Library ---
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if err := workoutService.EnsureDefaults(seedCtx); err != nil {
		log.Printf("ERROR: Failed to seed workout library: %v", err)
	}
	cancelSeed()

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret,
		authService, sheetService, workoutService,
		messagingService, calendarService, teamService, noteService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
