package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"drpworkshop/server/internal/domain"
	"drpworkshop/server/internal/service"
)

// SetupRoutes mounts every API endpoint onto the router.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	sheetService service.SweatSheetService,
	workoutService service.WorkoutService,
	messagingService service.MessagingService,
	calendarService service.CalendarService,
	teamService service.TeamService,
	noteService service.NoteService,
) {
	authHandler := NewAuthHandler(authService)
	sheetHandler := NewSweatSheetHandler(sheetService)
	workoutHandler := NewWorkoutHandler(workoutService)
	messagingHandler := NewMessagingHandler(messagingService)
	calendarHandler := NewCalendarHandler(calendarService)
	teamHandler := NewTeamHandler(teamService)
	noteHandler := NewNoteHandler(noteService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")

	authGroup := apiV1.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- Profile & Team ---
		protected.GET("/me", teamHandler.GetMe)
		protected.PUT("/me", teamHandler.UpdateMe)
		protected.POST("/me/avatar", teamHandler.PrepareAvatar)
		protected.PUT("/me/avatar", teamHandler.ConfirmAvatar)

		teamGroup := protected.Group("/team")
		{
			teamGroup.GET("/members", teamHandler.ListMembers)
			teamGroup.GET("/athletes", RoleMiddleware(domain.RolePro), teamHandler.ListAthletes)
			teamGroup.GET("/members/:userId", teamHandler.GetProfile)
		}

		// --- Workout Library ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.GET("/categories", workoutHandler.ListCategories)
			workoutGroup.GET("/categories/:categoryId/exercises", workoutHandler.ListExercisesByCategory)
			workoutGroup.GET("/exercises", workoutHandler.ListExercises)
		}

		// --- SweatSheets ---
		sheetGroup := protected.Group("/sweatsheets")
		{
			proOnly := RoleMiddleware(domain.RolePro)

			sheetGroup.GET("", sheetHandler.ListSweatSheets)
			sheetGroup.GET("/active", RoleMiddleware(domain.RoleAthlete), sheetHandler.GetActiveSweatSheet)
			sheetGroup.GET("/templates", sheetHandler.ListTemplates)
			sheetGroup.GET("/:sheetId", sheetHandler.GetSweatSheet)

			sheetGroup.POST("", proOnly, sheetHandler.CreateSweatSheet)
			sheetGroup.POST("/templates", proOnly, sheetHandler.CreateTemplate)
			sheetGroup.PUT("/:sheetId/name", proOnly, sheetHandler.RenameSweatSheet)
			sheetGroup.POST("/:sheetId/assign", proOnly, sheetHandler.AssignSweatSheet)
			sheetGroup.DELETE("/:sheetId", proOnly, sheetHandler.DeleteSweatSheet)

			// Structural edits (pro only)
			sheetGroup.POST("/:sheetId/phases", proOnly, sheetHandler.InitializePhase)
			sheetGroup.POST("/:sheetId/sections/:sectionId/exercises", proOnly, sheetHandler.AddExercise)
			sheetGroup.DELETE("/:sheetId/exercises/:exerciseId", proOnly, sheetHandler.RemoveExercise)
			sheetGroup.PUT("/:sheetId/exercises/:exerciseId/category", proOnly, sheetHandler.SetExerciseCategory)
			sheetGroup.PUT("/:sheetId/exercises/:exerciseId/workout", proOnly, sheetHandler.SetExerciseWorkout)
			sheetGroup.PUT("/:sheetId/exercises/:exerciseId/sets", proOnly, sheetHandler.SetExerciseSets)

			// Training edits (creator or assigned athlete)
			sheetGroup.POST("/:sheetId/phases/:phaseId/complete", sheetHandler.CompletePhase)
			sheetGroup.POST("/:sheetId/exercises/:exerciseId/toggle", sheetHandler.ToggleExerciseCompleted)
			sheetGroup.PUT("/:sheetId/exercises/:exerciseId/set-records/:setIndex", sheetHandler.UpdateSetRecord)
		}

		// --- Messaging ---
		messagingGroup := protected.Group("/conversations")
		{
			messagingGroup.GET("", messagingHandler.ListInbox)
			messagingGroup.POST("/direct", messagingHandler.OpenDirect)
			messagingGroup.POST("/group", messagingHandler.CreateGroup)
			messagingGroup.GET("/:conversationId/messages", messagingHandler.ListMessages)
			messagingGroup.POST("/:conversationId/messages", messagingHandler.SendMessage)
			messagingGroup.POST("/:conversationId/read", messagingHandler.MarkRead)
			messagingGroup.GET("/:conversationId/attachment-url", messagingHandler.GetAttachmentURL)
		}
		protected.POST("/attachments", messagingHandler.PrepareAttachment)

		// --- Calendar ---
		calendarGroup := protected.Group("/calendar")
		{
			calendarGroup.GET("", calendarHandler.GetCalendar)
			calendarGroup.PUT("", calendarHandler.ReplaceCalendar)
			calendarGroup.POST("/events", calendarHandler.AddEvent)
			calendarGroup.DELETE("/events/:date/:eventId", calendarHandler.DeleteEvent)
		}

		// --- Notes ---
		noteGroup := protected.Group("/notes")
		{
			noteGroup.GET("", noteHandler.ListNotes)
			noteGroup.POST("", noteHandler.CreateNote)
			noteGroup.DELETE("/:noteId", noteHandler.DeleteNote)
		}
	}
}
