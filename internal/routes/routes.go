package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davian-ro/CoachSchedBack/internal/config"
	"github.com/davian-ro/CoachSchedBack/internal/handlers"
	"github.com/davian-ro/CoachSchedBack/internal/middleware"
	"github.com/davian-ro/CoachSchedBack/internal/notify"
	"github.com/davian-ro/CoachSchedBack/internal/repository"
	"github.com/davian-ro/CoachSchedBack/internal/services"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	programRepo := repository.NewProgramRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	cohortRepo := repository.NewCohortRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	hub := notify.NewHub()
	go hub.Run()

	slotService := services.NewSlotService(programRepo, availabilityRepo, sessionRepo)
	bookingService := services.NewBookingService(db, programRepo, enrollmentRepo, sessionRepo, hub)
	sessionService := services.NewSessionService(db, programRepo, enrollmentRepo, sessionRepo, cfg.CreditRefundOnCancel, hub)
	programService := services.NewProgramService(db, programRepo, availabilityRepo)
	cohortService := services.NewCohortService(programRepo, cohortRepo, sessionRepo, hub)
	submissionService := services.NewSubmissionService(programRepo, enrollmentRepo, sessionRepo, submissionRepo, cfg.FeedbackOverwrite, hub)

	availabilityHandler := handlers.NewAvailabilityHandler(slotService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	programHandler := handlers.NewProgramHandler(programService, cohortService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	notificationHandler := handlers.NewNotificationHandler(hub, cfg.JWTSecret)

	api := app.Group("/api")
	v1 := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	programs := v1.Group("/programs")
	programs.Post("", programHandler.Create)
	programs.Get("/:id", programHandler.Get)
	programs.Put("/:id/rules", programHandler.ReplaceRules)
	programs.Put("/:id/policy", programHandler.UpdatePolicy)
	programs.Put("/:id/curriculum", programHandler.ReplaceCurriculum)
	programs.Post("/:id/blackouts", programHandler.AddBlackout)
	programs.Get("/:id/slots", availabilityHandler.GetSlots)
	programs.Get("/:id/available-days", availabilityHandler.GetAvailableMonth)
	programs.Post("/:id/cohorts", programHandler.CreateCohort)
	programs.Get("/:id/cohorts", programHandler.ListCohorts)

	v1.Delete("/blackouts/:id", programHandler.RemoveBlackout)
	v1.Post("/cohorts/:id/sessions", programHandler.AddGroupSession)

	v1.Post("/bookings", bookingHandler.Book)

	sessions := v1.Group("/sessions")
	sessions.Get("", sessionHandler.List)
	sessions.Get("/:id", sessionHandler.Get)
	sessions.Post("/:id/register", bookingHandler.Register)
	sessions.Delete("/:id/register", bookingHandler.Unregister)
	sessions.Post("/:id/cancel", sessionHandler.Cancel)
	sessions.Post("/:id/reschedule", sessionHandler.Reschedule)
	sessions.Post("/:id/complete", sessionHandler.Complete)

	submissions := v1.Group("/submissions")
	submissions.Post("", submissionHandler.Submit)
	submissions.Post("/:id/feedback", submissionHandler.Review)

	v1.Get("/enrollments/:id/progress", submissionHandler.Progress)

	api.Use("/v1/ws", notificationHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(notificationHandler.HandleWebSocket))
}
