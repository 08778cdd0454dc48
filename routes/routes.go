package routes

import (
	"net/http"

	"github.com/Dosada05/competition-manager/handlers"
	"github.com/Dosada05/competition-manager/middleware"
	"github.com/Dosada05/competition-manager/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
}

func SetupRoutes(
	router chi.Router,
	competitionHandler *handlers.CompetitionHandler,
	teamHandler *handlers.TeamHandler,
	webSocketHandler *handlers.WebSocketHandler,
	opts Options,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(opts.JWTSecret)
	organizerOnly := middleware.RequireRole(models.RoleOrganizer, models.RoleAdmin)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/competitions", func(r chi.Router) {
		// Публичные маршруты
		r.Get("/", competitionHandler.ListHandler)
		r.Get("/{competitionID}", competitionHandler.GetByIDHandler)
		r.Get("/{competitionID}/standings", competitionHandler.StandingsHandler)
		r.Get("/{competitionID}/bracket", competitionHandler.GetBracketHandler)
		r.Get("/{competitionID}/summary", competitionHandler.SummaryHandler)

		// Защищенные маршруты только для организаторов
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)

			r.Post("/", competitionHandler.CreateHandler)
			r.Delete("/{competitionID}", competitionHandler.DeleteHandler)
			r.Post("/{competitionID}/schedule", competitionHandler.ScheduleAllHandler)
			r.Post("/{competitionID}/pools/{poolID}/schedule", competitionHandler.SchedulePoolHandler)
			r.Post("/{competitionID}/bracket", competitionHandler.GenerateBracketHandler)
			r.Post("/{competitionID}/results", competitionHandler.RecordResultHandler)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", teamHandler.ListTeams)
		r.Get("/{teamID}", teamHandler.GetTeamByID)
		r.With(authenticate, organizerOnly).Post("/", teamHandler.CreateTeam)
	})

	router.Get("/seasons/{seasonID}/standings", competitionHandler.SeasonStandingsHandler)

	router.Get("/ws/competitions/{competitionID}", webSocketHandler.ServeWs)
}
