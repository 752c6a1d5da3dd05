package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/safaconnect/tournament-engine/handlers"
	"github.com/safaconnect/tournament-engine/middleware"
	"github.com/safaconnect/tournament-engine/models"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Sport        *handlers.SportHandler
	Tournament   *handlers.TournamentHandler
	Team         *handlers.TeamHandler
	Fixture      *handlers.FixtureHandler
	Registration *handlers.RegistrationHandler
	WebSocket    *handlers.WebSocketHandler
}

func SetupRoutes(h Handlers, auth *middleware.Auth) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Post("/auth/login", h.Auth.Login)

	router.Route("/sports", func(r chi.Router) {
		r.Get("/", h.Sport.ListSports)
		r.Get("/{sportCode}", h.Sport.GetSportByCode)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.Authorize(models.RoleAdmin))
			r.Post("/", h.Sport.CreateSport)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		// Public read access for federations publishing schedules.
		r.Get("/", h.Tournament.ListTournaments)
		r.Get("/{tournamentID}", h.Tournament.GetTournament)
		r.Get("/{tournamentID}/teams", h.Team.ListTeams)
		r.Get("/{tournamentID}/fixtures", h.Fixture.ListFixtures)
		r.Get("/{tournamentID}/standings", h.Tournament.GetStandings)

		// Self-service registration is open while the window allows it.
		r.Post("/{tournamentID}/registrations", h.Registration.SubmitRegistration)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.Authorize(models.RoleAdmin, models.RoleOperator))

			r.Post("/", h.Tournament.CreateTournament)
			r.Put("/{tournamentID}", h.Tournament.UpdateTournament)
			r.Patch("/{tournamentID}/status", h.Tournament.UpdateTournamentStatus)
			r.Delete("/{tournamentID}", h.Tournament.DeleteTournament)

			r.Post("/{tournamentID}/teams", h.Team.CreateTeam)
			r.Post("/{tournamentID}/fixtures/regenerate", h.Fixture.RegenerateFixtures)
			r.Post("/{tournamentID}/fixtures/advance", h.Fixture.AdvanceKnockoutRound)
			r.Post("/{tournamentID}/standings/recalculate", h.Tournament.RecalculateStandings)
			r.Get("/{tournamentID}/registrations", h.Registration.ListRegistrations)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/{teamID}", h.Team.GetTeam)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.Authorize(models.RoleAdmin, models.RoleOperator))

			r.Post("/{teamID}/players", h.Team.AddPlayer)
			r.Post("/{teamID}/photo", h.Team.UploadTeamPhoto)
			r.Delete("/{teamID}", h.Team.DeleteTeam)
		})
	})

	router.Route("/fixtures", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(middleware.Authorize(models.RoleAdmin, models.RoleOperator))

		r.Post("/{fixtureID}/result", h.Fixture.RecordResult)
		r.Patch("/{fixtureID}/status", h.Fixture.UpdateFixtureStatus)
	})

	router.Route("/registrations", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(middleware.Authorize(models.RoleAdmin, models.RoleOperator))

		r.Get("/{registrationID}", h.Registration.GetRegistration)
		r.Post("/{registrationID}/reference-photo", h.Registration.UploadReferencePhoto)
		r.Post("/{registrationID}/reverify", h.Registration.Reverify)
		r.Post("/{registrationID}/decision", h.Registration.ManualDecision)
		r.Get("/{registrationID}/history", h.Registration.VerificationHistory)
	})

	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(middleware.Authorize(models.RoleAdmin))
		r.Post("/operators", h.Auth.CreateOperator)
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	return router
}
