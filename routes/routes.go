package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"chess-club-server/handlers"
	"chess-club-server/middleware"
)

// SetupRoutes wires every handler into the router. Reads on tournaments are
// public; everything that mutates state requires a valid token.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	tournamentHandler *handlers.TournamentHandler,
	roundHandler *handlers.RoundHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler())

	router.Post("/auth/signup", authHandler.SignUp)
	router.Post("/auth/signin", authHandler.SignIn)

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.GetDetail)
		r.Get("/{tournamentID}/ranking", tournamentHandler.GetRanking)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Post("/", tournamentHandler.Create)
			r.Post("/join", tournamentHandler.Join)
			r.Put("/{tournamentID}", tournamentHandler.Update)
			r.Delete("/{tournamentID}", tournamentHandler.Delete)
			r.Post("/{tournamentID}/logo", tournamentHandler.UploadLogo)

			r.Post("/{tournamentID}/rounds", roundHandler.GenerateRounds)
			r.Delete("/{tournamentID}/rounds", roundHandler.DeletePairings)
			r.Put("/{tournamentID}/matches/{matchID}/result", roundHandler.SetMatchResult)

			r.Delete("/{tournamentID}/participants/{participantID}", tournamentHandler.RemoveParticipant)
		})
	})

	router.Route("/users", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Get("/me", userHandler.GetMe)
		r.Get("/me/points", userHandler.GetMyPoints)
		r.Get("/me/tournaments", tournamentHandler.ListMine)
	})
}
