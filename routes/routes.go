package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/mrdatawolf/DM-Helper/handlers"
	"github.com/mrdatawolf/DM-Helper/middleware"
	"github.com/mrdatawolf/DM-Helper/models"
)

// SetupRoutes wires every claims-engine endpoint. All API routes require a
// token from the campaign manager's auth service; routes touching the truth
// channel additionally require the DM role.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	claimHandler *handlers.ClaimHandler,
	rankingHandler *handlers.RankingHandler,
	resolveHandler *handlers.ResolveHandler,
	characterHandler *handlers.CharacterHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Route("/characters", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Post("/", characterHandler.CreateCharacter)
		r.Get("/", characterHandler.ListCharacters)
		r.Get("/{characterID}", characterHandler.GetCharacter)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleDM))
			r.Delete("/{characterID}", characterHandler.DeleteCharacter)
		})
	})

	router.Route("/claims", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Post("/allocate", claimHandler.Allocate)
		r.Post("/resolve", resolveHandler.ResolveRoll)
		r.Post("/perception", rankingHandler.RecordPerception)
		r.Get("/pool/{characterID}", claimHandler.GetPool)
		r.Get("/character/{characterID}", claimHandler.ListClaims)
		r.Get("/history/{characterID}", claimHandler.GetHistory)
		r.Get("/rankings/perceived/{characterID}/{attribute}", rankingHandler.GetPerceivedRankings)
		r.Get("/rankings/{attribute}", rankingHandler.GetRanking)

		// DM only: the full truth channel and pool grants.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleDM))

			r.Post("/grant-points", claimHandler.GrantPoints)
			r.Get("/rankings", rankingHandler.GetAllRankings)
			r.Post("/history/{characterID}/export", claimHandler.ExportHistory)
		})
	})

	router.Route("/ws", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.RequireRole(models.RoleDM))

		r.Get("/claims/{attribute}", webSocketHandler.ServeWs)
	})
}
