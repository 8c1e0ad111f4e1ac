package handlers

import (
	"github.com/UziB26/leagueladder-sub000/middleware"
	"github.com/UziB26/leagueladder-sub000/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeagueRoutes(app *fiber.App, leagueService *services.LeagueService, playerService *services.PlayerService, challengeService *services.ChallengeService) {
	userCtx := middleware.UserContextMiddleware()
	adminOnly := middleware.RequireRole("admin")

	// 🔓 Public routes
	app.Get("/leagues", leagueService.ListLeaguesEndpoint)
	app.Get("/leagues/by-slug/:slug", leagueService.GetLeagueBySlugEndpoint)
	app.Get("/leagues/:id/standings", leagueService.GetStandingsEndpoint)
	app.Get("/players/search", playerService.SearchPlayersEndpoint)
	app.Get("/players/:id/history", playerService.GetRatingHistoryEndpoint)

	// 🔐 Authenticated routes
	app.Post("/players", userCtx, playerService.RegisterPlayerEndpoint)
	app.Post("/challenges", userCtx, challengeService.CreateChallengeEndpoint)
	app.Get("/challenges", userCtx, challengeService.ListChallengesEndpoint)

	// 🔒 Admin-only routes
	app.Post("/admin/leagues", userCtx, adminOnly, leagueService.CreateLeagueEndpoint)
}
