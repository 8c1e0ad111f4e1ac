package handlers

import (
	"github.com/UziB26/leagueladder-sub000/middleware"
	"github.com/UziB26/leagueladder-sub000/services"

	"github.com/gofiber/fiber/v2"
)

func SetupContestRoutes(app *fiber.App, contestService *services.ContestService, confirmationService *services.ConfirmationService, disputeService *services.DisputeService) {
	// Middleware is attached per route; a use-middleware at "/" would leak
	// onto the public routes registered elsewhere.
	userCtx := middleware.UserContextMiddleware()
	adminOnly := middleware.RequireRole("admin")

	// 🔓 Public read-only routes
	app.Get("/contests/:id", contestService.GetContestEndpoint)

	// 🔐 Authenticated routes — acting player forwarded by the Gateway
	app.Post("/contests", userCtx, contestService.CreateContestEndpoint)
	app.Post("/contests/:id/result", userCtx, contestService.ReportResultEndpoint)
	app.Post("/contests/:id/confirmation", userCtx, confirmationService.SubmitConfirmationEndpoint)
	app.Post("/contests/:id/evidence", userCtx, disputeService.UploadEvidenceEndpoint)

	// 🔒 Admin-only routes
	app.Get("/admin/disputes", userCtx, adminOnly, disputeService.ListDisputedEndpoint)
	app.Post("/admin/contests/:id/resolution", userCtx, adminOnly, disputeService.ResolveDisputeEndpoint)
}
