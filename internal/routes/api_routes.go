package routes

import (
	"github.com/go-chi/chi/v5"

	"flighttest/ftias/internal/api"
	"flighttest/ftias/internal/middleware"
)

// RegisterAPIRoutes registers everything under /api.
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies) {
	limiter := middleware.NewRateLimiter(deps.Config.RateLimit)
	requireAuth := middleware.AuthMiddleware(deps.Services.Tokens, deps.Services.User)
	maxUpload := deps.Config.Upload.MaxBytes

	r.Route("/api", func(apiRouter chi.Router) {
		apiRouter.Use(limiter.Middleware)

		// Public routes
		apiRouter.Get("/health", api.HealthCheckHandler(deps.UpSince, api.DependencyProbes(deps)...))
		apiRouter.Get("/ping", api.PingHandler())
		apiRouter.Post("/auth/login", api.LoginHandler(deps))
		apiRouter.Post("/auth/refresh", api.RefreshHandler(deps))
		apiRouter.Post("/users", api.CreateUserHandler(deps))

		// Authenticated routes
		apiRouter.Group(func(authed chi.Router) {
			authed.Use(requireAuth)

			authed.Post("/auth/logout", api.LogoutHandler(deps))
			authed.Get("/auth/me", api.MeHandler(deps))

			authed.Get("/users/{id}", api.GetUserHandler(deps))
			authed.Put("/users/{id}", api.UpdateUserHandler(deps))
			authed.Delete("/users/{id}", api.DeleteUserHandler(deps))

			authed.Route("/flight-tests", func(ft chi.Router) {
				ft.Post("/", api.CreateFlightTestHandler(deps))
				ft.Get("/", api.ListFlightTestsHandler(deps))
				ft.Get("/{id}", api.GetFlightTestHandler(deps))
				ft.Put("/{id}", api.UpdateFlightTestHandler(deps))
				ft.Delete("/{id}", api.DeleteFlightTestHandler(deps))
				ft.Get("/{id}/data", api.ListFlightTestDataHandler(deps))
				ft.Get("/{id}/parameters", api.FlightTestParametersHandler(deps))
				ft.Post("/{id}/upload-csv", api.UploadCSVHandler(deps.Services.Ingestion, maxUpload))
			})

			authed.Get("/parameters", api.ListParametersHandler(deps))
			authed.Get("/parameters/{id}", api.GetParameterHandler(deps))

			// Superuser-only routes
			authed.Group(func(admin chi.Router) {
				admin.Use(middleware.IsSuperuserMiddleware())

				admin.Get("/users", api.ListUsersHandler(deps))

				admin.Post("/parameters", api.CreateParameterHandler(deps))
				admin.Post("/parameters/upload-excel", api.UploadExcelHandler(deps.Services.Ingestion, maxUpload))
				admin.Post("/parameters/bulk", api.BulkCreateParametersHandler(deps))
				admin.Put("/parameters/bulk", api.BulkUpdateParametersHandler(deps))
				admin.Delete("/parameters/bulk", api.BulkDeleteParametersHandler(deps))
				admin.Put("/parameters/{id}", api.UpdateParameterHandler(deps))
				admin.Delete("/parameters/{id}", api.DeleteParameterHandler(deps))
			})
		})
	})
}
