package router

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/stockpredictorai/prediction-backend/internal/handlers"
	"github.com/stockpredictorai/prediction-backend/internal/middleware"
)

func NewRouter(deps *handlers.Deps, mw *middleware.Middleware) chi.Router {
	r := chi.NewRouter()

	lmw := middleware.NewLoggerMiddleware(deps.Log)
	r.Use(chimiddleware.RequestID)
	r.Use(lmw.LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)

	ph := handlers.NewPredictionHandlers(deps)
	wh := handlers.NewWidgetHandlers(deps)
	wlh := handlers.NewWatchlistHandlers(deps)
	uh := handlers.NewUserHandlers(deps)
	winh := handlers.NewWindowHandlers(deps)
	ah := handlers.NewAdminHandlers(deps)

	r.Get("/health", handlers.Health)

	r.Route("/api", func(api chi.Router) {
		// Open to guests; GuestAuth resolves a voter identity either way.
		api.Group(func(g chi.Router) {
			g.Use(mw.GuestAuth)
			g.Get("/dashboard", wh.Dashboard)
			g.Mount("/widgets", wh.WidgetRoutes())
			g.Get("/market/key-assets", wh.KeyAssets)
			g.Mount("/predictions", ph.PredictionRoutes())
			g.Mount("/stocks", ph.StockRoutes())
			g.Mount("/prediction-window", winh.WindowRoutes())
			g.Get("/scoreboard", uh.Scoreboard)
			g.Get("/leaderboard/rating", uh.RatingLeaderboard)
		})

		// Authenticated users only.
		api.Group(func(g chi.Router) {
			g.Use(mw.FirebaseAuth)
			g.Post("/predict", ph.Create)
			g.Put("/predict/{predictionId}", ph.Edit)
			g.Get("/my-predictions", ph.Mine)
			g.Mount("/watchlist", wlh.WatchlistRoutes())
			g.Mount("/users", uh.UserRoutes())
		})

		// Admin surface.
		api.Group(func(g chi.Router) {
			g.Use(mw.FirebaseAuth)
			g.Use(mw.RequireAdmin)
			g.Mount("/admin", ah.AdminRoutes())
		})
	})

	return r
}
