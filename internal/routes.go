package internal

import (
	"net/http"

	"barbuddy/internal/controllers"
	"barbuddy/internal/providers"
	"barbuddy/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	limiter := providers.NewRateLimiter(conf)
	writeHandler := func(h http.HandlerFunc) http.Handler {
		return providers.RateLimitMiddleware(limiter, h)
	}

	routers.Post("/visit", writeHandler(apiController.ReceiveVisit))
	routers.Post("/like", writeHandler(apiController.ReceiveLike))
	routers.Get("/venue", http.HandlerFunc(apiController.GetVenue))
	routers.Get("/top", http.HandlerFunc(apiController.GetTopLiked))
	routers.Get("/popular", http.HandlerFunc(apiController.GetPopularArrival))
	routers.Get("/summary", http.HandlerFunc(apiController.GetSummary))
	return routers
}
