package internal

import (
	"net/http"
	"ratingd/internal/controllers"
	"ratingd/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController, settingsController *controllers.SettingsController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/rate", http.HandlerFunc(apiController.Rate))
	routers.Get("/timeline_data", http.HandlerFunc(apiController.Timeline))
	routers.Post("/upload_ratings", http.HandlerFunc(apiController.Upload))
	routers.Post("/reset_ratings", http.HandlerFunc(apiController.Reset))

	routers.Get("/settings", http.HandlerFunc(settingsController.Get))
	routers.Post("/settings", http.HandlerFunc(settingsController.Update))
	routers.Post("/map_hotkey", http.HandlerFunc(settingsController.MapHotkey))
	routers.Post("/set_num_buttons", http.HandlerFunc(settingsController.SetNumButtons))
	return routers
}
