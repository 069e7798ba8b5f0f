//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"ratingd/internal"
	"ratingd/internal/controllers"
	"ratingd/internal/providers"
	"ratingd/internal/services"
	"ratingd/internal/storage"
	"ratingd/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		storage.NewArchiver,
		storage.NewRatingStore,
		storage.NewSettingsFile,
		wire.Bind(new(services.SettingsFileInterface), new(*storage.SettingsFile)),

		services.NewSettingsService,
		services.NewRatingService,
		services.NewTimelineService,

		controllers.NewApiController,
		controllers.NewSettingsController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewHandler,
		internal.NewApp,
	)

	return nil, nil
}
