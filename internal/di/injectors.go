//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"barbuddy/internal"
	"barbuddy/internal/controllers"
	"barbuddy/internal/models"
	"barbuddy/internal/persistence"
	"barbuddy/internal/providers"
	"barbuddy/internal/services"
	"barbuddy/internal/structures"
	syncpkg "barbuddy/internal/sync"
	"barbuddy/internal/timewindow"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewMetricsProvider,

		provideClock,
		timewindow.NewPolicy,
		models.NewLedger,

		syncpkg.NewRemoteStore,
		syncpkg.NewCoordinator,
		wire.Bind(new(services.SyncCoordinatorInterface), new(*syncpkg.Coordinator)),

		services.NewXPService,
		services.NewAchievementService,
		services.NewPropagationBus,
		services.NewInteractionService,

		persistence.NewZstdCompressor,
		persistence.NewFileManager,
		persistence.NewScheduler,

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
