//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/shelfd/internal/adapter/httpapi"
	"github.com/eslsoft/shelfd/internal/adapter/repository"
	"github.com/eslsoft/shelfd/internal/infrastructure/config"
	"github.com/eslsoft/shelfd/internal/infrastructure/database"
	"github.com/eslsoft/shelfd/internal/infrastructure/server"
	"github.com/eslsoft/shelfd/internal/usecase"
)

var configSet = wire.NewSet(
	config.Load,
	ProvidePolicy,
)

var databaseSet = wire.NewSet(
	database.NewConnection,
)

var repositorySet = wire.NewSet(
	repository.NewAuthorRepository,
	repository.NewWorkRepository,
	repository.NewRecordRepository,
	repository.NewListRepository,
)

var usecaseSet = wire.NewSet(
	usecase.NewMatcher,
	usecase.NewReconciler,
	usecase.NewRecordService,
	usecase.NewRankingService,
	usecase.NewImportService,
)

var serverSet = wire.NewSet(
	server.NewLogger,
	wire.Bind(new(logrus.FieldLogger), new(*logrus.Logger)),
	httpapi.NewHandler,
	server.NewServer,
)

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		databaseSet,
		repositorySet,
		usecaseSet,
		serverSet,
		wire.Struct(new(Container), "Logger", "Server"),
	)
	return nil, nil, nil
}
