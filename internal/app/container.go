package app

import (
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/shelfd/internal/infrastructure/config"
	"github.com/eslsoft/shelfd/internal/infrastructure/server"
	"github.com/eslsoft/shelfd/internal/usecase"
)

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Logger *logrus.Logger
	Server *server.Server
}

// ProvidePolicy extracts the reconcile policy from configuration.
func ProvidePolicy(cfg *config.Config) usecase.ReconcilePolicy {
	return usecase.ParsePolicy(cfg.Catalog.Policy)
}
