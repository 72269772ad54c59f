package main

import (
	"github.com/google/wire"
	"github.com/sirupsen/logrus"

	"github.com/BlieNuckel/tunarr/internal/api"
	"github.com/BlieNuckel/tunarr/internal/config"
	"github.com/BlieNuckel/tunarr/internal/controllers"
	"github.com/BlieNuckel/tunarr/internal/models"
	"github.com/BlieNuckel/tunarr/internal/scheduler"
	"github.com/BlieNuckel/tunarr/internal/services/slskd"
	"github.com/BlieNuckel/tunarr/internal/utils"
)

// application is the assembled process
type application struct {
	Logger    *logrus.Logger
	Server    *api.Server
	Scheduler *scheduler.Scheduler
}

var providerSet = wire.NewSet(
	provideLogger,
	provideBlacklist,
	slskd.NewClient,
	slskd.NewGrouper,
	models.NewJobRegistry,
	wire.Bind(new(controllers.SearchProvider), new(*slskd.Client)),
	wire.Bind(new(controllers.TransferProvider), new(*slskd.Client)),
	wire.Bind(new(controllers.ResultGrouper), new(*slskd.Grouper)),
	controllers.NewSearchController,
	controllers.NewDownloadController,
	scheduler.NewScheduler,
	api.NewServer,
	wire.Struct(new(application), "*"),
)

func provideLogger(cfg *config.Config) *logrus.Logger {
	return utils.NewLogger(cfg.LogLevel)
}

func provideBlacklist(cfg *config.Config, logger *logrus.Logger) *utils.Blacklist {
	blacklist, err := utils.LoadBlacklist(cfg.BlacklistFile)
	if err != nil {
		logger.WithError(err).Warn("Failed to load blacklist, continuing without it")
		return utils.NewBlacklist(nil)
	}
	logger.WithField("entries", blacklist.Len()).Info("Blacklist loaded")
	return blacklist
}
