//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/BlieNuckel/tunarr/internal/config"
)

func initializeApp(cfg *config.Config) (*application, error) {
	wire.Build(providerSet)
	return nil, nil
}
