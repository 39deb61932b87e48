// Package main provides the back office API to manage accounts and money movement.
package main

import (
	"github.com/rs/zerolog/log"

	"github.com/adnanbp/bankoffice/cmd/httpserver"
	"github.com/adnanbp/bankoffice/internal/middleware"
	"github.com/adnanbp/bankoffice/pkg/configpkg"
	"github.com/adnanbp/bankoffice/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().Msg("LEDGER API SERVER HAS STARTED")

	err = server.Engine.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
